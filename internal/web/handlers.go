package web

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hpungsan/prompthive/internal/filter"
	"github.com/hpungsan/prompthive/internal/library"
	"github.com/hpungsan/prompthive/internal/ops"
)

// varFieldPrefix prefixes fill form fields so variable names cannot collide
// with other form keys.
const varFieldPrefix = "var."

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	lib      Library
	renderer *Renderer
	log      *slog.Logger
}

// HandleList handles GET /prompts, the filtered prompt list.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := ops.ListInput{
		Options: filter.Options{
			Query:         q.Get("q"),
			Tag:           q.Get("tag"),
			CollectionID:  q.Get("collection"),
			FavoritesOnly: parseBoolParam(r, "favorites"),
		},
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	}

	result, err := ops.ListPrompts(r.Context(), h.lib, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	cols, err := h.lib.Read(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	nav := "prompts"
	if input.FavoritesOnly {
		nav = "favorites"
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData:     h.pageData(r, result.Heading, nav),
		Heading:      result.Heading,
		Items:        result.Items,
		Pagination:   result.Pagination,
		Tags:         result.Tags,
		Collections:  cols.Collections,
		Query:        input.Query,
		Tag:          input.Tag,
		CollectionID: input.CollectionID,
		Favorites:    input.FavoritesOnly,
		ReturnTo:     r.URL.RequestURI(),
	})
}

// HandleDetail handles GET /prompts/{id}.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	h.renderDetail(w, r, nil, nil)
}

// HandleFavorite handles POST /prompts/{id}/favorite.
func (h *Handlers) HandleFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result, err := ops.ToggleFavorite(r.Context(), h.lib, id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	back := "/prompts/" + id
	if ref := r.FormValue("return"); isLocalPath(ref) {
		back = ref
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// HandleFill handles POST /prompts/{id}/fill. Form fields named "var.<name>"
// carry the variable values; the filled text is shown on the detail page.
func (h *Handlers) HandleFill(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	values := map[string]string{}
	for key, vals := range r.PostForm {
		name, ok := strings.CutPrefix(key, varFieldPrefix)
		if !ok || len(vals) == 0 {
			continue
		}
		values[name] = vals[0]
	}

	result, err := ops.FillPrompt(r.Context(), h.lib, ops.FillInput{
		ID:     r.PathValue("id"),
		Values: values,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	h.renderDetail(w, r, values, result)
}

// HandleDelete handles DELETE /prompts/{id}.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	result, err := ops.DeletePrompt(r.Context(), h.lib, ops.DeleteInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX: redirect via header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/prompts")
		w.WriteHeader(http.StatusOK)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/prompts", http.StatusSeeOther)
}

// HandleCollections handles GET /collections, the collection tree.
func (h *Handlers) HandleCollections(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListCollections(r.Context(), h.lib)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "collections", CollectionsPageData{
		PageData: h.pageData(r, "Collections", "collections"),
		Tree:     result.Tree,
		Counts:   result.PromptCounts,
	})
}

func (h *Handlers) renderDetail(w http.ResponseWriter, r *http.Request, values map[string]string, filled *ops.FillOutput) {
	p, err := ops.GetPrompt(r.Context(), h.lib, r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, p)
		return
	}

	if values == nil {
		values = map[string]string{}
	}
	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData:     h.pageData(r, displayTitle(p.Prompt), "prompts"),
		Prompt:       p,
		RenderedHTML: h.renderer.renderMarkdown(p.Body),
		Values:       values,
		Filled:       filled,
	})
}

func (h *Handlers) pageData(r *http.Request, title, nav string) PageData {
	pd := PageData{
		Title:   title,
		Version: h.renderer.version,
		Nav:     nav,
	}
	if rec, ok := h.lib.Active(); ok {
		pd.Folder = rec.Name
	} else if label, ok := h.lib.StoredLabel(r.Context()); ok {
		pd.Folder = label
	}
	return pd
}

// parseIntParam extracts an integer query parameter with a default value.
func parseIntParam(r *http.Request, key string, defaultVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam extracts a boolean query parameter.
func parseBoolParam(r *http.Request, key string) bool {
	s := r.URL.Query().Get(key)
	return s == "true" || s == "1"
}

func isLocalPath(s string) bool {
	return strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") && !strings.Contains(s, `\`)
}

// displayTitle returns the title or a placeholder for untitled prompts.
func displayTitle(p library.Prompt) string {
	if t := strings.TrimSpace(p.Title); t != "" {
		return t
	}
	return "(untitled)"
}

// PageURL returns the list URL for the same filters at another offset.
func (d ListPageData) PageURL(offset int) string {
	v := url.Values{}
	if d.Query != "" {
		v.Set("q", d.Query)
	}
	if d.Tag != "" {
		v.Set("tag", d.Tag)
	}
	if d.CollectionID != "" {
		v.Set("collection", d.CollectionID)
	}
	if d.Favorites {
		v.Set("favorites", "true")
	}
	if d.Pagination.Limit != ops.DefaultListLimit {
		v.Set("limit", strconv.Itoa(d.Pagination.Limit))
	}
	if offset > 0 {
		v.Set("offset", strconv.Itoa(offset))
	}
	if len(v) == 0 {
		return "/prompts"
	}
	return "/prompts?" + v.Encode()
}

// PrevOffset is the offset of the previous page, never negative.
func (d ListPageData) PrevOffset() int {
	return max(d.Pagination.Offset-d.Pagination.Limit, 0)
}

// NextOffset is the offset of the next page.
func (d ListPageData) NextOffset() int {
	return d.Pagination.Offset + d.Pagination.Limit
}
