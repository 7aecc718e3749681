package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/prompthive/internal/config"
	"github.com/hpungsan/prompthive/internal/errors"
	"github.com/hpungsan/prompthive/internal/filter"
	"github.com/hpungsan/prompthive/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	gw  Gateway
	cfg *config.Config

	// changed runs after a successful mutation.
	changed func(context.Context)
}

// NewHandlers creates a new Handlers instance. changed may be nil.
func NewHandlers(gw Gateway, cfg *config.Config, changed func(context.Context)) *Handlers {
	if changed == nil {
		changed = func(context.Context) {}
	}
	return &Handlers{gw: gw, cfg: cfg, changed: changed}
}

// Request types for each tool

// ListRequest represents the arguments for prompt_list.
type ListRequest struct {
	Query         string `json:"query,omitempty"`
	Tag           string `json:"tag,omitempty"`
	CollectionID  string `json:"collection_id,omitempty"`
	FavoritesOnly bool   `json:"favorites_only,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset,omitempty"`
}

// IDRequest represents the arguments for tools addressing a single prompt.
type IDRequest struct {
	ID string `json:"id"`
}

// SaveRequest represents the arguments for prompt_save.
type SaveRequest struct {
	ID             string   `json:"id,omitempty"`
	Title          string   `json:"title"`
	Body           string   `json:"body"`
	Description    string   `json:"description,omitempty"`
	ShortPrompt    *string  `json:"short_prompt,omitempty"`
	ExampleOutput  *string  `json:"example_output,omitempty"`
	ExpectedResult *string  `json:"expected_result,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	CollectionID   *string  `json:"collection_id,omitempty"`
	IsFavorite     *bool    `json:"is_favorite,omitempty"`
}

// FillRequest represents the arguments for prompt_fill.
type FillRequest struct {
	ID     string            `json:"id"`
	Values map[string]string `json:"values,omitempty"`
}

// CollectionAddRequest represents the arguments for collection_add.
type CollectionAddRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
}

// Handler implementations

// HandleList handles the prompt_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListPrompts(ctx, h.gw, ops.ListInput{
		Options: filter.Options{
			Query:         input.Query,
			Tag:           input.Tag,
			CollectionID:  input.CollectionID,
			FavoritesOnly: input.FavoritesOnly,
		},
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGet handles the prompt_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.GetPrompt(ctx, h.gw, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSave handles the prompt_save tool call.
func (h *Handlers) HandleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SavePrompt(ctx, h.gw, ops.SaveInput{
		ID:             input.ID,
		Title:          input.Title,
		Description:    input.Description,
		Body:           input.Body,
		ShortPrompt:    input.ShortPrompt,
		ExampleOutput:  input.ExampleOutput,
		ExpectedResult: input.ExpectedResult,
		IsFavorite:     input.IsFavorite,
		Tags:           input.Tags,
		CollectionID:   input.CollectionID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	h.changed(ctx)
	return successResult(result)
}

// HandleDelete handles the prompt_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeletePrompt(ctx, h.gw, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	h.changed(ctx)
	return successResult(result)
}

// HandleFavorite handles the prompt_favorite tool call.
func (h *Handlers) HandleFavorite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ToggleFavorite(ctx, h.gw, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFill handles the prompt_fill tool call.
func (h *Handlers) HandleFill(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FillRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.FillPrompt(ctx, h.gw, ops.FillInput{ID: input.ID, Values: input.Values})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCollectionList handles the collection_list tool call.
func (h *Handlers) HandleCollectionList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListCollections(ctx, h.gw)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCollectionAdd handles the collection_add tool call.
func (h *Handlers) HandleCollectionAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CollectionAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.AddCollection(ctx, h.gw, ops.AddCollectionInput{
		Name:     input.Name,
		ParentID: input.ParentID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleStatus handles the library_status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Status(ctx, h.gw)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// errorResult creates an MCP error result from an error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var hiveErr *errors.HiveError
	if stderrors.As(err, &hiveErr) {
		errorObj := map[string]any{
			"code":    hiveErr.Code,
			"message": hiveErr.Message,
			"status":  hiveErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths
		if hiveErr.Code != errors.ErrInternal && hiveErr.Details != nil {
			errorObj["details"] = hiveErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
