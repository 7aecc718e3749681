package mcp

import "github.com/mark3labs/mcp-go/mcp"

var listToolDef = mcp.NewTool("prompt_list",
	mcp.WithDescription("List prompts in the library, newest first. Filters combine: favorites, collection, tag, then a case-insensitive text query over title, body and tags."),
	mcp.WithString("query", mcp.Description("Substring to match in title, body or tags")),
	mcp.WithString("tag", mcp.Description("Only prompts carrying this exact tag")),
	mcp.WithString("collection_id", mcp.Description("Only prompts in this collection")),
	mcp.WithBoolean("favorites_only", mcp.Description("Only favorite prompts")),
	mcp.WithNumber("limit", mcp.Description("Maximum items to return (default 50, max 500)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
)

var getToolDef = mcp.NewTool("prompt_get",
	mcp.WithDescription("Get one prompt with its template variables."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Prompt id")),
)

var saveToolDef = mcp.NewTool("prompt_save",
	mcp.WithDescription("Create a prompt, or replace the prompt with the given id. Template variables are written as {{name}}."),
	mcp.WithString("id", mcp.Description("Existing prompt id to replace; omit to create")),
	mcp.WithString("title", mcp.Required(), mcp.Description("Prompt title")),
	mcp.WithString("body", mcp.Required(), mcp.Description("Prompt text")),
	mcp.WithString("description", mcp.Description("Short description")),
	mcp.WithString("short_prompt", mcp.Description("Condensed version of the prompt")),
	mcp.WithString("example_output", mcp.Description("Example of a good response")),
	mcp.WithString("expected_result", mcp.Description("What the prompt should achieve")),
	mcp.WithArray("tags", mcp.WithStringItems(), mcp.Description("Tags; entries may also be comma-separated")),
	mcp.WithString("collection_id", mcp.Description("Collection to file the prompt under")),
	mcp.WithBoolean("is_favorite", mcp.Description("Favorite flag; omitted keeps the current value")),
)

var deleteToolDef = mcp.NewTool("prompt_delete",
	mcp.WithDescription("Delete a prompt permanently."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Prompt id")),
)

var favoriteToolDef = mcp.NewTool("prompt_favorite",
	mcp.WithDescription("Toggle the favorite flag of a prompt."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Prompt id")),
)

var fillToolDef = mcp.NewTool("prompt_fill",
	mcp.WithDescription("Substitute values for the {{variables}} of a prompt. Variables without a value are left in place and reported as missing."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Prompt id")),
	mcp.WithObject("values", mcp.Description("Map of variable name to value")),
)

var collectionListToolDef = mcp.NewTool("collection_list",
	mcp.WithDescription("List collections as a tree with the number of prompts in each."),
)

var collectionAddToolDef = mcp.NewTool("collection_add",
	mcp.WithDescription("Create a collection, optionally nested under a parent."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Collection name")),
	mcp.WithString("parent_id", mcp.Description("Parent collection id")),
)

var statusToolDef = mcp.NewTool("library_status",
	mcp.WithDescription("Report whether a project folder is open and how many prompts and collections it holds."),
)
