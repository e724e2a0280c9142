package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listProjectsTool defines the list_projects MCP tool.
var listProjectsTool = mcp.NewTool("list_projects",
	mcp.WithDescription("List presentation projects with their generation status and slide progress."),
	mcp.WithString("keyword",
		mcp.Description("Only include projects whose name or topic contains this text"),
	),
)

// projectStatusTool defines the project_status MCP tool.
var projectStatusTool = mcp.NewTool("project_status",
	mcp.WithDescription("Get the generation and export status of one project."),
	mcp.WithString("project_id",
		mcp.Required(),
		mcp.Description("Project ID as shown by list_projects"),
	),
)

// listSlidesTool defines the list_slides MCP tool.
var listSlidesTool = mcp.NewTool("list_slides",
	mcp.WithDescription("List the slides of a project in presentation order with their generation status."),
	mcp.WithString("project_id",
		mcp.Required(),
		mcp.Description("Project ID as shown by list_projects"),
	),
)

// getSlideTool defines the get_slide MCP tool.
var getSlideTool = mcp.NewTool("get_slide",
	mcp.WithDescription("Get the outline text and generated HTML of one slide."),
	mcp.WithString("project_id",
		mcp.Required(),
		mcp.Description("Project ID as shown by list_projects"),
	),
	mcp.WithString("slide_id",
		mcp.Required(),
		mcp.Description("Slide ID as shown by list_slides"),
	),
	mcp.WithBoolean("include_html",
		mcp.Description("Include the generated HTML (default true)"),
	),
)

// listSlideFilesTool defines the list_slide_files MCP tool.
var listSlideFilesTool = mcp.NewTool("list_slide_files",
	mcp.WithDescription("List the rendered slide files of a project by project name, in display order."),
	mcp.WithString("project_name",
		mcp.Required(),
		mcp.Description("Project name (the directory under projects/)"),
	),
	mcp.WithString("match",
		mcp.Description("Glob pattern selecting files, e.g. \"1.*.html\""),
	),
)

// recentSavesTool defines the recent_saves MCP tool.
var recentSavesTool = mcp.NewTool("recent_saves",
	mcp.WithDescription("Show recent slide edits saved from the preview, newest first."),
	mcp.WithString("project_name",
		mcp.Description("Only include saves for this project"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of entries to return (default 20)"),
	),
)
