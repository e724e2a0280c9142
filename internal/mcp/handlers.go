package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ezppt/deckview/internal/backend"
	"github.com/ezppt/deckview/internal/dashboard"
	"github.com/ezppt/deckview/internal/journal"
	"github.com/ezppt/deckview/internal/slidefilter"
)

// handleListProjects lists projects as a Markdown table.
func (s *Server) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.client.ListProjects(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing projects: %v", err)), nil
	}
	projects = dashboard.FilterProjects(projects, request.GetString("keyword", ""))
	if len(projects) == 0 {
		return mcp.NewToolResultText("No projects found."), nil
	}

	var sb strings.Builder
	sb.WriteString("| ID | Name | Topic | Status | Slides |\n|---|---|---|---|---|\n")
	for _, p := range projects {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d/%d |\n",
			p.ProjectID, p.ProjectName, p.Topic, p.Status, p.SlideStats.Completed, p.SlideStats.Total))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleProjectStatus reports the status of one project.
func (s *Server) handleProjectStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project_id"), nil
	}

	d, err := s.client.GetProject(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("getting project %s: %v", id, backend.Message(err))), nil
	}

	p := d.Project
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", p.Topic))
	sb.WriteString(fmt.Sprintf("- **ID**: %s\n", p.ProjectID))
	sb.WriteString(fmt.Sprintf("- **Name**: %s\n", p.ProjectName))
	sb.WriteString(fmt.Sprintf("- **Status**: %s\n", p.Status))
	sb.WriteString(fmt.Sprintf("- **Slides**: %d/%d completed (%.0f%%), %d generating, %d failed\n",
		d.SlideStats.Completed, d.SlideStats.Total, d.SlideStats.Percentage, d.SlideStats.Generating, d.SlideStats.Failed))
	sb.WriteString(fmt.Sprintf("- **Outline ready**: %t\n", d.OutlineReady))
	sb.WriteString(fmt.Sprintf("- **PDF export**: %s\n", orDash(p.PDFStatus)))
	sb.WriteString(fmt.Sprintf("- **PPTX export**: %s\n", orDash(p.PPTXStatus)))
	return mcp.NewToolResultText(sb.String()), nil
}

// handleListSlides lists a project's slides in order.
func (s *Server) handleListSlides(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project_id"), nil
	}

	list, err := s.client.ListSlides(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing slides of %s: %v", id, backend.Message(err))), nil
	}
	if len(list.Slides) == 0 {
		return mcp.NewToolResultText("No slides yet. The outline may still be generating."), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Slides of %s\n\n", list.ProjectName))
	sb.WriteString("| # | Slide ID | Chapter | Topic | Status |\n|---|---|---|---|---|\n")
	for i, sl := range list.Slides {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n", i+1, sl.SlideID, sl.ChapterTitle, sl.SlideTopic, sl.Status))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleGetSlide returns one slide's content and markup.
func (s *Server) handleGetSlide(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project_id"), nil
	}
	slideID, err := request.RequireString("slide_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: slide_id"), nil
	}

	sl, err := s.client.GetSlide(ctx, id, slideID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("getting slide %s: %v", slideID, backend.Message(err))), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s %s\n\n", sl.SlideID, sl.SlideTopic))
	sb.WriteString(fmt.Sprintf("**Chapter**: %s\n\n**Status**: %s\n\n", sl.ChapterTitle, sl.Status))
	if sl.SlideContent != "" {
		sb.WriteString(fmt.Sprintf("## Content\n\n%s\n\n", sl.SlideContent))
	}
	if request.GetBool("include_html", true) && sl.HTMLContent != "" {
		sb.WriteString(fmt.Sprintf("## HTML\n\n```html\n%s\n```\n", sl.HTMLContent))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleListSlideFiles lists the files the preview would display.
func (s *Server) handleListSlideFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("project_name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project_name"), nil
	}

	files, err := s.client.ListFiles(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing files of %s: %v", name, backend.Message(err))), nil
	}
	if match := request.GetString("match", ""); match != "" {
		filter, err := slidefilter.New([]string{match}, nil)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		files = filter.Apply(files)
	}
	if len(files) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No HTML files found in %s/html_files.", name)), nil
	}

	var sb strings.Builder
	for i, f := range files {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, f))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleRecentSaves reports recent save attempts from the journal.
func (s *Server) handleRecentSaves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.journal == nil {
		return mcp.NewToolResultError("Save journal not configured."), nil
	}

	limit := request.GetInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}
	entries, err := s.journal.Query(ctx, journal.Filter{
		Project: request.GetString("project_name", ""),
		Limit:   limit,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("querying journal: %v", err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("No saves recorded."), nil
	}

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("- %s %s/%s %s (%d bytes)", e.Timestamp.Format("2006-01-02 15:04:05"), e.Project, e.File, e.Outcome, e.Bytes))
		if e.Message != "" {
			sb.WriteString(": " + e.Message)
		}
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
