package backend

import "fmt"

// Status values reported by the backend for projects, slides and exports.
const (
	StatusPending    = "pending"
	StatusGenerating = "generating"
	StatusStart      = "start"
	StatusStarting   = "starting"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Terminal reports whether a project or export status will no longer change
// without user action.
func Terminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

// ExportKind selects the export format.
type ExportKind string

const (
	ExportPDF  ExportKind = "pdf"
	ExportPPTX ExportKind = "pptx"
)

// ParseExportKind converts a CLI argument to an ExportKind.
func ParseExportKind(s string) (ExportKind, error) {
	switch ExportKind(s) {
	case ExportPDF, ExportPPTX:
		return ExportKind(s), nil
	}
	return "", fmt.Errorf("unknown export format %q: must be pdf or pptx", s)
}

// SlideStats summarises the generation progress of a project's slides.
type SlideStats struct {
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Generating int     `json:"generating"`
	Pending    int     `json:"pending"`
	Failed     int     `json:"failed"`
	Percentage float64 `json:"percentage"`
}

// Project is the project record returned by the list and detail endpoints.
type Project struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	Topic       string `json:"topic"`
	Audience    string `json:"audience"`
	Style       string `json:"style"`
	PageNum     int    `json:"page_num"`
	Status      string `json:"status"`
	PDFStatus   string `json:"pdf_status"`
	PPTXStatus  string `json:"pptx_status"`
	CreatedAt   string `json:"created_at"`
}

// ExportStatus returns the status field for the given export kind.
func (p Project) ExportStatus(kind ExportKind) string {
	if kind == ExportPPTX {
		return p.PPTXStatus
	}
	return p.PDFStatus
}

// ProjectSummary is one entry of GET /api/projects.
type ProjectSummary struct {
	Project
	OutlineReady bool       `json:"outline_ready"`
	SlideStats   SlideStats `json:"slide_stats"`
}

// OutlineSummary is the optional outline digest attached to project details.
type OutlineSummary struct {
	GlobalVisualSuggestion map[string]any `json:"global_visual_suggestion"`
	HasImages              bool           `json:"has_images"`
}

// ProjectDetail is the body of GET /api/projects/{id}.
type ProjectDetail struct {
	Project        Project         `json:"project"`
	SlideStats     SlideStats      `json:"slide_stats"`
	OutlineReady   bool            `json:"outline_ready"`
	OutlineSummary *OutlineSummary `json:"outline_summary,omitempty"`
}

// OutlineSlide is one slide inside an outline chapter.
type OutlineSlide struct {
	SlideID      string   `json:"slide_id"`
	SlideTopic   string   `json:"slide_topic"`
	SlideContent []string `json:"slide_content"`
}

// Chapter groups outline slides.
type Chapter struct {
	ChapterID    int            `json:"chapter_id"`
	ChapterTopic string         `json:"chapter_topic"`
	Slides       []OutlineSlide `json:"slides"`
}

// OutlineBody is the structured outline produced by the planning step.
type OutlineBody struct {
	MainTitle      string    `json:"main_title"`
	Subtitle       string    `json:"subtitle"`
	TargetAudience string    `json:"target_audience"`
	Chapters       []Chapter `json:"chapters"`
}

// Outline is the body of GET /api/projects/{id}/outline.
type Outline struct {
	ProjectID              string         `json:"project_id"`
	Topic                  string         `json:"topic"`
	Audience               string         `json:"audience"`
	Style                  string         `json:"style"`
	PageNum                int            `json:"page_num"`
	GlobalVisualSuggestion map[string]any `json:"global_visual_suggestion"`
	OutlineJSON            OutlineBody    `json:"outline_json"`
}

// SlideInfo is one entry of GET /api/projects/{id}/slides.
type SlideInfo struct {
	SlideID      string `json:"slide_id"`
	ChapterID    int    `json:"chapter_id"`
	ChapterTitle string `json:"chapter_title"`
	SlideOrder   int    `json:"slide_order"`
	SlideTopic   string `json:"slide_topic"`
	Status       string `json:"status"`
	HTMLReady    bool   `json:"html_ready"`
}

// SlideList is the body of GET /api/projects/{id}/slides.
type SlideList struct {
	ProjectID   string      `json:"project_id"`
	ProjectName string      `json:"project_name"`
	Slides      []SlideInfo `json:"slides"`
}

// SlideDetail is the full stored slide returned by
// GET /api/projects/{id}/slides/{slideId}.
type SlideDetail struct {
	ProjectID    string `json:"project_id"`
	SlideID      string `json:"slide_id"`
	ChapterID    int    `json:"chapter_id"`
	ChapterTitle string `json:"chapter_title"`
	SlideOrder   int    `json:"slide_order"`
	SlideTopic   string `json:"slide_topic"`
	SlideContent string `json:"slide_content"`
	HTMLContent  string `json:"html_content"`
	Status       string `json:"status"`
}

// CreateProjectResponse is returned when a project is created.
type CreateProjectResponse struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	Status      string `json:"status"`
}

// StatusResponse is the common {project_id, status} reply used by restart,
// export and status endpoints.
type StatusResponse struct {
	ProjectID string `json:"project_id"`
	SlideID   string `json:"slide_id,omitempty"`
	Status    string `json:"status"`
}

// SettingMeta describes one editable backend setting.
type SettingMeta struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Group       string `json:"group"`
	Type        string `json:"type"`
}

// Settings is the body of GET /api/config.
type Settings struct {
	Meta   []SettingMeta  `json:"meta"`
	Values map[string]any `json:"values"`
}

// SettingTest is one connectivity check offered by the backend.
type SettingTest struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}
