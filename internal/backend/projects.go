package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"unicode/utf8"
)

// Defaults applied by the backend to omitted project fields.
const (
	DefaultAudience = "大众"
	DefaultStyle    = "简洁明了"
	DefaultPageNum  = 10
)

// CreateProjectRequest is the body of POST /api/projects.
type CreateProjectRequest struct {
	Topic            string `json:"topic"`
	Audience         string `json:"audience"`
	Style            string `json:"style"`
	PageNum          int    `json:"page_num"`
	ReferenceContent string `json:"reference_content"`
}

// Normalize fills omitted fields with backend defaults.
func (r *CreateProjectRequest) Normalize() {
	if r.Audience == "" {
		r.Audience = DefaultAudience
	}
	if r.Style == "" {
		r.Style = DefaultStyle
	}
	if r.PageNum == 0 {
		r.PageNum = DefaultPageNum
	}
}

// Validate checks the request against the limits the backend enforces, so
// that bad input is rejected before any network call.
func (r CreateProjectRequest) Validate() error {
	n := utf8.RuneCountInString(r.Topic)
	if n == 0 {
		return fmt.Errorf("topic is required")
	}
	if n > 1000 {
		return fmt.Errorf("topic must be at most 1000 characters, got %d", n)
	}
	if utf8.RuneCountInString(r.Audience) > 50 {
		return fmt.Errorf("audience must be at most 50 characters")
	}
	if utf8.RuneCountInString(r.Style) > 50 {
		return fmt.Errorf("style must be at most 50 characters")
	}
	if r.PageNum < 1 || r.PageNum > 100 {
		return fmt.Errorf("page_num must be between 1 and 100, got %d", r.PageNum)
	}
	return nil
}

// ListProjects returns every project with its slide progress.
func (c *Client) ListProjects(ctx context.Context) ([]ProjectSummary, error) {
	var out []ProjectSummary
	if err := c.getJSON(ctx, "/api/projects", &out); err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return out, nil
}

// CreateProject validates and submits a new generation job.
func (c *Client) CreateProject(ctx context.Context, req CreateProjectRequest) (*CreateProjectResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out CreateProjectResponse
	if err := c.postJSON(ctx, "/api/projects", req, &out); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	return &out, nil
}

// GetProject returns project details and progress.
func (c *Client) GetProject(ctx context.Context, id string) (*ProjectDetail, error) {
	var out ProjectDetail
	if err := c.getJSON(ctx, projectPath(id), &out); err != nil {
		return nil, fmt.Errorf("getting project %s: %w", id, err)
	}
	return &out, nil
}

// ProjectStatus returns only the generation status of a project.
func (c *Client) ProjectStatus(ctx context.Context, id string) (string, error) {
	var out StatusResponse
	if err := c.getJSON(ctx, projectPath(id)+"/status", &out); err != nil {
		return "", fmt.Errorf("getting status of %s: %w", id, err)
	}
	return out.Status, nil
}

// GetOutline returns the structured outline of a project.
func (c *Client) GetOutline(ctx context.Context, id string) (*Outline, error) {
	var out Outline
	if err := c.getJSON(ctx, projectPath(id)+"/outline", &out); err != nil {
		return nil, fmt.Errorf("getting outline of %s: %w", id, err)
	}
	return &out, nil
}

// ListSlides returns the per-slide generation status of a project.
func (c *Client) ListSlides(ctx context.Context, id string) (*SlideList, error) {
	var out SlideList
	if err := c.getJSON(ctx, projectPath(id)+"/slides", &out); err != nil {
		return nil, fmt.Errorf("listing slides of %s: %w", id, err)
	}
	return &out, nil
}

// GetSlide returns one stored slide including its generated markup.
func (c *Client) GetSlide(ctx context.Context, id, slideID string) (*SlideDetail, error) {
	var out SlideDetail
	if err := c.getJSON(ctx, projectPath(id)+"/slides/"+url.PathEscape(slideID), &out); err != nil {
		return nil, fmt.Errorf("getting slide %s of %s: %w", slideID, id, err)
	}
	return &out, nil
}

// RestartProject regenerates a whole project.
func (c *Client) RestartProject(ctx context.Context, id string) (*StatusResponse, error) {
	var out StatusResponse
	if err := c.postJSON(ctx, projectPath(id)+"/restart", nil, &out); err != nil {
		return nil, fmt.Errorf("restarting project %s: %w", id, err)
	}
	return &out, nil
}

// RestartSlide regenerates a single slide.
func (c *Client) RestartSlide(ctx context.Context, id, slideID string) (*StatusResponse, error) {
	var out StatusResponse
	path := projectPath(id) + "/slides/" + url.PathEscape(slideID) + "/restart"
	if err := c.postJSON(ctx, path, nil, &out); err != nil {
		return nil, fmt.Errorf("restarting slide %s of %s: %w", slideID, id, err)
	}
	return &out, nil
}

// Export triggers (or reports) an export. A 400 reply means the project has
// not finished generating.
func (c *Client) Export(ctx context.Context, id string, kind ExportKind) (*StatusResponse, error) {
	var out StatusResponse
	if err := c.getJSON(ctx, projectPath(id)+"/export/"+string(kind), &out); err != nil {
		return nil, fmt.Errorf("exporting %s as %s: %w", id, kind, err)
	}
	return &out, nil
}

// DownloadURL returns the absolute URL of an exported deck.
func (c *Client) DownloadURL(projectName string, kind ExportKind) string {
	return c.baseURL + downloadPath(projectName, kind)
}

// OpenDownload starts downloading an exported deck. The caller closes the
// returned reader; size is -1 when the server does not report it.
func (c *Client) OpenDownload(ctx context.Context, projectName string, kind ExportKind) (body io.ReadCloser, size int64, err error) {
	resp, err := c.send(ctx, http.MethodGet, downloadPath(projectName, kind), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("downloading %s: %w", projectName, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		return nil, 0, fmt.Errorf("downloading %s: %w", projectName, newAPIError(resp.StatusCode, data))
	}
	return resp.Body, resp.ContentLength, nil
}

func projectPath(id string) string {
	return "/api/projects/" + url.PathEscape(id)
}

func downloadPath(name string, kind ExportKind) string {
	escaped := url.PathEscape(name)
	return "/projects/" + escaped + "/" + escaped + "." + string(kind)
}
