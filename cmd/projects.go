package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ezppt/deckview/internal/backend"
	"github.com/ezppt/deckview/internal/dashboard"
	"github.com/ezppt/deckview/internal/preview"
	"github.com/ezppt/deckview/internal/progress"
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"project"},
	Short:   "Manage presentation projects on the backend",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects with their generation progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		projects, err := newClient(cfg).ListProjects(cmd.Context())
		if err != nil {
			return err
		}
		filter, _ := cmd.Flags().GetString("filter")
		projects = dashboard.FilterProjects(projects, filter)
		if len(projects) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
			return nil
		}

		rows := make([][]string, 0, len(projects))
		for _, p := range projects {
			rows = append(rows, []string{
				p.ProjectID,
				p.ProjectName,
				p.Status,
				fmt.Sprintf("%d/%d", p.SlideStats.Completed, p.SlideStats.Total),
				fmt.Sprintf("%.0f%%", p.SlideStats.Percentage),
				p.CreatedAt,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"ID", "Name", "Status", "Slides", "Progress", "Created"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
		))
		return nil
	},
}

var projectsShowCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show a project's details and export status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		d, err := newClient(cfg).GetProject(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		p := d.Project
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n\n", p.Topic)
		rows := [][]string{
			{"ID", p.ProjectID},
			{"Name", p.ProjectName},
			{"Status", p.Status},
			{"Audience", p.Audience},
			{"Style", p.Style},
			{"Pages", strconv.Itoa(p.PageNum)},
			{"Slides", fmt.Sprintf("%d/%d completed, %d generating, %d pending, %d failed",
				d.SlideStats.Completed, d.SlideStats.Total, d.SlideStats.Generating, d.SlideStats.Pending, d.SlideStats.Failed)},
			{"Outline ready", strconv.FormatBool(d.OutlineReady)},
			{"PDF", statusOrDash(p.PDFStatus)},
			{"PPTX", statusOrDash(p.PPTXStatus)},
			{"Created", p.CreatedAt},
		}
		fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
		if p.Status == backend.StatusCompleted {
			fmt.Fprintf(out, "\nPreview: deckview serve, then open /preview?project=%s\n", p.ProjectName)
		}
		return nil
	},
}

var projectsOutlineCmd = &cobra.Command{
	Use:   "outline <project-id>",
	Short: "Print a project's outline as Markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		outline, err := newClient(cfg).GetOutline(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		md := preview.OutlineMarkdown(outline)
		htmlPath, _ := cmd.Flags().GetString("html")
		if htmlPath == "" {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		body, err := preview.RenderMarkdown(md)
		if err != nil {
			return err
		}
		if err := os.WriteFile(htmlPath, []byte(body), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", htmlPath, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Outline written to %s\n", htmlPath)
		return nil
	},
}

var projectsSlidesCmd = &cobra.Command{
	Use:   "slides <project-id>",
	Short: "List a project's slides and their generation status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		list, err := newClient(cfg).ListSlides(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(list.Slides) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No slides yet.")
			return nil
		}

		rows := make([][]string, 0, len(list.Slides))
		for i, s := range list.Slides {
			ready := ""
			if s.HTMLReady {
				ready = "yes"
			}
			rows = append(rows, []string{strconv.Itoa(i + 1), s.SlideID, s.ChapterTitle, s.SlideTopic, s.Status, ready})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"#", "Slide", "Chapter", "Topic", "Status", "HTML"},
			rows,
			[]columnAlignment{alignRight},
		))
		return nil
	},
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project and start generating it",
	Long: `Submits a new deck for generation. Without --topic an interactive form
asks for the topic, audience, style and page count.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var req backend.CreateProjectRequest
		req.Topic, _ = cmd.Flags().GetString("topic")
		req.Audience, _ = cmd.Flags().GetString("audience")
		req.Style, _ = cmd.Flags().GetString("style")
		req.PageNum, _ = cmd.Flags().GetInt("pages")
		if ref, _ := cmd.Flags().GetString("reference"); ref != "" {
			data, err := os.ReadFile(ref)
			if err != nil {
				return fmt.Errorf("reading reference content: %w", err)
			}
			req.ReferenceContent = string(data)
		}
		if req.Topic == "" {
			if err := promptProject(&req); err != nil {
				return err
			}
		}

		resp, err := newClient(cfg).CreateProject(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s), status %s\n", resp.ProjectID, resp.ProjectName, resp.Status)

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			return watchProject(cmd, newClient(cfg), cfg.Dashboard.PollInterval, resp.ProjectID)
		}
		return nil
	},
}

// promptProject fills the request interactively.
func promptProject(req *backend.CreateProjectRequest) error {
	prompts := []struct {
		label    string
		def      string
		validate promptui.ValidateFunc
		target   *string
	}{
		{"Topic", "", func(s string) error {
			if s == "" {
				return errors.New("topic is required")
			}
			return nil
		}, &req.Topic},
		{"Audience", backend.DefaultAudience, nil, &req.Audience},
		{"Style", backend.DefaultStyle, nil, &req.Style},
	}
	for _, p := range prompts {
		prompt := promptui.Prompt{Label: p.label, Default: p.def, Validate: p.validate}
		v, err := prompt.Run()
		if err != nil {
			return fmt.Errorf("%s: %w", p.label, err)
		}
		*p.target = v
	}

	pagePrompt := promptui.Prompt{
		Label:   "Number of slides",
		Default: strconv.Itoa(backend.DefaultPageNum),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 100 {
				return errors.New("enter a number between 1 and 100")
			}
			return nil
		},
	}
	v, err := pagePrompt.Run()
	if err != nil {
		return fmt.Errorf("pages: %w", err)
	}
	req.PageNum, _ = strconv.Atoi(v)
	return nil
}

var projectsRestartCmd = &cobra.Command{
	Use:   "restart <project-id>",
	Short: "Regenerate a whole project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		resp, err := newClient(cfg).RestartProject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Project %s restarted, status %s\n", args[0], resp.Status)
		return nil
	},
}

var projectsRestartSlideCmd = &cobra.Command{
	Use:   "restart-slide <project-id> <slide-id>",
	Short: "Regenerate a single slide",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		resp, err := newClient(cfg).RestartSlide(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Slide %s restarted, status %s\n", args[1], resp.Status)
		return nil
	},
}

var projectsWatchCmd = &cobra.Command{
	Use:   "watch <project-id>",
	Short: "Follow a project's generation until it finishes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		interval := cfg.Dashboard.PollInterval
		if cmd.Flags().Changed("interval") {
			interval, _ = cmd.Flags().GetDuration("interval")
		}
		return watchProject(cmd, newClient(cfg), interval, args[0])
	},
}

func watchProject(cmd *cobra.Command, client *backend.Client, interval time.Duration, id string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := &dashboard.Watcher{
		Client:   client,
		Interval: interval,
		Reporter: progress.NewReporter("generating " + id),
	}
	d, err := w.Watch(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Project %s %s: %d/%d slides\n", id, d.Project.Status, d.SlideStats.Completed, d.SlideStats.Total)
	return nil
}

var projectsExportCmd = &cobra.Command{
	Use:   "export <project-id> <pdf|pptx>",
	Short: "Export a finished project as PDF or PPTX",
	Long: `Triggers an export. With --wait the command polls until the export
finishes; with --download the file is also saved locally.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := backend.ParseExportKind(args[1])
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		opts := dashboard.ExportOptions{}
		opts.Wait, _ = cmd.Flags().GetBool("wait")
		if cmd.Flags().Changed("download") {
			dir, _ := cmd.Flags().GetString("download")
			opts.DownloadDir = strings.TrimSpace(dir)
			if opts.DownloadDir == "" {
				opts.DownloadDir = cfg.Dashboard.DownloadDir
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Downloads can outlast the per-request timeout; ctx bounds them instead.
		e := &dashboard.Exporter{
			Client:   backend.New(cfg.BackendURL),
			Interval: cfg.Dashboard.PollInterval,
		}
		res, err := e.Export(ctx, args[0], kind, opts)
		if err != nil {
			if backend.StatusCode(err) == http.StatusBadRequest {
				return fmt.Errorf("%s (the project must finish generating first)", backend.Message(err))
			}
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case res.Path != "":
			fmt.Fprintf(out, "%s export saved to %s\n", kind, res.Path)
		case res.Status == backend.StatusCompleted:
			fmt.Fprintf(out, "%s export is ready\n", kind)
		default:
			fmt.Fprintf(out, "%s export started (status %s)\n", kind, res.Status)
		}
		return nil
	},
}

func statusOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	projectsListCmd.Flags().String("filter", "", "only show projects whose name or topic contains this text")
	projectsOutlineCmd.Flags().String("html", "", "write the outline as HTML to this file")

	projectsCreateCmd.Flags().String("topic", "", "presentation topic")
	projectsCreateCmd.Flags().String("audience", "", "target audience (default "+backend.DefaultAudience+")")
	projectsCreateCmd.Flags().String("style", "", "visual style (default "+backend.DefaultStyle+")")
	projectsCreateCmd.Flags().Int("pages", 0, "number of slides, 1-100 (default 10)")
	projectsCreateCmd.Flags().String("reference", "", "file with reference material for the outline")
	projectsCreateCmd.Flags().Bool("watch", false, "follow generation after creating")

	projectsWatchCmd.Flags().Duration("interval", 0, "poll interval (default dashboard.poll_interval)")

	projectsExportCmd.Flags().Bool("wait", false, "wait for the export to finish")
	projectsExportCmd.Flags().String("download", "", "download the exported file into this directory (default dashboard.download_dir)")
	projectsExportCmd.Flags().Lookup("download").NoOptDefVal = " "

	projectsCmd.AddCommand(
		projectsListCmd,
		projectsShowCmd,
		projectsOutlineCmd,
		projectsSlidesCmd,
		projectsCreateCmd,
		projectsRestartCmd,
		projectsRestartSlideCmd,
		projectsWatchCmd,
		projectsExportCmd,
	)
	rootCmd.AddCommand(projectsCmd)
}
