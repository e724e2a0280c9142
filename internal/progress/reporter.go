package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Reporter provides progress feedback for long-running backend work such as
// slide generation and exports.
type Reporter interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

// NewReporter returns a TerminalReporter when stderr is an interactive
// terminal, or a LineReporter in CI and when output is redirected.
func NewReporter(description string) Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" || !isTerminal(os.Stderr) {
		return &LineReporter{Out: os.Stderr, Description: description}
	}
	return &TerminalReporter{Description: description}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	Description string
	bar         *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(r.Description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int, message string) {
	if r.bar == nil {
		return
	}
	// Slide counts can grow once the outline is ready.
	if current > r.bar.GetMax() {
		r.bar.ChangeMax(current)
	}
	r.bar.Describe(message)
	_ = r.bar.Set(current)
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// LineReporter prints one line per update, suitable for logs.
type LineReporter struct {
	Out         io.Writer
	Description string
	total       int
	last        string
}

func (r *LineReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(r.Out, "%s: started (%d items)\n", r.Description, total)
}

func (r *LineReporter) Update(current int, message string) {
	line := fmt.Sprintf("[%d/%d] %s", current, r.total, message)
	if line == r.last {
		return
	}
	r.last = line
	fmt.Fprintln(r.Out, line)
}

func (r *LineReporter) Finish() {
	fmt.Fprintf(r.Out, "%s: done\n", r.Description)
}

// NewDownloadBar returns a writer that renders byte progress for a
// download of size bytes (-1 when unknown) and discards the data.
func NewDownloadBar(size int64, description string) io.Writer {
	if !isTerminal(os.Stderr) {
		return io.Discard
	}
	return progressbar.DefaultBytes(size, description)
}
