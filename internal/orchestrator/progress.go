package orchestrator

import (
	"fmt"
	"io"
	"time"

	"github.com/andy-wilson/gatekeeper/internal/ui"
)

// ProgressReporter is notified as the orchestrator starts and finishes each
// repository's pass. Run calls it sequentially, in step with its own
// single-threaded fetch loop; implementations need no synchronization.
type ProgressReporter interface {
	Start(slug string)
	Complete(slug string)
	Fail(slug string, err error)
}

// Progress is a terminal progress reporter for a sequential pass over a
// fixed set of repositories. It mirrors a spinner message with the
// repository currently being fetched and reports a one-line summary when
// the pass completes.
type Progress struct {
	total     int
	completed int
	failed    int
	startTime time.Time
	spinner   *ui.Spinner
	writer    io.Writer
}

// NewProgress creates a Progress reporter for a run of total repositories.
// When quiet is true, or w is not a terminal, no spinner is shown and only
// the final summary is written.
func NewProgress(total int, w io.Writer, quiet bool) *Progress {
	p := &Progress{total: total, startTime: time.Now(), writer: w}

	if !quiet && ui.IsTerminal(w) {
		p.spinner = ui.NewSpinner(ui.WithWriter(w), ui.WithMessage("starting"))
		p.spinner.Start()
	}

	return p
}

// Start reports that slug's pull requests are about to be fetched.
func (p *Progress) Start(slug string) {
	if p.spinner != nil {
		p.spinner.UpdateMessage(fmt.Sprintf("[%d/%d] %s", p.completed+p.failed+1, p.total, slug))
	}
}

// Complete reports that slug's pass finished without a repository-level
// fetch error. Per-PR failures within slug do not prevent Complete.
func (p *Progress) Complete(slug string) {
	p.completed++
}

// Fail reports that slug's pull request list could not be fetched.
func (p *Progress) Fail(slug string, err error) {
	p.failed++
}

// Summary stops the spinner, if running, and writes a final one-line
// count of completed and failed repositories.
func (p *Progress) Summary() {
	if p.spinner != nil {
		p.spinner.Stop()
	}

	elapsed := time.Since(p.startTime).Round(time.Second)
	if p.failed > 0 {
		fmt.Fprintf(p.writer, "done: %d/%d repositories reported, %d failed, in %s\n", p.completed, p.total, p.failed, elapsed)
	} else {
		fmt.Fprintf(p.writer, "done: %d/%d repositories reported in %s\n", p.completed, p.total, elapsed)
	}
}
