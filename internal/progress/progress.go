// SPDX-License-Identifier: EPL-2.0

// Package progress renders per-item progress bars for the batch commands.
package progress

import (
	"io"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Tracker is a single bar counting finished items.
type Tracker struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

// New starts a bar labelled name for total items, drawn on out.
// A nil out renders nothing, which is what tests and --no-progress use.
func New(out io.Writer, name string, total int) *Tracker {
	if out == nil {
		out = io.Discard
	}

	p := mpb.New(mpb.WithWidth(64), mpb.WithOutput(out))
	bar := p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(name+": "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
		),
	)

	return &Tracker{p: p, bar: bar}
}

// Increment marks one item as done. Safe for concurrent use.
func (t *Tracker) Increment() {
	t.bar.Increment()
}

// Wait completes the bar and blocks until it has been rendered.
// Call it exactly once, after the last Increment.
func (t *Tracker) Wait() {
	// a bar that did not reach its total (canceled run) still has to end
	if !t.bar.Completed() {
		t.bar.Abort(false)
	}
	t.p.Wait()
}
