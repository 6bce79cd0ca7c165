// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Debug logs the timeline at debug level. It has no effect on the schedule.
func (g *Graph) Debug() {
	log := Logger()
	if !log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	var sb strings.Builder
	_ = g.WriteTimeline(&sb)
	log.Debug("framegraph: timeline", "graph", g.opts.name, "dump", sb.String())
}

// WriteTimeline writes a human-readable trace of the timeline: for every
// step the resources acquired, the task executed and the resources released,
// followed by the culled tasks.
func (g *Graph) WriteTimeline(w io.Writer) error {
	if !g.built {
		_, err := fmt.Fprintf(w, "framegraph %q: not built\n", g.opts.name)
		return err
	}

	ew := &errWriter{w: w}
	tl := &g.timeline
	ew.printf("framegraph %q: %d steps, %d tasks, %d resources\n",
		g.opts.name, tl.Len(), len(g.tasks), len(g.resources))
	for i, step := range tl.Steps {
		t := g.tasks[step.Task]
		ew.printf("step %d: %s %q\n", i, t.kind, t.name)
		for _, rid := range tl.Acquires(i) {
			r := g.resources[rid]
			ew.printf("  acquire %q (%v)\n", r.name, r.desc)
		}
		ew.printf("  execute %q\n", t.name)
		for _, rid := range tl.Releases(i) {
			ew.printf("  release %q\n", g.resources[rid].name)
		}
	}
	for _, t := range g.tasks {
		if t.culled {
			ew.printf("culled %q\n", t.name)
		}
	}
	for _, r := range g.resources {
		if r.captured {
			ew.printf("captured %q\n", r.name)
		}
	}
	return ew.err
}

// errWriter keeps the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
