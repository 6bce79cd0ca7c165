// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import "fmt"

// Build schedules the graph.
//
// Build computes reference counts, culls every task whose outputs are not
// transitively needed by a reader, a captured resource or an external
// resource, and emits the Timeline of acquire/execute/release steps.
//
// Build must be called exactly once per frame. Calling it again without
// Reset panics with an error wrapping ErrAlreadyBuilt.
func (g *Graph) Build() {
	if g.built || len(g.captured) != 0 {
		panic(fmt.Errorf("%w: %q", ErrAlreadyBuilt, g.opts.name))
	}

	g.initRefCounts()
	worklist := g.seedWorklist()
	culled := cullUnreferenced(g.tasks, g.resources, worklist)
	g.emitTimeline()
	g.built = true

	log := Logger()
	log.Debug("framegraph: build complete",
		"graph", g.opts.name,
		"tasks", len(g.tasks),
		"culled", culled,
		"resources", len(g.resources),
		"steps", len(g.timeline.Steps))
	for _, t := range g.tasks {
		if t.culled {
			log.Debug("framegraph: task culled", "graph", g.opts.name, "task", t.name)
		}
	}
}

// initRefCounts sets the initial task and resource reference counts and
// collects captured resources.
func (g *Graph) initRefCounts() {
	for _, t := range g.tasks {
		t.refs = len(t.produced) + len(t.written) + len(t.readWritten)
		t.culled = false
	}
	for _, r := range g.resources {
		r.refs = len(r.readers)
		r.firstUse = InvalidTask
		r.lastUse = InvalidTask
		if r.captured {
			g.captured = append(g.captured, r.id)
		}
	}
}

// seedWorklist returns the transient, uncaptured resources nobody reads.
func (g *Graph) seedWorklist() []ResourceID {
	var worklist []ResourceID
	for _, r := range g.resources {
		if !r.transient || r.captured || r.refs != 0 {
			continue
		}
		if g.opts.fireAndForget && len(r.writers) == 0 {
			continue
		}
		worklist = append(worklist, r.id)
	}
	return worklist
}

// cullUnreferenced drains the worklist of unreferenced resources. Each popped
// resource drops one reference from its creator and from each of its
// writers. It returns the number of tasks culled.
func cullUnreferenced(tasks []*Task, resources []*Resource, worklist []ResourceID) int {
	culled := 0
	for len(worklist) > 0 {
		r := resources[worklist[len(worklist)-1]]
		worklist = worklist[:len(worklist)-1]

		if r.creator != InvalidTask {
			var n int
			worklist, n = releaseTaskRef(tasks, resources, r.creator, worklist)
			culled += n
		}
		for _, w := range r.writers {
			var n int
			worklist, n = releaseTaskRef(tasks, resources, w, worklist)
			culled += n
		}
	}
	return culled
}

// releaseTaskRef drops one reference from task id. When the task loses its
// last reference it is culled, and each resource it reads loses the task's
// reference in turn. Read resources that become unreferenced are pushed onto
// the worklist. It returns the updated worklist and 1 if the task was culled.
func releaseTaskRef(tasks []*Task, resources []*Resource, id TaskID, worklist []ResourceID) ([]ResourceID, int) {
	t := tasks[id]
	if t.refs <= 0 {
		malformed("reference count underflow on task %q", t.name)
	}
	t.refs--
	if t.refs > 0 || t.culled {
		return worklist, 0
	}

	t.culled = true
	for _, rid := range t.read {
		r := resources[rid]
		if r.refs <= 0 {
			malformed("reference count underflow on resource %q", r.name)
		}
		r.refs--
		if r.refs == 0 && r.transient && !r.captured {
			worklist = append(worklist, rid)
		}
	}
	return worklist, 1
}

// emitTimeline walks surviving tasks in declaration order and records the
// acquire and release points of transient resources.
//
// A transient resource is acquired at its first surviving user and released
// after its last surviving user. Culled tasks are skipped in both scans, so
// a reader that was culled never extends a lifetime.
func (g *Graph) emitTimeline() {
	tl := &g.timeline
	tl.reset()

	for _, t := range g.tasks {
		if t.culled {
			continue
		}
		t.forEachResource(func(rid ResourceID) {
			r := g.resources[rid]
			if !r.managed() {
				return
			}
			if r.firstUse == InvalidTask {
				r.firstUse = t.id
			}
			r.lastUse = t.id
		})
	}

	for _, t := range g.tasks {
		if t.culled {
			continue
		}
		step := TimelineStep{Task: t.id, AcquireBegin: len(tl.Acquired)}
		t.forEachResource(func(rid ResourceID) {
			if r := g.resources[rid]; r.managed() && r.firstUse == t.id {
				tl.Acquired = append(tl.Acquired, rid)
			}
		})
		step.AcquireEnd = len(tl.Acquired)

		step.ReleaseBegin = len(tl.Released)
		t.forEachResource(func(rid ResourceID) {
			if r := g.resources[rid]; r.released() && r.lastUse == t.id {
				tl.Released = append(tl.Released, rid)
			}
		})
		step.ReleaseEnd = len(tl.Released)

		tl.Steps = append(tl.Steps, step)
	}
}

// forEachResource visits produced, read, written and read-written resources
// in that order.
func (t *Task) forEachResource(fn func(ResourceID)) {
	for _, list := range [...][]ResourceID{t.produced, t.read, t.written, t.readWritten} {
		for _, id := range list {
			fn(id)
		}
	}
}
