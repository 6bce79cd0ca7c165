// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

// Graph is one frame's render graph.
//
// A Graph is built, scheduled and executed by a single goroutine: declare
// tasks and resources, call Build once, call Execute once, then Reset before
// declaring the next frame. Graph is NOT safe for concurrent use.
type Graph struct {
	opts graphOptions

	tasks     []*Task
	resources []*Resource

	captured []ResourceID
	timeline Timeline

	built    bool
	executed bool
}

// New creates an empty Graph.
func New(opts ...Option) *Graph {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Graph{
		opts:      o,
		tasks:     make([]*Task, 0, o.taskCap),
		resources: make([]*Resource, 0, o.resourceCap),
	}
}

// Name returns the graph name.
func (g *Graph) Name() string { return g.opts.name }

// AddTask appends a generic task. Tasks execute in the order they are added.
func (g *Graph) AddTask(name string) *Task {
	return g.newTask(name, TaskKindGeneric)
}

// AddRenderPass appends a render pass task.
func (g *Graph) AddRenderPass(name string) *RenderPass {
	t := g.newTask(name, TaskKindRenderPass)
	t.pass = &renderPassData{}
	return &RenderPass{Task: t}
}

// AddExternalTexture imports a caller-owned texture. External resources are
// never culled, acquired or released by the graph; physical is handed to
// callbacks as is.
func (g *Graph) AddExternalTexture(name string, desc TextureDesc, physical any) ResourceID {
	g.mustBeMutable()
	r := g.newResource(name, Texture(desc), false)
	r.physical = physical
	return r.id
}

// AddExternalBuffer imports a caller-owned buffer.
func (g *Graph) AddExternalBuffer(name string, desc BufferDesc, physical any) ResourceID {
	g.mustBeMutable()
	r := g.newResource(name, Buffer(desc), false)
	r.physical = physical
	return r.id
}

// Capture marks a resource as captured: it is exempt from culling, is never
// released by the graph, and its physical handle stays valid after Execute.
// The caller owns the destruction of captured transient resources.
func (g *Graph) Capture(id ResourceID) {
	g.mustBeMutable()
	g.mustResource(id).captured = true
}

// Task returns the task with the given handle.
func (g *Graph) Task(id TaskID) *Task {
	if id < 0 || int(id) >= len(g.tasks) {
		return nil
	}
	return g.tasks[id]
}

// Resource returns the resource with the given handle.
func (g *Graph) Resource(id ResourceID) *Resource {
	if id < 0 || int(id) >= len(g.resources) {
		return nil
	}
	return g.resources[id]
}

// Tasks returns all tasks in declaration order, including culled ones.
// The returned slice must not be modified.
func (g *Graph) Tasks() []*Task { return g.tasks }

// Resources returns all resources in declaration order.
// The returned slice must not be modified.
func (g *Graph) Resources() []*Resource { return g.resources }

// Physical returns the physical handle bound to a resource, or nil.
// After Execute only external and captured resources remain bound.
func (g *Graph) Physical(id ResourceID) any {
	return g.mustResource(id).physical
}

// Timeline returns the schedule produced by Build.
func (g *Graph) Timeline() *Timeline { return &g.timeline }

// IsBuilt reports whether Build has run since the last Reset.
func (g *Graph) IsBuilt() bool { return g.built }

// Reset discards all tasks, resources and the timeline so the Graph can
// describe the next frame. Physical handles of captured resources are not
// freed.
func (g *Graph) Reset() {
	clear(g.tasks)
	clear(g.resources)
	g.tasks = g.tasks[:0]
	g.resources = g.resources[:0]
	g.captured = g.captured[:0]
	g.timeline.reset()
	g.built = false
	g.executed = false
}

func (g *Graph) newTask(name string, kind TaskKind) *Task {
	g.mustBeMutable()
	t := &Task{
		graph: g,
		id:    TaskID(len(g.tasks)),
		name:  name,
		kind:  kind,
	}
	g.tasks = append(g.tasks, t)
	return t
}

func (g *Graph) newResource(name string, desc ResourceDesc, transient bool) *Resource {
	r := &Resource{
		id:        ResourceID(len(g.resources)),
		name:      name,
		desc:      desc.Normalize(),
		creator:   InvalidTask,
		transient: transient,
		firstUse:  InvalidTask,
		lastUse:   InvalidTask,
	}
	g.resources = append(g.resources, r)
	return r
}

func (g *Graph) mustResource(id ResourceID) *Resource {
	if id < 0 || int(id) >= len(g.resources) {
		malformed("unknown resource handle %d", id)
	}
	return g.resources[id]
}

func (g *Graph) mustBeMutable() {
	if g.built {
		malformed("graph %q modified after Build", g.opts.name)
	}
}
