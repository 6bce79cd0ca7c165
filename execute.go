// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import "fmt"

// Allocator materializes physical resources for transient proxies.
// The pool package provides a recycling implementation.
type Allocator interface {
	// Allocate returns a physical resource matching desc.
	Allocate(desc ResourceDesc) (any, error)

	// Free hands a physical resource back after its last use in the frame.
	Free(desc ResourceDesc, physical any)
}

// RenderPassEncoder is an open render pass.
// The gpu package returns a hal.RenderPassEncoder.
type RenderPassEncoder interface {
	End()
}

// BoundColorAttachment is a color attachment resolved to its physical texture.
type BoundColorAttachment struct {
	ColorAttachment
	Physical any
}

// BoundDepthStencilAttachment is a depth/stencil attachment resolved to its
// physical texture.
type BoundDepthStencilAttachment struct {
	DepthStencilAttachment
	Physical any
}

// RenderPassBegin describes a render pass about to be opened.
type RenderPassBegin struct {
	Label        string
	Width        uint32
	Height       uint32
	Colors       []BoundColorAttachment
	DepthStencil *BoundDepthStencilAttachment
}

// CommandRecorder opens render passes for TaskKindRenderPass tasks.
type CommandRecorder interface {
	BeginRenderPass(desc *RenderPassBegin) (RenderPassEncoder, error)
}

// RenderContext carries the per-frame collaborators of Execute.
// It is constructed by the caller for each frame and never stored globally.
type RenderContext struct {
	// Allocator materializes transient resources. Required.
	Allocator Allocator

	// Recorder opens render passes. Required when the graph contains
	// surviving render pass tasks.
	Recorder CommandRecorder

	// Frame is an opaque per-frame value handed to callbacks.
	Frame any
}

// ExecutionContext is passed to task callbacks.
type ExecutionContext struct {
	graph *Graph
	rc    *RenderContext
	task  *Task
	step  int
}

// Graph returns the executing graph.
func (ec *ExecutionContext) Graph() *Graph { return ec.graph }

// Task returns the running task.
func (ec *ExecutionContext) Task() *Task { return ec.task }

// Step returns the timeline step index of the running task.
func (ec *ExecutionContext) Step() int { return ec.step }

// Recorder returns the command recorder of the frame.
func (ec *ExecutionContext) Recorder() CommandRecorder { return ec.rc.Recorder }

// Frame returns the opaque per-frame value of the RenderContext.
func (ec *ExecutionContext) Frame() any { return ec.rc.Frame }

// Physical returns the physical resource bound to id.
// The running task must have declared id; otherwise Physical panics.
func (ec *ExecutionContext) Physical(id ResourceID) any {
	r := ec.graph.mustResource(id)
	if !ec.task.uses(id) {
		malformed("task %q accesses undeclared resource %q", ec.task.name, r.name)
	}
	return r.physical
}

// Execute runs the timeline once: for each step it acquires the step's
// resources, runs the task and releases the resources whose last use has
// passed.
//
// If an allocation or a callback fails, Execute frees every transient
// resource still held (captured ones excepted) and returns the error
// wrapped in ErrAllocationFailed or ErrTaskFailed.
func (g *Graph) Execute(rc *RenderContext) error {
	if !g.built {
		return ErrNotBuilt
	}
	if g.executed {
		return ErrAlreadyExecuted
	}
	if rc == nil || rc.Allocator == nil {
		return ErrNilRenderContext
	}
	g.executed = true

	tl := &g.timeline
	for i, step := range tl.Steps {
		t := g.tasks[step.Task]

		for _, rid := range tl.Acquires(i) {
			r := g.resources[rid]
			if err := g.acquire(rc, r); err != nil {
				g.abort(rc, t)
				return fmt.Errorf("%w: %q for task %q: %w", ErrAllocationFailed, r.name, t.name, err)
			}
		}

		ec := &ExecutionContext{graph: g, rc: rc, task: t, step: i}
		if err := runTask(ec); err != nil {
			g.abort(rc, t)
			return fmt.Errorf("%w: %q: %w", ErrTaskFailed, t.name, err)
		}

		for _, rid := range tl.Releases(i) {
			g.release(rc, g.resources[rid])
		}
	}
	return nil
}

func (g *Graph) acquire(rc *RenderContext, r *Resource) error {
	if r.physical != nil {
		malformed("resource %q acquired twice", r.name)
	}
	physical, err := rc.Allocator.Allocate(r.desc)
	if err != nil {
		return err
	}
	if physical == nil {
		return fmt.Errorf("allocator returned nil for %v", r.desc)
	}
	r.physical = physical
	return nil
}

func (g *Graph) release(rc *RenderContext, r *Resource) {
	if r.physical == nil {
		return
	}
	rc.Allocator.Free(r.desc, r.physical)
	r.physical = nil
}

// abort frees every non-captured transient resource still bound.
func (g *Graph) abort(rc *RenderContext, failed *Task) {
	freed := 0
	for _, r := range g.resources {
		if r.released() && r.physical != nil {
			g.release(rc, r)
			freed++
		}
	}
	Logger().Warn("framegraph: frame aborted",
		"graph", g.opts.name, "task", failed.name, "freed", freed)
}

// runTask dispatches on the task variant.
func runTask(ec *ExecutionContext) error {
	t := ec.task
	switch t.kind {
	case TaskKindGeneric:
		if t.execute == nil {
			return nil
		}
		return t.execute(ec)
	case TaskKindRenderPass:
		return runRenderPass(ec)
	default:
		return fmt.Errorf("unknown task kind %v", t.kind)
	}
}

func runRenderPass(ec *ExecutionContext) error {
	t := ec.task
	if ec.rc.Recorder == nil {
		return ErrNoRecorder
	}

	desc := ec.graph.renderPassBegin(t)
	pass, err := ec.rc.Recorder.BeginRenderPass(desc)
	if err != nil {
		return fmt.Errorf("begin render pass: %w", err)
	}
	for _, sp := range t.pass.subpasses {
		if err := sp.fn(ec, pass); err != nil {
			pass.End()
			return fmt.Errorf("subpass %q: %w", sp.name, err)
		}
	}
	pass.End()
	return nil
}

// renderPassBegin binds the attachments of t to their physical resources.
func (g *Graph) renderPassBegin(t *Task) *RenderPassBegin {
	w, h := t.renderArea()
	desc := &RenderPassBegin{
		Label:  t.name,
		Width:  w,
		Height: h,
		Colors: make([]BoundColorAttachment, len(t.pass.colors)),
	}
	for i, att := range t.pass.colors {
		desc.Colors[i] = BoundColorAttachment{
			ColorAttachment: att,
			Physical:        g.resources[att.Resource].physical,
		}
	}
	if ds := t.pass.depthStencil; ds != nil {
		desc.DepthStencil = &BoundDepthStencilAttachment{
			DepthStencilAttachment: *ds,
			Physical:               g.resources[ds.Resource].physical,
		}
	}
	return desc
}
