// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package framegraph schedules the GPU work of one frame over a graph of
// virtual resources.
//
// # Overview
//
// Client code declares tasks (generic tasks and render passes) and the
// resources they produce, read and write. Build computes reference counts,
// culls work whose results nobody needs, and emits a Timeline that says
// exactly when each transient resource is acquired and released. Execute
// walks the Timeline, materializing physical resources through an
// Allocator and invoking the task callbacks.
//
//	g := framegraph.New(framegraph.WithName("main"))
//
//	gbuf := g.AddRenderPass("gbuffer")
//	albedo := gbuf.CreateTexture("albedo", framegraph.TextureDesc{
//	    Width: 1920, Height: 1080,
//	    Format: gputypes.TextureFormatRGBA8Unorm,
//	    Usage:  gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
//	})
//	gbuf.AddColorAttachment(framegraph.ColorAttachment{
//	    Resource: albedo,
//	    LoadOp:   gputypes.LoadOpClear,
//	    StoreOp:  gputypes.StoreOpStore,
//	})
//	gbuf.AddSubpass("opaque", drawOpaque)
//
//	backbuffer := g.AddExternalTexture("backbuffer", surfaceDesc, surfaceTexture)
//	present := g.AddRenderPass("compose")
//	present.Read(albedo)
//	present.AddColorAttachment(framegraph.ColorAttachment{Resource: backbuffer})
//	present.AddSubpass("blit", blit)
//
//	g.Build()
//	err := g.Execute(&framegraph.RenderContext{Allocator: pool, Recorder: recorder})
//
// # Scheduling
//
// Tasks execute strictly in declaration order; Build never reorders them.
// A task survives when at least one resource it produces or writes is read
// by a surviving task, is captured, or is external. Unreferenced transient
// resources seed a worklist; each one drops a reference from its creator
// and writers, and a task that loses all references is culled and drops its
// own reads in turn.
//
// A transient resource is acquired before its first surviving user and
// released after its last surviving user. Captured resources are never
// released; external resources are never acquired or released.
//
// # Lifetime
//
// A Graph describes one frame. Call Reset and declare the graph again for
// the next frame. Resource and task handles do not survive Reset.
//
// # Errors
//
// A malformed graph (unknown handles, duplicate declarations, reference
// count underflow) is a programming error and panics with an error wrapping
// ErrMalformedGraph. Execute returns errors for allocation and callback
// failures.
//
// # Diagnostics
//
// Debug logs the timeline, WriteTimeline writes it as text and
// ExportGraphviz renders the whole graph, culled nodes included.
package framegraph
