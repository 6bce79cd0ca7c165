// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package pool recycles physical GPU resources across frames.
//
// A Pool implements framegraph.Allocator. Resources handed back with Free
// are kept idle, keyed by their descriptor, and returned by the next
// Allocate with an identical descriptor. Idle resources are destroyed when
// the memory budget would be exceeded (least recently freed first) or when
// they stayed idle for more than MaxIdleFrames calls to EndFrame.
//
//	p := pool.New(gpu.NewFactory(device), pool.Config{MaxMemoryMB: 512})
//	defer p.Close()
//
//	for {
//	    g := buildFrame()
//	    g.Build()
//	    _ = g.Execute(&framegraph.RenderContext{Allocator: p, Recorder: rec})
//	    p.EndFrame()
//	}
//
// Physical handles returned by the Factory are used as map keys and must be
// comparable; pointers are the usual choice.
package pool
