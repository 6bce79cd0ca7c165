// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpu binds frame graphs to a wgpu/hal device.
//
// Factory creates hal textures and buffers for the pool package, Recorder
// opens hal render passes for render pass tasks, and Renderer ties both
// together: it encodes one graph per command buffer, submits it and waits
// on a fence.
//
//	r, err := gpu.NewRenderer(device, queue, gpu.Config{})
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	g := buildFrame()
//	if err := r.RenderFrame(g, nil); err != nil {
//	    return err
//	}
//
// A host application that already owns a device (for example gogpu) passes
// it in through NewRendererFromProvider.
package gpu
