// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command fgdemo builds a deferred-rendering frame graph, prints its
// timeline and runs it on a noop wgpu/hal device.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/gpu"
	"github.com/gogpu/framegraph/pool"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

func main() {
	var (
		width    = flag.Int("width", 1280, "render width")
		height   = flag.Int("height", 720, "render height")
		frames   = flag.Int("frames", 3, "frames to render")
		dot      = flag.String("dot", "", "write the graph in Graphviz DOT format to this file")
		debug    = flag.Bool("debug", false, "add an overlay pass nobody reads (culled)")
		fire     = flag.Bool("fire-and-forget", false, "keep producers of unread outputs")
		budgetMB = flag.Int("budget", pool.DefaultMaxMemoryMB, "pool memory budget in MB")
		verbose  = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *verbose {
		framegraph.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	device, queue, cleanup, err := openNoopDevice()
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}
	defer cleanup()

	r, err := gpu.NewRenderer(device, queue, gpu.Config{
		Pool:  pool.Config{MaxMemoryMB: *budgetMB},
		Label: "fgdemo",
	})
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Close()

	w, h := uint32(*width), uint32(*height)
	factory := gpu.NewFactory(device)
	bbDesc := framegraph.Texture(backbufferDesc(w, h))
	backbuffer, err := factory.Create(bbDesc)
	if err != nil {
		log.Fatalf("Failed to create backbuffer: %v", err)
	}
	defer factory.Destroy(bbDesc, backbuffer)

	opts := []framegraph.Option{
		framegraph.WithName("deferred"),
		framegraph.WithFireAndForgetOutputs(*fire),
	}
	for i := 0; i < *frames; i++ {
		g := framegraph.New(opts...)
		declareFrame(g, w, h, backbuffer, *debug)
		g.Build()

		if i == 0 {
			if err := g.WriteTimeline(os.Stdout); err != nil {
				log.Fatalf("Failed to print timeline: %v", err)
			}
			if *dot != "" {
				if err := g.ExportGraphviz(*dot); err != nil {
					log.Fatalf("Failed to export graph: %v", err)
				}
				log.Printf("Graph written to %s\n", *dot)
			}
		}
		g.Debug()

		if err := r.RenderFrame(g, i); err != nil {
			log.Fatalf("Frame %d failed: %v", i, err)
		}
	}

	fmt.Println(r.Pool().Stats())
	log.Printf("Rendered %d frames (%dx%d)\n", r.Frames(), w, h)
}

func openNoopDevice() (hal.Device, hal.Queue, func(), error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, nil, nil, err
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, nil, err
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup, nil
}

func backbufferDesc(w, h uint32) framegraph.TextureDesc {
	return framegraph.TextureDesc{
		Width:  w,
		Height: h,
		Format: gputypes.TextureFormatBGRA8Unorm,
		Usage:  gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	}
}

func target(w, h uint32, format gputypes.TextureFormat) framegraph.TextureDesc {
	return framegraph.TextureDesc{
		Width:  w,
		Height: h,
		Format: format,
		Usage:  gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
	}
}

// declareFrame declares shadow, gbuffer, lighting, bloom, exposure,
// tonemap and present passes.
func declareFrame(g *framegraph.Graph, w, h uint32, backbuffer any, debug bool) {
	shadow := g.AddRenderPass("shadow")
	shadowMap := shadow.CreateTexture("shadow_map", target(2048, 2048, gputypes.TextureFormatDepth32Float))
	shadow.SetDepthStencilAttachment(framegraph.DepthStencilAttachment{
		Resource:        shadowMap,
		DepthLoadOp:     gputypes.LoadOpClear,
		DepthStoreOp:    gputypes.StoreOpStore,
		DepthClearValue: 1,
	})
	shadow.AddSubpass("casters", noopSubpass)

	gbuf := g.AddRenderPass("gbuffer")
	albedo := gbuf.CreateTexture("albedo", target(w, h, gputypes.TextureFormatRGBA8Unorm))
	normal := gbuf.CreateTexture("normal", target(w, h, gputypes.TextureFormatRGBA16Float))
	depth := gbuf.CreateTexture("depth", target(w, h, gputypes.TextureFormatDepth24PlusStencil8))
	for _, rt := range []framegraph.ResourceID{albedo, normal} {
		gbuf.AddColorAttachment(framegraph.ColorAttachment{
			Resource: rt,
			LoadOp:   gputypes.LoadOpClear,
			StoreOp:  gputypes.StoreOpStore,
		})
	}
	gbuf.SetDepthStencilAttachment(framegraph.DepthStencilAttachment{
		Resource:        depth,
		DepthLoadOp:     gputypes.LoadOpClear,
		DepthStoreOp:    gputypes.StoreOpStore,
		DepthClearValue: 1,
		StencilLoadOp:   gputypes.LoadOpClear,
		StencilStoreOp:  gputypes.StoreOpDiscard,
	})
	gbuf.AddSubpass("opaque", noopSubpass).AddSubpass("masked", noopSubpass)

	light := g.AddRenderPass("lighting")
	hdr := light.CreateTexture("hdr", target(w, h, gputypes.TextureFormatRGBA16Float))
	light.Read(albedo).Read(normal).Read(depth).Read(shadowMap)
	light.AddColorAttachment(framegraph.ColorAttachment{Resource: hdr, ClearValue: gputypes.Color{A: 1}})
	light.AddSubpass("sun", noopSubpass).AddSubpass("points", noopSubpass)

	bloomDesc := target(w/2, h/2, gputypes.TextureFormatRGBA16Float)
	bloomDesc.MipLevelCount = 3
	bloom := g.AddRenderPass("bloom_extract")
	bloomChain := bloom.CreateTexture("bloom", bloomDesc)
	bloom.Read(hdr)
	bloom.AddColorAttachment(framegraph.ColorAttachment{Resource: bloomChain})
	bloom.AddSubpass("threshold", noopSubpass)

	for mip := uint32(1); mip < bloomDesc.MipLevelCount; mip++ {
		down := g.AddRenderPass(fmt.Sprintf("bloom_down_%d", mip))
		down.AddColorAttachment(framegraph.ColorAttachment{
			Resource: bloomChain,
			LoadOp:   gputypes.LoadOpLoad,
			MipLevel: mip,
		})
		down.AddSubpass("downsample", noopSubpass)
	}

	exposure := g.AddTask("exposure")
	lum := exposure.CreateBuffer("luminance", framegraph.BufferDesc{
		Size:  256 * 4,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	exposure.Read(hdr)
	exposure.SetExecute(func(ec *framegraph.ExecutionContext) error {
		if _, ok := ec.Physical(lum).(*gpu.Buffer); !ok {
			return fmt.Errorf("luminance is not a gpu buffer")
		}
		return nil
	})

	tonemap := g.AddRenderPass("tonemap")
	ldr := tonemap.CreateTexture("ldr", target(w, h, gputypes.TextureFormatRGBA8Unorm))
	tonemap.Read(hdr).Read(bloomChain).Read(lum)
	tonemap.AddColorAttachment(framegraph.ColorAttachment{Resource: ldr})
	tonemap.AddSubpass("aces", noopSubpass)

	if debug {
		overlay := g.AddRenderPass("debug_overlay")
		dbg := overlay.CreateTexture("debug", target(w, h, gputypes.TextureFormatRGBA8Unorm))
		overlay.Read(depth).Read(normal)
		overlay.AddColorAttachment(framegraph.ColorAttachment{Resource: dbg})
		overlay.AddSubpass("wireframe", noopSubpass)
	}

	bb := g.AddExternalTexture("backbuffer", backbufferDesc(w, h), backbuffer)
	present := g.AddRenderPass("present")
	present.Read(ldr)
	present.AddColorAttachment(framegraph.ColorAttachment{
		Resource: bb,
		LoadOp:   gputypes.LoadOpClear,
		StoreOp:  gputypes.StoreOpStore,
	})
	present.AddSubpass("blit", noopSubpass)
}

func noopSubpass(*framegraph.ExecutionContext, framegraph.RenderPassEncoder) error {
	return nil
}
