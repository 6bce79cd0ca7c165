// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/pool"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// Renderer errors.
var (
	// ErrNoDevice is returned when the renderer has no hal device or queue.
	ErrNoDevice = errors.New("gpu: no device")

	// ErrRendererClosed is returned by RenderFrame after Close.
	ErrRendererClosed = errors.New("gpu: renderer closed")

	// ErrFenceTimeout is returned when the GPU does not signal the frame
	// fence within Config.FenceTimeout.
	ErrFenceTimeout = errors.New("gpu: fence wait timed out")
)

// DefaultFenceTimeout bounds the wait for a submitted frame.
const DefaultFenceTimeout = 5 * time.Second

// Config holds renderer configuration.
type Config struct {
	// Pool configures the transient resource pool.
	Pool pool.Config

	// FenceTimeout bounds the wait for each frame. Default: 5s.
	FenceTimeout time.Duration

	// Label prefixes command encoder labels. Default: "framegraph".
	Label string
}

// Renderer executes frame graphs on a hal device.
//
// Each RenderFrame records the whole graph into one command buffer,
// submits it and waits for completion, then advances the pool frame. The
// pool frame only advances once the GPU has finished the frame's work.
// Renderer is safe for concurrent use; frames are serialized.
type Renderer struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue
	pool   *pool.Pool
	cfg    Config
	frames uint64
	closed bool

	inflight *inflightFrame
}

// inflightFrame holds what a submitted frame needs until its fence signals.
type inflightFrame struct {
	fence  hal.Fence
	cmdBuf hal.CommandBuffer
	rec    *Recorder
}

// NewRenderer creates a renderer on device and queue with a new pool.
func NewRenderer(device hal.Device, queue hal.Queue, cfg Config) (*Renderer, error) {
	if device == nil || queue == nil {
		return nil, ErrNoDevice
	}
	if cfg.FenceTimeout <= 0 {
		cfg.FenceTimeout = DefaultFenceTimeout
	}
	if cfg.Label == "" {
		cfg.Label = "framegraph"
	}
	return &Renderer{
		device: device,
		queue:  queue,
		pool:   pool.New(NewFactory(device), cfg.Pool),
		cfg:    cfg,
	}, nil
}

// NewRendererFromProvider creates a renderer on a device shared by a host
// application. The provider must also implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func NewRendererFromProvider(provider gpucontext.DeviceProvider, cfg Config) (*Renderer, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	if provider == nil {
		return nil, ErrNoDevice
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}
	return NewRenderer(device, queue, cfg)
}

// Pool returns the transient resource pool.
func (r *Renderer) Pool() *pool.Pool { return r.pool }

// Frames returns the number of frames submitted.
func (r *Renderer) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// RenderFrame builds g if needed, executes it into a new command buffer,
// submits the buffer and waits for the GPU. frame is handed to callbacks
// through ExecutionContext.Frame.
//
// A frame whose fence times out stays in flight. The next RenderFrame waits
// for it again and returns ErrFenceTimeout without recording if it is still
// running.
func (r *Renderer) RenderFrame(g *framegraph.Graph, frame any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRendererClosed
	}
	if err := r.retireLocked(); err != nil {
		return err
	}
	if !g.IsBuilt() {
		g.Build()
	}

	label := fmt.Sprintf("%s_%s", r.cfg.Label, g.Name())
	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: label + "_encoder",
	})
	if err != nil {
		return fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("gpu: begin encoding: %w", err)
	}

	rec := NewRecorder(r.device, encoder)
	err = g.Execute(&framegraph.RenderContext{
		Allocator: r.pool,
		Recorder:  rec,
		Frame:     frame,
	})
	if err != nil {
		encoder.DiscardEncoding()
		rec.Release()
		return err
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		rec.Release()
		return fmt.Errorf("gpu: end encoding: %w", err)
	}

	fence, err := r.device.CreateFence()
	if err != nil {
		r.device.FreeCommandBuffer(cmdBuf)
		rec.Release()
		return fmt.Errorf("gpu: create fence: %w", err)
	}

	if err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		r.device.DestroyFence(fence)
		r.device.FreeCommandBuffer(cmdBuf)
		rec.Release()
		return fmt.Errorf("gpu: submit: %w", err)
	}
	r.frames++
	r.inflight = &inflightFrame{fence: fence, cmdBuf: cmdBuf, rec: rec}

	passes := rec.Passes()
	if err := r.retireLocked(); err != nil {
		return err
	}
	framegraph.Logger().Debug("gpu: frame submitted",
		"graph", g.Name(), "frame", r.frames, "passes", passes, "pool", r.pool.Stats())
	return nil
}

// retireLocked waits for the in-flight frame, then frees its views,
// command buffer and fence and advances the pool frame. On error the frame
// stays in flight and is retried by the next RenderFrame or Close.
func (r *Renderer) retireLocked() error {
	f := r.inflight
	if f == nil {
		return nil
	}
	ok, err := r.device.Wait(f.fence, 1, r.cfg.FenceTimeout)
	if err != nil {
		return fmt.Errorf("gpu: wait for frame: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w after %v", ErrFenceTimeout, r.cfg.FenceTimeout)
	}
	f.rec.Release()
	r.device.FreeCommandBuffer(f.cmdBuf)
	r.device.DestroyFence(f.fence)
	r.inflight = nil
	r.pool.EndFrame()
	return nil
}

// Close waits for the last frame and destroys every pooled resource. The
// device and queue are not destroyed. If the last frame does not complete,
// its resources and the pool are leaked instead. Close is idempotent.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	if err := r.retireLocked(); err != nil {
		framegraph.Logger().Warn("gpu: leaking resources of unfinished frame", "err", err)
		return
	}
	r.pool.Close()
}
