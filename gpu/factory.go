// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/pool"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrUnsupportedPhysical is returned when an attachment's physical resource
// is neither a *Texture nor a hal.TextureView.
var ErrUnsupportedPhysical = errors.New("gpu: unsupported physical resource")

// Texture is a hal texture with its default view.
type Texture struct {
	Texture hal.Texture
	View    hal.TextureView
	Desc    framegraph.TextureDesc
}

// Buffer is a hal buffer.
type Buffer struct {
	Buffer hal.Buffer
	Desc   framegraph.BufferDesc
}

// Factory creates physical resources on a hal device.
// It implements pool.Factory.
type Factory struct {
	device hal.Device
	serial atomic.Uint64
}

var _ pool.Factory = (*Factory)(nil)

// NewFactory returns a factory for device.
func NewFactory(device hal.Device) *Factory {
	return &Factory{device: device}
}

// Create creates a texture (with its default view) or a buffer for desc.
func (f *Factory) Create(desc framegraph.ResourceDesc) (any, error) {
	label := fmt.Sprintf("framegraph_%d", f.serial.Add(1))
	switch desc.Kind {
	case framegraph.ResourceKindTexture:
		return f.createTexture(label, desc.Normalize().Texture)
	case framegraph.ResourceKindBuffer:
		return f.createBuffer(label, desc.Buffer)
	default:
		return nil, fmt.Errorf("gpu: unknown resource kind %v", desc.Kind)
	}
}

func (f *Factory) createTexture(label string, td framegraph.TextureDesc) (*Texture, error) {
	if td.Width == 0 || td.Height == 0 {
		return nil, fmt.Errorf("gpu: invalid texture size %dx%d", td.Width, td.Height)
	}
	tex, err := f.device.CreateTexture(&hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              td.Width,
			Height:             td.Height,
			DepthOrArrayLayers: td.DepthOrArrayLayers,
		},
		MipLevelCount: td.MipLevelCount,
		SampleCount:   td.SampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        td.Format,
		Usage:         td.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create texture %s: %w", label, err)
	}

	view, err := f.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: label + "_view",
	})
	if err != nil {
		f.device.DestroyTexture(tex)
		return nil, fmt.Errorf("gpu: create texture view %s: %w", label, err)
	}
	return &Texture{Texture: tex, View: view, Desc: td}, nil
}

func (f *Factory) createBuffer(label string, bd framegraph.BufferDesc) (*Buffer, error) {
	if bd.Size == 0 {
		return nil, fmt.Errorf("gpu: invalid buffer size 0")
	}
	buf, err := f.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  bd.Size,
		Usage: bd.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create buffer %s: %w", label, err)
	}
	return &Buffer{Buffer: buf, Desc: bd}, nil
}

// Destroy releases a resource returned by Create.
func (f *Factory) Destroy(_ framegraph.ResourceDesc, physical any) {
	switch p := physical.(type) {
	case *Texture:
		if p.View != nil {
			f.device.DestroyTextureView(p.View)
			p.View = nil
		}
		if p.Texture != nil {
			f.device.DestroyTexture(p.Texture)
			p.Texture = nil
		}
	case *Buffer:
		if p.Buffer != nil {
			f.device.DestroyBuffer(p.Buffer)
			p.Buffer = nil
		}
	default:
		framegraph.Logger().Warn("gpu: destroy of unknown physical resource", "type", fmt.Sprintf("%T", physical))
	}
}
