// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// ResourceID is a dense handle to a resource proxy within one Graph.
// Handles are only valid for the Graph that issued them and only until Reset.
type ResourceID int32

// InvalidResource is the zero-information handle returned for "no resource".
const InvalidResource ResourceID = -1

// ResourceKind is the logical type of a resource proxy.
type ResourceKind uint8

const (
	// ResourceKindTexture is a GPU texture.
	ResourceKindTexture ResourceKind = iota

	// ResourceKindBuffer is a GPU buffer.
	ResourceKindBuffer
)

// String returns the string representation of ResourceKind.
func (k ResourceKind) String() string {
	switch k {
	case ResourceKindTexture:
		return "Texture"
	case ResourceKindBuffer:
		return "Buffer"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// TextureDesc describes a texture resource.
// Zero DepthOrArrayLayers, MipLevelCount and SampleCount are treated as 1.
type TextureDesc struct {
	Width              uint32
	Height             uint32
	DepthOrArrayLayers uint32
	MipLevelCount      uint32
	SampleCount        uint32
	Format             gputypes.TextureFormat
	Usage              gputypes.TextureUsage
}

// BufferDesc describes a buffer resource.
type BufferDesc struct {
	Size  uint64
	Usage gputypes.BufferUsage
}

// ResourceDesc is the physical description of a resource.
// It is comparable and is used as the recycling key by allocators:
// two resources with equal descriptors may share a physical allocation
// across frames.
type ResourceDesc struct {
	Kind    ResourceKind
	Texture TextureDesc
	Buffer  BufferDesc
}

// Texture returns a texture ResourceDesc.
func Texture(desc TextureDesc) ResourceDesc {
	return ResourceDesc{Kind: ResourceKindTexture, Texture: desc}.Normalize()
}

// Buffer returns a buffer ResourceDesc.
func Buffer(desc BufferDesc) ResourceDesc {
	return ResourceDesc{Kind: ResourceKindBuffer, Buffer: desc}
}

// Normalize fills defaulted texture fields and clears the unused half of the
// descriptor so that equal resources compare equal.
func (d ResourceDesc) Normalize() ResourceDesc {
	switch d.Kind {
	case ResourceKindTexture:
		d.Buffer = BufferDesc{}
		if d.Texture.DepthOrArrayLayers == 0 {
			d.Texture.DepthOrArrayLayers = 1
		}
		if d.Texture.MipLevelCount == 0 {
			d.Texture.MipLevelCount = 1
		}
		if d.Texture.SampleCount == 0 {
			d.Texture.SampleCount = 1
		}
	case ResourceKindBuffer:
		d.Texture = TextureDesc{}
	}
	return d
}

// SizeBytes estimates the memory footprint of the resource.
// Textures include the full mip chain.
func (d ResourceDesc) SizeBytes() uint64 {
	if d.Kind == ResourceKindBuffer {
		return d.Buffer.Size
	}
	t := d.Normalize().Texture
	bpp := uint64(BytesPerPixel(t.Format))
	var total uint64
	w, h := uint64(t.Width), uint64(t.Height)
	for level := uint32(0); level < t.MipLevelCount; level++ {
		total += w * h * bpp
		w = max(w/2, 1)
		h = max(h/2, 1)
	}
	return total * uint64(t.DepthOrArrayLayers) * uint64(t.SampleCount)
}

// String returns a compact description such as "Texture 1920x1080 fmt=18".
func (d ResourceDesc) String() string {
	if d.Kind == ResourceKindBuffer {
		return fmt.Sprintf("Buffer %dB", d.Buffer.Size)
	}
	t := d.Normalize().Texture
	s := fmt.Sprintf("Texture %dx%d fmt=%d", t.Width, t.Height, t.Format)
	if t.DepthOrArrayLayers > 1 {
		s += fmt.Sprintf(" layers=%d", t.DepthOrArrayLayers)
	}
	if t.MipLevelCount > 1 {
		s += fmt.Sprintf(" mips=%d", t.MipLevelCount)
	}
	if t.SampleCount > 1 {
		s += fmt.Sprintf(" samples=%d", t.SampleCount)
	}
	return s
}

// BytesPerPixel returns the number of bytes per texel for the format.
// Unknown formats are assumed to be 4 bytes.
func BytesPerPixel(f gputypes.TextureFormat) int {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return 1
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm,
		gputypes.TextureFormatDepth24PlusStencil8, gputypes.TextureFormatDepth32Float:
		return 4
	case gputypes.TextureFormatRGBA16Float:
		return 8
	default:
		return 4
	}
}

// Resource is a virtual GPU resource participating in one frame graph.
//
// The graph owns every Resource. Tasks refer to resources by ResourceID and a
// Resource refers back to its creator, readers and writers by TaskID.
type Resource struct {
	id   ResourceID
	name string
	desc ResourceDesc

	creator TaskID
	readers []TaskID
	writers []TaskID

	refs      int
	transient bool
	captured  bool

	// Timeline placement, filled by Build. InvalidTask when not scheduled.
	firstUse TaskID
	lastUse  TaskID

	physical any
}

// ID returns the resource handle.
func (r *Resource) ID() ResourceID { return r.id }

// Name returns the debug name.
func (r *Resource) Name() string { return r.name }

// Kind returns the logical type.
func (r *Resource) Kind() ResourceKind { return r.desc.Kind }

// Desc returns the physical description.
func (r *Resource) Desc() ResourceDesc { return r.desc }

// Creator returns the task that produced the resource, or InvalidTask for
// external resources.
func (r *Resource) Creator() TaskID { return r.creator }

// Readers returns the reading tasks in declaration order.
// The returned slice must not be modified.
func (r *Resource) Readers() []TaskID { return r.readers }

// Writers returns the writing (not producing) tasks in declaration order.
// The returned slice must not be modified.
func (r *Resource) Writers() []TaskID { return r.writers }

// Refs returns the reference count computed by Build.
func (r *Resource) Refs() int { return r.refs }

// IsTransient reports whether the graph owns the resource lifetime.
func (r *Resource) IsTransient() bool { return r.transient }

// IsCaptured reports whether the resource must outlive graph execution.
func (r *Resource) IsCaptured() bool { return r.captured }

// IsExternal reports whether the resource was imported from the caller.
func (r *Resource) IsExternal() bool { return !r.transient }

// Physical returns the bound physical resource, or nil when the resource is
// not currently materialized.
func (r *Resource) Physical() any { return r.physical }

// FirstUse returns the task at which Build scheduled the acquire, or
// InvalidTask when the resource is never materialized by the graph.
func (r *Resource) FirstUse() TaskID { return r.firstUse }

// LastUse returns the last surviving task that uses the resource, or
// InvalidTask when no surviving task does.
func (r *Resource) LastUse() TaskID { return r.lastUse }

// managed reports whether the graph acquires and releases the resource.
func (r *Resource) managed() bool { return r.transient }

// released reports whether the graph releases the resource after last use.
func (r *Resource) released() bool { return r.transient && !r.captured }
