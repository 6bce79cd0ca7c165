// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Recorder opens hal render passes on a command encoder.
// It implements framegraph.CommandRecorder.
//
// Attachments on textures with a mip chain are bound through a single-level
// view created on demand; those views live until Release.
type Recorder struct {
	device  hal.Device
	encoder hal.CommandEncoder
	views   []hal.TextureView
	passes  int
}

var _ framegraph.CommandRecorder = (*Recorder)(nil)

// NewRecorder returns a recorder encoding into encoder. The encoder must
// already be in the recording state.
func NewRecorder(device hal.Device, encoder hal.CommandEncoder) *Recorder {
	return &Recorder{device: device, encoder: encoder}
}

// Passes returns the number of render passes opened so far.
func (r *Recorder) Passes() int { return r.passes }

// BeginRenderPass translates desc into a hal.RenderPassDescriptor and opens
// the pass. The returned encoder is a hal.RenderPassEncoder.
func (r *Recorder) BeginRenderPass(desc *framegraph.RenderPassBegin) (framegraph.RenderPassEncoder, error) {
	rpDesc, err := r.renderPassDescriptor(desc)
	if err != nil {
		return nil, err
	}
	r.passes++
	return r.encoder.BeginRenderPass(rpDesc), nil
}

func (r *Recorder) renderPassDescriptor(desc *framegraph.RenderPassBegin) (*hal.RenderPassDescriptor, error) {
	rpDesc := &hal.RenderPassDescriptor{
		Label:            desc.Label,
		ColorAttachments: make([]hal.RenderPassColorAttachment, 0, len(desc.Colors)),
	}
	for _, c := range desc.Colors {
		view, err := r.attachmentView(desc.Label, c.Physical, c.MipLevel)
		if err != nil {
			return nil, err
		}
		rpDesc.ColorAttachments = append(rpDesc.ColorAttachments, hal.RenderPassColorAttachment{
			View:       view,
			LoadOp:     loadOp(c.LoadOp),
			StoreOp:    storeOp(c.StoreOp),
			ClearValue: c.ClearValue,
		})
	}
	if ds := desc.DepthStencil; ds != nil {
		view, err := r.attachmentView(desc.Label, ds.Physical, ds.MipLevel)
		if err != nil {
			return nil, err
		}
		rpDesc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:              view,
			DepthLoadOp:       loadOp(ds.DepthLoadOp),
			DepthStoreOp:      storeOp(ds.DepthStoreOp),
			DepthClearValue:   ds.DepthClearValue,
			StencilLoadOp:     loadOp(ds.StencilLoadOp),
			StencilStoreOp:    storeOp(ds.StencilStoreOp),
			StencilClearValue: ds.StencilClearValue,
		}
	}
	return rpDesc, nil
}

// attachmentView resolves a physical attachment to a view of mip level.
// External attachments may be passed as a bare hal.TextureView.
func (r *Recorder) attachmentView(label string, physical any, mip uint32) (hal.TextureView, error) {
	switch p := physical.(type) {
	case *Texture:
		if mip == 0 && p.Desc.MipLevelCount <= 1 {
			return p.View, nil
		}
		if mip >= p.Desc.MipLevelCount {
			return nil, fmt.Errorf("gpu: pass %q: mip level %d out of range (%d levels)",
				label, mip, p.Desc.MipLevelCount)
		}
		view, err := r.device.CreateTextureView(p.Texture, &hal.TextureViewDescriptor{
			Label:           fmt.Sprintf("%s_mip%d", label, mip),
			Format:          p.Desc.Format,
			Dimension:       gputypes.TextureViewDimension2D,
			Aspect:          gputypes.TextureAspectAll,
			BaseMipLevel:    mip,
			MipLevelCount:   1,
			BaseArrayLayer:  0,
			ArrayLayerCount: 1,
		})
		if err != nil {
			return nil, fmt.Errorf("gpu: pass %q: create mip view: %w", label, err)
		}
		r.views = append(r.views, view)
		return view, nil
	case hal.TextureView:
		if mip != 0 {
			return nil, fmt.Errorf("gpu: pass %q: mip level %d on a bare texture view", label, mip)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: pass %q: %T", ErrUnsupportedPhysical, label, physical)
	}
}

// Release destroys the views created for mip level attachments. Call it
// once the command buffer has finished executing.
func (r *Recorder) Release() {
	for _, v := range r.views {
		r.device.DestroyTextureView(v)
	}
	r.views = r.views[:0]
}

func loadOp(op gputypes.LoadOp) gputypes.LoadOp {
	if op == gputypes.LoadOpLoad {
		return op
	}
	return gputypes.LoadOpClear
}

func storeOp(op gputypes.StoreOp) gputypes.StoreOp {
	if op == gputypes.StoreOpDiscard {
		return op
	}
	return gputypes.StoreOpStore
}
