// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import "github.com/gogpu/gputypes"

// ColorAttachment binds a texture resource as a render target.
type ColorAttachment struct {
	Resource   ResourceID
	LoadOp     gputypes.LoadOp
	StoreOp    gputypes.StoreOp
	ClearValue gputypes.Color

	// MipLevel selects the mip level rendered to.
	MipLevel uint32
}

// DepthStencilAttachment binds a depth/stencil texture resource.
type DepthStencilAttachment struct {
	Resource          ResourceID
	DepthLoadOp       gputypes.LoadOp
	DepthStoreOp      gputypes.StoreOp
	DepthClearValue   float32
	StencilLoadOp     gputypes.LoadOp
	StencilStoreOp    gputypes.StoreOp
	StencilClearValue uint32
	MipLevel          uint32
}

// SubpassFunc records commands into an open render pass.
type SubpassFunc func(ec *ExecutionContext, pass RenderPassEncoder) error

// subpass is one recorded subpass callback.
type subpass struct {
	name string
	fn   SubpassFunc
}

// renderPassData is the payload of a TaskKindRenderPass task.
type renderPassData struct {
	colors       []ColorAttachment
	depthStencil *DepthStencilAttachment
	width        uint32
	height       uint32
	subpasses    []subpass
}

// RenderPass is a task that renders into attachments.
//
// Attaching a resource the pass did not create declares a write to it, or a
// read-write when the attachment loads the previous contents.
type RenderPass struct {
	*Task
}

// AddColorAttachment appends a color attachment.
func (p *RenderPass) AddColorAttachment(att ColorAttachment) *RenderPass {
	p.graph.mustBeMutable()
	p.attach(att.Resource, att.LoadOp == gputypes.LoadOpLoad)
	p.pass.colors = append(p.pass.colors, att)
	return p
}

// SetDepthStencilAttachment sets the depth/stencil attachment.
func (p *RenderPass) SetDepthStencilAttachment(att DepthStencilAttachment) *RenderPass {
	p.graph.mustBeMutable()
	if p.pass.depthStencil != nil {
		malformed("render pass %q already has a depth-stencil attachment", p.name)
	}
	load := att.DepthLoadOp == gputypes.LoadOpLoad || att.StencilLoadOp == gputypes.LoadOpLoad
	p.attach(att.Resource, load)
	p.pass.depthStencil = &att
	return p
}

// SetRenderArea overrides the render area. By default the area is the size
// of the first attachment.
func (p *RenderPass) SetRenderArea(width, height uint32) *RenderPass {
	p.pass.width = width
	p.pass.height = height
	return p
}

// AddSubpass appends a subpass callback. Subpasses run in order inside a
// single render pass.
func (p *RenderPass) AddSubpass(name string, fn SubpassFunc) *RenderPass {
	p.graph.mustBeMutable()
	p.pass.subpasses = append(p.pass.subpasses, subpass{name: name, fn: fn})
	return p
}

// ColorAttachments returns the declared color attachments.
func (p *RenderPass) ColorAttachments() []ColorAttachment { return p.pass.colors }

// DepthStencilAttachment returns the depth/stencil attachment or nil.
func (p *RenderPass) DepthStencilAttachment() *DepthStencilAttachment { return p.pass.depthStencil }

// RenderArea returns the render area in pixels.
func (p *RenderPass) RenderArea() (width, height uint32) {
	return p.Task.renderArea()
}

func (p *RenderPass) attach(id ResourceID, load bool) {
	r := p.graph.mustResource(id)
	if r.desc.Kind != ResourceKindTexture {
		malformed("render pass %q attaches non-texture resource %q", p.name, r.name)
	}
	if r.creator == p.id {
		return
	}
	if load {
		p.ReadWrite(id)
		return
	}
	p.Write(id)
}

// renderArea resolves the explicit or attachment-derived render area.
func (t *Task) renderArea() (width, height uint32) {
	rp := t.pass
	if rp == nil {
		return 0, 0
	}
	if rp.width != 0 && rp.height != 0 {
		return rp.width, rp.height
	}
	var first ResourceID = InvalidResource
	var mip uint32
	switch {
	case len(rp.colors) > 0:
		first, mip = rp.colors[0].Resource, rp.colors[0].MipLevel
	case rp.depthStencil != nil:
		first, mip = rp.depthStencil.Resource, rp.depthStencil.MipLevel
	default:
		return 0, 0
	}
	desc := t.graph.resources[first].desc.Texture
	return max(desc.Width>>mip, 1), max(desc.Height>>mip, 1)
}
