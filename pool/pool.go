// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/framegraph"
)

// Pool errors.
var (
	// ErrBudgetExceeded is returned when an allocation does not fit the
	// memory budget even after every idle resource freed in an earlier
	// frame has been destroyed.
	ErrBudgetExceeded = errors.New("pool: memory budget exceeded")

	// ErrPoolClosed is returned when allocating from a closed pool.
	ErrPoolClosed = errors.New("pool: pool closed")
)

// Default limits.
const (
	// DefaultMaxMemoryMB is the default memory budget (512 MB).
	DefaultMaxMemoryMB = 512

	// MinMemoryMB is the minimum allowed memory budget (16 MB).
	MinMemoryMB = 16

	// DefaultMaxIdleFrames is how many frames an idle resource survives.
	DefaultMaxIdleFrames = 4
)

// Factory creates and destroys physical resources.
type Factory interface {
	Create(desc framegraph.ResourceDesc) (any, error)
	Destroy(desc framegraph.ResourceDesc, physical any)
}

// Config holds pool configuration.
type Config struct {
	// MaxMemoryMB is the memory budget in megabytes.
	// Default: 512 MB, minimum: 16 MB.
	MaxMemoryMB int

	// MaxIdleFrames is the number of EndFrame calls an idle resource
	// survives before it is destroyed. Default: 4. A negative value
	// destroys idle resources at every EndFrame.
	MaxIdleFrames int
}

// entry tracks one physical resource owned by the pool.
type entry struct {
	desc      framegraph.ResourceDesc
	physical  any
	sizeBytes uint64
	freedAt   uint64
	node      *lruNode[*entry] // non-nil while idle
}

// Pool is a descriptor-keyed free list of physical resources with a memory
// budget.
//
// Pool is safe for concurrent use.
type Pool struct {
	mu sync.Mutex

	factory       Factory
	budget        uint64
	maxIdleFrames int

	live  map[any]*entry
	idle  map[framegraph.ResourceDesc][]*entry
	order lruList[*entry]

	used   uint64
	frame  uint64
	closed bool

	hits      uint64
	misses    uint64
	created   uint64
	evictions uint64
}

var _ framegraph.Allocator = (*Pool)(nil)

// New creates a pool backed by factory.
func New(factory Factory, cfg Config) *Pool {
	if factory == nil {
		panic("pool: nil factory")
	}
	maxMB := cfg.MaxMemoryMB
	if maxMB <= 0 {
		maxMB = DefaultMaxMemoryMB
	}
	if maxMB < MinMemoryMB {
		maxMB = MinMemoryMB
	}
	maxIdle := cfg.MaxIdleFrames
	if maxIdle == 0 {
		maxIdle = DefaultMaxIdleFrames
	}
	return &Pool{
		factory:       factory,
		budget:        uint64(maxMB) * 1024 * 1024,
		maxIdleFrames: maxIdle,
		live:          make(map[any]*entry),
		idle:          make(map[framegraph.ResourceDesc][]*entry),
	}
}

// Allocate returns an idle resource matching desc or creates a new one.
func (p *Pool) Allocate(desc framegraph.ResourceDesc) (any, error) {
	desc = desc.Normalize()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPoolClosed
	}

	if bucket := p.idle[desc]; len(bucket) > 0 {
		e := bucket[len(bucket)-1]
		p.setBucket(desc, bucket[:len(bucket)-1])
		p.order.Remove(e.node)
		e.node = nil
		p.live[e.physical] = e
		p.hits++
		return e.physical, nil
	}
	p.misses++

	size := desc.SizeBytes()
	if size > p.budget {
		return nil, fmt.Errorf("%w: %v needs %d bytes, budget is %d", ErrBudgetExceeded, desc, size, p.budget)
	}
	for p.used+size > p.budget {
		if !p.evictOldestLocked() {
			return nil, fmt.Errorf("%w: %v needs %d bytes, %d of %d in use",
				ErrBudgetExceeded, desc, size, p.used, p.budget)
		}
	}

	physical, err := p.factory.Create(desc)
	if err != nil {
		return nil, fmt.Errorf("pool: create %v: %w", desc, err)
	}
	if physical == nil {
		return nil, fmt.Errorf("pool: factory returned nil for %v", desc)
	}

	p.live[physical] = &entry{desc: desc, physical: physical, sizeBytes: size}
	p.used += size
	p.created++
	framegraph.Logger().Debug("pool: created", "desc", desc.String(), "bytes", size, "used", p.used)
	return physical, nil
}

// Free returns physical to the idle list. Handles the pool did not create
// are destroyed immediately. After Close, Free does nothing: Close already
// destroyed every handle the pool created.
func (p *Pool) Free(desc framegraph.ResourceDesc, physical any) {
	if physical == nil {
		return
	}
	desc = desc.Normalize()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	e, ok := p.live[physical]
	if !ok {
		framegraph.Logger().Warn("pool: freeing unknown resource", "desc", desc.String())
		p.factory.Destroy(desc, physical)
		return
	}
	delete(p.live, physical)

	e.freedAt = p.frame
	e.node = p.order.PushFront(e)
	p.idle[e.desc] = append(p.idle[e.desc], e)
}

// Release destroys a resource obtained from Allocate instead of returning
// it to the idle list. Use it for captured resources that are no longer
// needed.
func (p *Pool) Release(physical any) {
	if physical == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	e, ok := p.live[physical]
	if !ok {
		return
	}
	delete(p.live, physical)
	p.destroyLocked(e)
}

// EndFrame advances the frame counter and destroys resources that stayed
// idle for more than MaxIdleFrames frames. It returns the number destroyed.
func (p *Pool) EndFrame() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frame++
	evicted := 0
	for {
		e, ok := p.order.Oldest()
		if !ok || int64(p.frame-e.freedAt) <= int64(p.maxIdleFrames) {
			break
		}
		p.evictLocked(e)
		evicted++
	}
	if evicted > 0 {
		framegraph.Logger().Debug("pool: idle resources destroyed",
			"count", evicted, "frame", p.frame, "used", p.used)
	}
	return evicted
}

// Stats returns a snapshot of pool usage.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	var idleBytes uint64
	for _, bucket := range p.idle {
		for _, e := range bucket {
			idleBytes += e.sizeBytes
		}
	}
	return Stats{
		TotalBytes: p.budget,
		UsedBytes:  p.used,
		IdleBytes:  idleBytes,
		Live:       len(p.live),
		Idle:       p.order.Len(),
		Hits:       p.hits,
		Misses:     p.misses,
		Created:    p.created,
		Evictions:  p.evictions,
		Frame:      p.frame,
	}
}

// Close destroys every resource the pool owns, idle or live.
// Live handles become invalid. Close is idempotent.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	for _, bucket := range p.idle {
		for _, e := range bucket {
			p.destroyLocked(e)
		}
	}
	for _, e := range p.live {
		p.destroyLocked(e)
	}
	p.idle = make(map[framegraph.ResourceDesc][]*entry)
	p.live = make(map[any]*entry)
	p.order.Clear()
}

// evictOldestLocked destroys the least recently freed idle resource.
// Resources freed during the current frame may still be referenced by
// unsubmitted GPU work and are never destroyed before EndFrame. Returns
// false if nothing can be evicted.
func (p *Pool) evictOldestLocked() bool {
	e, ok := p.order.Oldest()
	if !ok || e.freedAt >= p.frame {
		return false
	}
	p.evictLocked(e)
	return true
}

// evictLocked destroys an idle entry and unlinks it from its bucket.
func (p *Pool) evictLocked(e *entry) {
	p.order.Remove(e.node)
	e.node = nil

	bucket := p.idle[e.desc]
	for i, other := range bucket {
		if other == e {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	p.setBucket(e.desc, bucket)

	p.destroyLocked(e)
	p.evictions++
}

func (p *Pool) destroyLocked(e *entry) {
	p.factory.Destroy(e.desc, e.physical)
	p.used -= e.sizeBytes
}

func (p *Pool) setBucket(desc framegraph.ResourceDesc, bucket []*entry) {
	if len(bucket) == 0 {
		delete(p.idle, desc)
		return
	}
	p.idle[desc] = bucket
}
