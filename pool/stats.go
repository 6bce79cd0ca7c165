// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pool

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Stats contains pool usage statistics.
type Stats struct {
	// TotalBytes is the memory budget in bytes.
	TotalBytes uint64

	// UsedBytes is the memory held by live and idle resources.
	UsedBytes uint64

	// IdleBytes is the part of UsedBytes held by idle resources.
	IdleBytes uint64

	// Live is the number of resources currently handed out.
	Live int

	// Idle is the number of resources waiting for reuse.
	Idle int

	// Hits counts allocations served from the idle list.
	Hits uint64

	// Misses counts allocations that needed the factory.
	Misses uint64

	// Created counts resources created by the factory.
	Created uint64

	// Evictions counts idle resources destroyed by budget or age.
	Evictions uint64

	// Frame is the number of EndFrame calls so far.
	Frame uint64
}

// Utilization returns the fraction of the budget in use (0.0 to 1.0).
func (s Stats) Utilization() float64 {
	if s.TotalBytes == 0 {
		return 0
	}
	return float64(s.UsedBytes) / float64(s.TotalBytes)
}

// HitRate returns the fraction of allocations served from the idle list.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// String returns a human-readable string of pool stats.
func (s Stats) String() string {
	return s.Format(language.English)
}

// Format renders the stats with digit grouping for tag.
func (s Stats) Format(tag language.Tag) string {
	p := message.NewPrinter(tag)
	return p.Sprintf("Pool[%.1f%% used, %d/%d KiB, %d live, %d idle, %d hits, %d misses, %d evictions]",
		s.Utilization()*100,
		s.UsedBytes/1024,
		s.TotalBytes/1024,
		s.Live,
		s.Idle,
		s.Hits,
		s.Misses,
		s.Evictions)
}
