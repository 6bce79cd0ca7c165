// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

// TimelineStep is the schedule entry of one surviving task.
//
// The acquire and release ranges index into Timeline.Acquired and
// Timeline.Released.
type TimelineStep struct {
	Task         TaskID
	AcquireBegin int
	AcquireEnd   int
	ReleaseBegin int
	ReleaseEnd   int
}

// Timeline is the post-cull schedule of one frame: for every surviving task
// in declaration order, the resources to acquire before it runs and the
// resources to release after it ran.
type Timeline struct {
	Steps    []TimelineStep
	Acquired []ResourceID
	Released []ResourceID
}

// Len returns the number of steps.
func (tl *Timeline) Len() int { return len(tl.Steps) }

// Acquires returns the resources acquired before step i.
func (tl *Timeline) Acquires(i int) []ResourceID {
	s := tl.Steps[i]
	return tl.Acquired[s.AcquireBegin:s.AcquireEnd]
}

// Releases returns the resources released after step i.
func (tl *Timeline) Releases(i int) []ResourceID {
	s := tl.Steps[i]
	return tl.Released[s.ReleaseBegin:s.ReleaseEnd]
}

// StepOf returns the index of the step that runs task id, or -1 if the task
// is not scheduled.
func (tl *Timeline) StepOf(id TaskID) int {
	lo, hi := 0, len(tl.Steps)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if tl.Steps[mid].Task < id {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(tl.Steps) && tl.Steps[lo].Task == id {
		return lo
	}
	return -1
}

func (tl *Timeline) reset() {
	tl.Steps = tl.Steps[:0]
	tl.Acquired = tl.Acquired[:0]
	tl.Released = tl.Released[:0]
}
