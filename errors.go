// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"errors"
	"fmt"
)

// Graph errors.
var (
	// ErrMalformedGraph is wrapped by every panic raised for a broken graph
	// topology: unknown handles, double producers, duplicate declarations and
	// reference count underflow.
	ErrMalformedGraph = errors.New("framegraph: malformed graph")

	// ErrAlreadyBuilt is raised when Build runs twice without Reset.
	ErrAlreadyBuilt = errors.New("framegraph: graph already built")

	// ErrNotBuilt is returned when Execute is called before Build.
	ErrNotBuilt = errors.New("framegraph: graph not built")

	// ErrAlreadyExecuted is returned when Execute runs twice for one Build.
	ErrAlreadyExecuted = errors.New("framegraph: graph already executed")

	// ErrNilRenderContext is returned when Execute receives a nil context or
	// a context without an allocator.
	ErrNilRenderContext = errors.New("framegraph: render context has no allocator")

	// ErrNoRecorder is returned when a render pass runs without a command recorder.
	ErrNoRecorder = errors.New("framegraph: render context has no command recorder")

	// ErrAllocationFailed wraps allocator errors for transient resources.
	ErrAllocationFailed = errors.New("framegraph: resource allocation failed")

	// ErrTaskFailed wraps errors returned by task callbacks.
	ErrTaskFailed = errors.New("framegraph: task failed")
)

// malformed panics with an error wrapping ErrMalformedGraph.
func malformed(format string, args ...any) {
	panic(fmt.Errorf("%w: %s", ErrMalformedGraph, fmt.Sprintf(format, args...)))
}
