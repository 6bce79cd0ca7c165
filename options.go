// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

// Option configures a Graph during creation.
//
// Example:
//
//	g := framegraph.New(
//	    framegraph.WithName("main"),
//	    framegraph.WithCapacity(64, 128),
//	)
type Option func(*graphOptions)

// graphOptions holds optional configuration for Graph creation.
type graphOptions struct {
	name          string
	taskCap       int
	resourceCap   int
	fireAndForget bool
}

// defaultOptions returns the default graph options.
func defaultOptions() graphOptions {
	return graphOptions{
		name:        "framegraph",
		taskCap:     16,
		resourceCap: 32,
	}
}

// WithName sets the graph name used in logs and Graphviz output.
func WithName(name string) Option {
	return func(o *graphOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithCapacity preallocates the task and resource arenas.
// Non-positive values keep the defaults.
func WithCapacity(tasks, resources int) Option {
	return func(o *graphOptions) {
		if tasks > 0 {
			o.taskCap = tasks
		}
		if resources > 0 {
			o.resourceCap = resources
		}
	}
}

// WithFireAndForgetOutputs controls culling of outputs that nobody reads or
// writes.
//
// When disabled (the default) such an output is dead on arrival: it seeds
// the culling worklist and its producer is culled once none of its other
// outputs are referenced.
//
// When enabled the output does not seed the worklist. Its producer keeps
// running and the output is acquired and released within the producer's
// timeline step.
func WithFireAndForgetOutputs(enabled bool) Option {
	return func(o *graphOptions) {
		o.fireAndForget = enabled
	}
}
