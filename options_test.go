// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import "testing"

func TestOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want graphOptions
	}{
		{
			name: "defaults",
			want: graphOptions{name: "framegraph", taskCap: 16, resourceCap: 32},
		},
		{
			name: "all options",
			opts: []Option{WithName("main"), WithCapacity(64, 128), WithFireAndForgetOutputs(true)},
			want: graphOptions{name: "main", taskCap: 64, resourceCap: 128, fireAndForget: true},
		},
		{
			name: "empty name and non-positive capacity keep defaults",
			opts: []Option{WithName(""), WithCapacity(0, -1)},
			want: graphOptions{name: "framegraph", taskCap: 16, resourceCap: 32},
		},
		{
			name: "later option wins",
			opts: []Option{WithFireAndForgetOutputs(true), WithFireAndForgetOutputs(false)},
			want: graphOptions{name: "framegraph", taskCap: 16, resourceCap: 32},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.opts...)
			if g.opts != tt.want {
				t.Errorf("opts = %+v, want %+v", g.opts, tt.want)
			}
			if cap(g.tasks) != tt.want.taskCap || cap(g.resources) != tt.want.resourceCap {
				t.Errorf("capacity = %d/%d, want %d/%d",
					cap(g.tasks), cap(g.resources), tt.want.taskCap, tt.want.resourceCap)
			}
			if g.Name() != tt.want.name {
				t.Errorf("Name() = %q, want %q", g.Name(), tt.want.name)
			}
		})
	}
}
