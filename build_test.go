// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"slices"
	"strings"
	"testing"
)

// schedule renders the timeline as one line per step:
// "task +acquired... -released...".
func schedule(g *Graph) []string {
	tl := g.Timeline()
	lines := make([]string, 0, tl.Len())
	for i, step := range tl.Steps {
		parts := []string{g.Task(step.Task).Name()}
		for _, id := range tl.Acquires(i) {
			parts = append(parts, "+"+g.Resource(id).Name())
		}
		for _, id := range tl.Releases(i) {
			parts = append(parts, "-"+g.Resource(id).Name())
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return lines
}

func culledNames(g *Graph) []string {
	var names []string
	for _, t := range g.Tasks() {
		if t.IsCulled() {
			names = append(names, t.Name())
		}
	}
	return names
}

func TestBuildScenarios(t *testing.T) {
	tests := []struct {
		name       string
		opts       []Option
		declare    func(g *Graph)
		want       []string
		wantCulled []string
	}{
		{
			// Producer of an output nobody reads or writes is culled.
			name: "unread output culls producer",
			declare: func(g *Graph) {
				g.AddTask("A").CreateTexture("R1", tex(4, 4))
				b := g.AddTask("B")
				g.Capture(b.CreateTexture("R2", tex(4, 4)))
			},
			want:       []string{"B +R2"},
			wantCulled: []string{"A"},
		},
		{
			// With fire-and-forget outputs the producer runs and the output
			// lives for a single step.
			name: "fire and forget keeps producer",
			opts: []Option{WithFireAndForgetOutputs(true)},
			declare: func(g *Graph) {
				g.AddTask("A").CreateTexture("R", tex(4, 4))
			},
			want: []string{"A +R -R"},
		},
		{
			name: "fire and forget with captured sibling",
			opts: []Option{WithFireAndForgetOutputs(true)},
			declare: func(g *Graph) {
				g.AddTask("A").CreateTexture("R1", tex(4, 4))
				b := g.AddTask("B")
				g.Capture(b.CreateTexture("R2", tex(4, 4)))
			},
			want: []string{"A +R1 -R1", "B +R2"},
		},
		{
			name: "last reader releases, captured never released",
			declare: func(g *Graph) {
				a := g.AddTask("A")
				r1 := a.CreateTexture("R1", tex(4, 4))
				b := g.AddTask("B")
				b.Read(r1)
				g.Capture(b.CreateTexture("R2", tex(4, 4)))
				g.AddTask("C").Read(r1)
			},
			want: []string{"A +R1", "B +R2", "C -R1"},
		},
		{
			name: "cascade through a chain",
			declare: func(g *Graph) {
				a := g.AddTask("A")
				x := a.CreateTexture("X", tex(4, 4))
				b := g.AddTask("B")
				b.Read(x)
				y := b.CreateTexture("Y", tex(4, 4))
				c := g.AddTask("C")
				c.Read(y)
				c.CreateTexture("Z", tex(4, 4))
			},
			wantCulled: []string{"A", "B", "C"},
		},
		{
			name: "diamond",
			declare: func(g *Graph) {
				a := g.AddTask("A")
				x := a.CreateTexture("X", tex(4, 4))
				b := g.AddTask("B")
				b.Read(x)
				y := b.CreateTexture("Y", tex(4, 4))
				c := g.AddTask("C")
				c.Read(x)
				z := c.CreateTexture("Z", tex(4, 4))
				bb := g.AddExternalTexture("backbuffer", tex(4, 4), nil)
				d := g.AddTask("D")
				d.Read(y).Read(z).Write(bb)
			},
			want: []string{"A +X", "B +Y", "C +Z -X", "D -Y -Z"},
		},
		{
			name: "half of a diamond culled",
			declare: func(g *Graph) {
				a := g.AddTask("A")
				x := a.CreateTexture("X", tex(4, 4))
				b := g.AddTask("B")
				b.Read(x)
				b.CreateTexture("Y", tex(4, 4))
				c := g.AddTask("C")
				c.Read(x)
				z := c.CreateTexture("Z", tex(4, 4))
				g.Capture(z)
			},
			want:       []string{"A +X", "C +Z -X"},
			wantCulled: []string{"B"},
		},
		{
			// A culled reader never extends a lifetime.
			name: "culled last reader does not extend lifetime",
			declare: func(g *Graph) {
				a := g.AddTask("A")
				x := a.CreateTexture("X", tex(4, 4))
				bb := g.AddExternalTexture("backbuffer", tex(4, 4), nil)
				b := g.AddTask("B")
				b.Read(x).Write(bb)
				dbg := g.AddTask("Debug")
				dbg.Read(x)
				dbg.CreateTexture("overlay", tex(4, 4))
			},
			want:       []string{"A +X", "B -X"},
			wantCulled: []string{"Debug"},
		},
		{
			name: "multiple writers release after last writer",
			declare: func(g *Graph) {
				a := g.AddTask("A")
				x := a.CreateBuffer("X", BufferDesc{Size: 16})
				g.AddTask("W1").Write(x)
				g.AddTask("R").Read(x)
				g.AddTask("W2").Write(x)
				g.AddTask("Unrelated")
			},
			want: []string{"A +X", "W1", "R", "W2 -X", "Unrelated"},
		},
		{
			// An unread resource with writers culls its creator and every writer.
			name: "unread resource culls writers",
			declare: func(g *Graph) {
				a := g.AddTask("A")
				x := a.CreateBuffer("X", BufferDesc{Size: 16})
				g.AddTask("W").Write(x)
			},
			wantCulled: []string{"A", "W"},
		},
		{
			name: "read-write keeps producer alive",
			declare: func(g *Graph) {
				a := g.AddTask("A")
				x := a.CreateTexture("X", tex(4, 4))
				g.AddTask("Blur").ReadWrite(x)
			},
			want: []string{"A +X", "Blur -X"},
		},
		{
			name: "writing an external resource keeps the task",
			declare: func(g *Graph) {
				ubo := g.AddExternalBuffer("ubo", BufferDesc{Size: 256}, nil)
				g.AddTask("upload").Write(ubo)
			},
			want: []string{"upload"},
		},
		{
			name: "task without resources always runs",
			declare: func(g *Graph) {
				g.AddTask("A").CreateTexture("R", tex(4, 4))
				g.AddTask("side_effect")
			},
			want:       []string{"side_effect"},
			wantCulled: []string{"A"},
		},
		{
			// No outputs means no references to drop, so a reader-only task
			// keeps its inputs alive.
			name: "read-only task always runs",
			declare: func(g *Graph) {
				x := g.AddTask("A").CreateTexture("X", tex(4, 4))
				env := g.AddExternalTexture("env", tex(4, 4), nil)
				g.AddTask("readback").Read(x).Read(env)
			},
			want: []string{"A +X", "readback -X"},
		},
		{
			name: "captured write keeps writer",
			declare: func(g *Graph) {
				a := g.AddTask("probe")
				cube := a.CreateTexture("cube", tex(16, 16))
				g.Capture(cube)
				g.AddTask("filter").Write(cube)
			},
			want: []string{"probe +cube", "filter"},
		},
		{
			// The creator is culled but a surviving writer still touches the
			// resource: it lives for that writer's step only.
			name: "acquire at first surviving user",
			declare: func(g *Graph) {
				a := g.AddTask("A")
				x := a.CreateTexture("X", tex(4, 4))
				bb := g.AddExternalTexture("bb", tex(4, 4), nil)
				g.AddTask("W").Write(x).Write(bb)
			},
			want:       []string{"W +X -X"},
			wantCulled: []string{"A"},
		},
		{
			name: "outputs acquired in declaration order",
			declare: func(g *Graph) {
				a := g.AddTask("A")
				x := a.CreateTexture("X", tex(4, 4))
				a.CreateTexture("A_out", tex(4, 4))
				bb := g.AddExternalTexture("bb", tex(4, 4), nil)
				g.AddTask("B").Read(x).Write(bb)
			},
			want: []string{"A +X +A_out -A_out", "B -X"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.opts...)
			tt.declare(g)
			g.Build()

			if got := schedule(g); !slices.Equal(got, tt.want) {
				t.Errorf("schedule = %q, want %q", got, tt.want)
			}
			if got := culledNames(g); !slices.Equal(got, tt.wantCulled) {
				t.Errorf("culled = %q, want %q", got, tt.wantCulled)
			}
		})
	}
}

func TestBuildTwicePanics(t *testing.T) {
	g := New()
	g.AddTask("a")
	g.Build()
	expectPanic(t, ErrAlreadyBuilt, g.Build)
}

func TestBuildStaleCapturedPanics(t *testing.T) {
	g := New()
	g.captured = append(g.captured, 0)
	expectPanic(t, ErrAlreadyBuilt, g.Build)
}

func TestBuildRefCounts(t *testing.T) {
	g := New()
	a := g.AddTask("A")
	x := a.CreateTexture("X", tex(4, 4))
	y := a.CreateTexture("Y", tex(4, 4))
	b := g.AddTask("B")
	b.Read(x).ReadWrite(y)
	bb := g.AddExternalTexture("bb", tex(4, 4), nil)
	c := g.AddTask("C")
	c.Read(x).Read(y).Write(bb)
	g.Build()

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"A", a.Refs(), 2},
		{"B", b.Refs(), 1},
		{"C", c.Refs(), 1},
		{"X", g.Resource(x).Refs(), 2},
		{"Y", g.Resource(y).Refs(), 2},
		{"bb", g.Resource(bb).Refs(), 0},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s refs = %d, want %d", tt.name, tt.got, tt.want)
		}
	}
	if fu, lu := g.Resource(x).FirstUse(), g.Resource(x).LastUse(); fu != a.ID() || lu != c.ID() {
		t.Errorf("X use interval = [%d, %d], want [%d, %d]", fu, lu, a.ID(), c.ID())
	}
	if fu := g.Resource(bb).FirstUse(); fu != InvalidTask {
		t.Errorf("external FirstUse = %d, want InvalidTask", fu)
	}
}

func TestReleaseTaskRefUnderflow(t *testing.T) {
	g := New()
	g.AddTask("A").CreateTexture("X", tex(1, 1))
	g.initRefCounts()
	g.tasks[0].refs = 0
	expectPanic(t, ErrMalformedGraph, func() {
		releaseTaskRef(g.tasks, g.resources, 0, nil)
	})
}

func TestReleaseTaskRefCascade(t *testing.T) {
	g := New()
	a := g.AddTask("A")
	x := a.CreateTexture("X", tex(1, 1))
	b := g.AddTask("B")
	b.Read(x)
	b.CreateTexture("Y", tex(1, 1))
	b.CreateTexture("Z", tex(1, 1))
	g.initRefCounts()

	worklist, n := releaseTaskRef(g.tasks, g.resources, b.ID(), nil)
	if n != 0 || len(worklist) != 0 || b.IsCulled() {
		t.Fatalf("first release culled B early: n=%d worklist=%v", n, worklist)
	}
	worklist, n = releaseTaskRef(g.tasks, g.resources, b.ID(), nil)
	if n != 1 || !b.IsCulled() {
		t.Fatalf("second release did not cull B: n=%d", n)
	}
	if !slices.Equal(worklist, []ResourceID{x}) {
		t.Errorf("worklist = %v, want [X]", worklist)
	}
}

func TestTimelineStepOf(t *testing.T) {
	g := New()
	g.AddTask("A").CreateTexture("dead", tex(1, 1))
	g.AddTask("B")
	g.AddTask("C").CreateTexture("dead2", tex(1, 1))
	g.AddTask("D")
	g.Build()

	tl := g.Timeline()
	tests := []struct {
		task TaskID
		want int
	}{
		{0, -1},
		{1, 0},
		{2, -1},
		{3, 1},
		{99, -1},
	}
	for _, tt := range tests {
		if got := tl.StepOf(tt.task); got != tt.want {
			t.Errorf("StepOf(%d) = %d, want %d", tt.task, got, tt.want)
		}
	}
}
