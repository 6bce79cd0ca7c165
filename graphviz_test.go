// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func graphvizFixture() *Graph {
	g := New(WithName("deferred"))
	gbuf := g.AddTask("gbuffer")
	albedo := gbuf.CreateTexture("albedo", tex(8, 8))
	bb := g.AddExternalTexture("backbuffer", tex(8, 8), nil)
	light := g.AddTask("lighting")
	light.Read(albedo).ReadWrite(bb)
	dbg := g.AddTask("debug")
	dbg.Read(albedo)
	dbg.CreateTexture("overlay", tex(8, 8))
	probe := g.AddTask("probe")
	g.Capture(probe.CreateTexture("cube", tex(8, 8)))
	probe.Write(bb)
	return g
}

func TestWriteGraphviz(t *testing.T) {
	g := graphvizFixture()
	g.Build()

	var sb strings.Builder
	if err := g.WriteGraphviz(&sb); err != nil {
		t.Fatalf("WriteGraphviz: %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		`digraph "deferred" {`,
		`t2 [shape=box style=dashed color=gray60`, // culled debug pass
		`r0 [shape=ellipse style=filled fillcolor=lightskyblue`,
		`r1 [shape=ellipse style=filled fillcolor=palegreen`,
		`r2 [shape=ellipse style="filled,dashed" fillcolor=lightskyblue`, // never materialized
		`r3 [shape=ellipse style=filled fillcolor=orange`,
		"t0 -> r0;\n",
		"r0 -> t1;\n",
		"t1 -> r1 [color=red];\n",
		"r1 -> t1;\n",
		"t3 -> r1 [color=red];\n",
		"r0 -> t2;\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("graphviz output missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Error("graphviz output not terminated")
	}
}

func TestWriteGraphvizBeforeBuild(t *testing.T) {
	g := graphvizFixture()
	var sb strings.Builder
	if err := g.WriteGraphviz(&sb); err != nil {
		t.Fatalf("WriteGraphviz: %v", err)
	}
	if strings.Contains(sb.String(), "dashed") {
		t.Error("unbuilt graph should not mark culled or unused nodes")
	}
}

func TestExportGraphviz(t *testing.T) {
	g := graphvizFixture()
	g.Build()

	path := filepath.Join(t.TempDir(), "frame.dot")
	if err := g.ExportGraphviz(path); err != nil {
		t.Fatalf("ExportGraphviz: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), `digraph "deferred"`) {
		t.Errorf("exported file starts with %q", string(data[:min(len(data), 32)]))
	}

	if err := g.ExportGraphviz(filepath.Join(t.TempDir(), "missing", "frame.dot")); err == nil {
		t.Error("ExportGraphviz into a missing directory succeeded")
	}
}
