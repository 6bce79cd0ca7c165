// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Graphviz node colors.
const (
	dotTransient = "lightskyblue"
	dotExternal  = "palegreen"
	dotCaptured  = "orange"
	dotCulled    = "gray60"
)

// ExportGraphviz writes the graph in Graphviz DOT format to path.
// See WriteGraphviz.
func (g *Graph) ExportGraphviz(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("framegraph: create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := g.WriteGraphviz(bw); err != nil {
		_ = f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("framegraph: write %s: %w", path, err)
	}
	return f.Close()
}

// WriteGraphviz writes the full task/resource graph in Graphviz DOT format.
//
// Tasks are boxes and resources are ellipses. Culled tasks and resources
// that are never materialized are drawn dashed. Resources are filled by
// lifetime: transient, external or captured. Edges point from a task to the
// resources it produces or writes and from a resource to the tasks that
// read it. https://graphviz.org/doc/info/lang.html
func (g *Graph) WriteGraphviz(w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf("digraph %s {\n", strconv.Quote(g.opts.name))
	ew.printf("label = %s;\n", strconv.Quote(g.opts.name))
	ew.printf("labelloc = \"t\";\n")
	ew.printf("node [fontname=Monospace];\n\n")

	for _, t := range g.tasks {
		style := "solid"
		color := "black"
		if t.culled {
			style = "dashed"
			color = dotCulled
		}
		ew.printf("t%d [shape=box style=%s color=%s fontcolor=%s label=%s];\n",
			t.id, style, color, color, strconv.Quote(fmt.Sprintf("%s\n%s refs=%d", t.name, t.kind, t.refs)))
	}
	ew.printf("\n")

	for _, r := range g.resources {
		fill := dotTransient
		switch {
		case r.captured:
			fill = dotCaptured
		case !r.transient:
			fill = dotExternal
		}
		style := "filled"
		if g.built && r.transient && r.firstUse == InvalidTask {
			style = "\"filled,dashed\""
		}
		ew.printf("r%d [shape=ellipse style=%s fillcolor=%s label=%s];\n",
			r.id, style, fill, strconv.Quote(fmt.Sprintf("%s\n%v refs=%d", r.name, r.desc, r.refs)))
	}
	ew.printf("\n")

	for _, t := range g.tasks {
		for _, rid := range t.produced {
			ew.printf("t%d -> r%d;\n", t.id, rid)
		}
		for _, rid := range t.written {
			ew.printf("t%d -> r%d [color=red];\n", t.id, rid)
		}
		for _, rid := range t.readWritten {
			ew.printf("t%d -> r%d [color=red];\n", t.id, rid)
			ew.printf("r%d -> t%d;\n", rid, t.id)
		}
		for _, rid := range t.read {
			ew.printf("r%d -> t%d;\n", rid, t.id)
		}
	}
	ew.printf("}\n")
	return ew.err
}
