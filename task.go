// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import "fmt"

// TaskID is a dense handle to a task within one Graph. Task IDs are assigned
// in declaration order, which is also the execution order.
type TaskID int32

// InvalidTask is the handle used for "no task".
const InvalidTask TaskID = -1

// TaskKind selects the task variant.
type TaskKind uint8

const (
	// TaskKindGeneric is a task with a single execute callback
	// (compute, copies, uploads).
	TaskKindGeneric TaskKind = iota

	// TaskKindRenderPass is a task that opens a render pass over its
	// attachments and runs its subpass callbacks inside it.
	TaskKindRenderPass
)

// String returns the string representation of TaskKind.
func (k TaskKind) String() string {
	switch k {
	case TaskKindGeneric:
		return "Generic"
	case TaskKindRenderPass:
		return "RenderPass"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Access is the way a task uses a resource it did not create.
type Access uint8

const (
	// AccessRead declares a read-only dependency.
	AccessRead Access = iota + 1

	// AccessWrite declares a write to an existing resource.
	AccessWrite

	// AccessReadWrite declares a read-modify-write. The task is recorded as
	// both a reader and a writer of the resource.
	AccessReadWrite
)

// String returns the string representation of Access.
func (a Access) String() string {
	switch a {
	case AccessRead:
		return "Read"
	case AccessWrite:
		return "Write"
	case AccessReadWrite:
		return "ReadWrite"
	default:
		return fmt.Sprintf("Unknown(%d)", int(a))
	}
}

// ExecuteFunc is the callback of a generic task.
type ExecuteFunc func(ec *ExecutionContext) error

// Task is one scheduled unit of GPU work.
//
// Tasks are created with Graph.AddTask or Graph.AddRenderPass and declare
// their resource usage before Build. A Task must not be used after the
// graph is Reset.
type Task struct {
	graph *Graph
	id    TaskID
	name  string
	kind  TaskKind

	produced    []ResourceID
	read        []ResourceID
	written     []ResourceID
	readWritten []ResourceID

	refs   int
	culled bool

	execute ExecuteFunc
	pass    *renderPassData
}

// ID returns the task handle.
func (t *Task) ID() TaskID { return t.id }

// Name returns the debug name.
func (t *Task) Name() string { return t.name }

// Kind returns the task variant.
func (t *Task) Kind() TaskKind { return t.kind }

// Produced returns the resources created by this task.
func (t *Task) Produced() []ResourceID { return t.produced }

// Reads returns the resources declared with AccessRead.
func (t *Task) Reads() []ResourceID { return t.read }

// Writes returns the resources declared with AccessWrite.
func (t *Task) Writes() []ResourceID { return t.written }

// ReadWrites returns the resources declared with AccessReadWrite.
func (t *Task) ReadWrites() []ResourceID { return t.readWritten }

// Refs returns the reference count computed by Build.
func (t *Task) Refs() int { return t.refs }

// IsCulled reports whether Build removed the task from the timeline.
func (t *Task) IsCulled() bool { return t.culled }

// CreateTexture declares a new transient texture produced by this task.
func (t *Task) CreateTexture(name string, desc TextureDesc) ResourceID {
	return t.create(name, Texture(desc))
}

// CreateBuffer declares a new transient buffer produced by this task.
func (t *Task) CreateBuffer(name string, desc BufferDesc) ResourceID {
	return t.create(name, Buffer(desc))
}

// Read declares that the task reads id.
func (t *Task) Read(id ResourceID) *Task { return t.AddResource(id, AccessRead) }

// Write declares that the task writes id without creating it.
func (t *Task) Write(id ResourceID) *Task { return t.AddResource(id, AccessWrite) }

// ReadWrite declares that the task reads and writes id.
func (t *Task) ReadWrite(id ResourceID) *Task { return t.AddResource(id, AccessReadWrite) }

// AddResource declares a dependency on an existing resource.
//
// Each resource may be declared at most once per task, a task may not
// declare access to a resource it created, and a transient resource may
// only be used by tasks added after its creator. Violations panic with an
// error wrapping ErrMalformedGraph.
func (t *Task) AddResource(id ResourceID, access Access) *Task {
	g := t.graph
	g.mustBeMutable()
	r := g.mustResource(id)
	if r.creator == t.id {
		malformed("task %q declares %v access to its own output %q", t.name, access, r.name)
	}
	if r.transient && t.id < r.creator {
		malformed("task %q uses %q before its creator %q", t.name, r.name, g.tasks[r.creator].name)
	}
	if t.uses(id) {
		malformed("task %q declares resource %q twice", t.name, r.name)
	}

	switch access {
	case AccessRead:
		t.read = append(t.read, id)
		r.readers = append(r.readers, t.id)
	case AccessWrite:
		t.written = append(t.written, id)
		r.writers = append(r.writers, t.id)
	case AccessReadWrite:
		t.readWritten = append(t.readWritten, id)
		r.readers = append(r.readers, t.id)
		r.writers = append(r.writers, t.id)
	default:
		malformed("task %q: invalid access %v", t.name, access)
	}
	return t
}

// SetExecute sets the callback of a generic task. Render passes use
// RenderPass.AddSubpass instead.
func (t *Task) SetExecute(fn ExecuteFunc) *Task {
	t.graph.mustBeMutable()
	t.execute = fn
	return t
}

func (t *Task) create(name string, desc ResourceDesc) ResourceID {
	g := t.graph
	g.mustBeMutable()
	r := g.newResource(name, desc, true)
	r.creator = t.id
	t.produced = append(t.produced, r.id)
	return r.id
}

// uses reports whether the task already declared id in any role.
func (t *Task) uses(id ResourceID) bool {
	for _, list := range [...][]ResourceID{t.produced, t.read, t.written, t.readWritten} {
		for _, have := range list {
			if have == id {
				return true
			}
		}
	}
	return false
}

// declared returns the number of resources the task declared in any role.
func (t *Task) declared() int {
	return len(t.produced) + len(t.read) + len(t.written) + len(t.readWritten)
}
