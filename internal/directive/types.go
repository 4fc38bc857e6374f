// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Directive item types

package directive

// Item is one element of a parsed response: an Operation or a ProseLine
type Item interface {
	item()
}

// Operation is a side-effecting request proposed by the model.
// The set of implementations is closed; consumers type-switch over it.
type Operation interface {
	Item
	// Verb returns the directive keyword without the marker prefix
	Verb() string
	operation()
}

// Run executes a command vector
type Run struct {
	Command []string
	Options map[string]any
}

// Read injects a file's content into the conversation
type Read struct {
	Path string
}

// Edit overwrites an existing file
type Edit struct {
	Path    string
	Content string
}

// Create writes a new file
type Create struct {
	Path    string
	Content string
}

// Delete removes a file
type Delete struct {
	Path string
}

// NewDir creates a directory
type NewDir struct {
	Path string
}

// Rename moves Path to NewName
type Rename struct {
	Path    string
	NewName string
}

// ProseLine is explanatory text kept in order with the operations
type ProseLine struct {
	Text string
}

func (Run) item()       {}
func (Read) item()      {}
func (Edit) item()      {}
func (Create) item()    {}
func (Delete) item()    {}
func (NewDir) item()    {}
func (Rename) item()    {}
func (ProseLine) item() {}

func (Run) operation()    {}
func (Read) operation()   {}
func (Edit) operation()   {}
func (Create) operation() {}
func (Delete) operation() {}
func (NewDir) operation() {}
func (Rename) operation() {}

func (Run) Verb() string    { return VerbRun }
func (Read) Verb() string   { return VerbRead }
func (Edit) Verb() string   { return VerbEdit }
func (Create) Verb() string { return VerbCreate }
func (Delete) Verb() string { return VerbDelete }
func (NewDir) Verb() string { return VerbNewDir }
func (Rename) Verb() string { return VerbRename }

// Directive keywords
const (
	MarkerPrefix = "%%"

	VerbRun    = "run"
	VerbRead   = "read"
	VerbEdit   = "edit"
	VerbCreate = "create"
	VerbDelete = "delete"
	VerbNewDir = "new_dir"
	VerbRename = "rename"
)

// Operations filters the operations out of items, preserving order
func Operations(items []Item) []Operation {
	ops := make([]Operation, 0, len(items))
	for _, it := range items {
		if op, ok := it.(Operation); ok {
			ops = append(ops, op)
		}
	}
	return ops
}

// Prose returns the text of every prose line, in order
func Prose(items []Item) []string {
	var lines []string
	for _, it := range items {
		if p, ok := it.(ProseLine); ok {
			lines = append(lines, p.Text)
		}
	}
	return lines
}
