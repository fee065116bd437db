// Package models defines the data objects shared across codecanvas packages.
package models

import "time"

// NodeKind distinguishes files from directories in the file tree.
type NodeKind int

const (
	// KindFile is a regular file.
	KindFile NodeKind = iota
	// KindDirectory is a directory that may have children.
	KindDirectory
)

func (k NodeKind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// FileNode represents one filesystem entry inside a tree snapshot.
type FileNode struct {
	Name     string
	Path     string // Absolute within the storage root, unique key
	Kind     NodeKind
	Children []*FileNode
	Expanded bool
	Loaded   bool // Children listed at least once
	Symlink  bool
}

// IsDir reports whether the node is a directory.
func (n *FileNode) IsDir() bool {
	return n != nil && n.Kind == KindDirectory
}

// Document is the payload handed to the editor/tab collaborator.
type Document struct {
	Name     string
	Path     string
	Language string
	Content  string
}

// FileTab is an open editor tab.
type FileTab struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Language string `json:"language"`
	Content  string `json:"-"`
	Dirty    bool   `json:"-"`
}

// CodeSample is one entry of the static samples catalog.
type CodeSample struct {
	ID          string
	Title       string
	Description string
	Category    string
	Language    string
	Code        string
}

// Snippet is a user-editable code fragment inserted at the cursor.
type Snippet struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language"`
	Code        string `json:"code"`
}

// Workspace is a named pointer to a location in the storage root.
type Workspace struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CurrentPath string    `json:"current_path"`
	CreatedAt   time.Time `json:"created_at"`
}

// User is the identity returned by the auth backend.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session is the currently signed in user.
type Session struct {
	User       User      `json:"user"`
	SignedInAt time.Time `json:"signed_in_at"`
}
