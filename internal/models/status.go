package models

import "time"

// FileStatus classifies a file against the last commit.
type FileStatus string

const (
	StatusAdded     FileStatus = "added"
	StatusModified  FileStatus = "modified"
	StatusDeleted   FileStatus = "deleted"
	StatusUntracked FileStatus = "untracked"
	StatusRenamed   FileStatus = "renamed"
)

// Short returns the one-letter marker used in listings.
func (s FileStatus) Short() string {
	switch s {
	case StatusAdded:
		return "A"
	case StatusModified:
		return "M"
	case StatusDeleted:
		return "D"
	case StatusUntracked:
		return "?"
	case StatusRenamed:
		return "R"
	default:
		return " "
	}
}

// GitFileStatus represents one file's relationship to the last commit.
type GitFileStatus struct {
	Path    string
	Status  FileStatus
	OldPath string // For renames: the original path
}

// Matrix flag values, matching the usual status-matrix convention.
const (
	HeadAbsent  = 0
	HeadPresent = 1

	WorkdirAbsent    = 0
	WorkdirUnchanged = 1
	WorkdirChanged   = 2

	StageAbsent    = 0
	StageHead      = 1 // identical to HEAD
	StageWorkdir   = 2 // identical to working tree
	StageDifferent = 3 // differs from both
)

// StatusRow is one raw status-matrix entry.
type StatusRow struct {
	Path    string
	Head    int
	Workdir int
	Stage   int
}

// Clean reports whether the row is identical in HEAD, working tree and index.
func (r StatusRow) Clean() bool {
	return r.Head == HeadPresent && r.Workdir == WorkdirUnchanged && r.Stage == StageHead
}

// Staged reports whether the index holds something different from HEAD.
func (r StatusRow) Staged() bool {
	if r.Head == HeadAbsent {
		return r.Stage != StageAbsent
	}
	return r.Stage != StageHead
}

// Signature identifies a commit author.
type Signature struct {
	Name  string
	Email string
}

// CommitRecord is produced by a successful commit.
type CommitRecord struct {
	ID      string
	Message string
	Author  Signature
	When    time.Time
}

// ShortID returns the abbreviated commit id.
func (c CommitRecord) ShortID() string {
	if len(c.ID) > 7 {
		return c.ID[:7]
	}
	return c.ID
}

// FileDiff carries full-text old and new content for a path.
type FileDiff struct {
	Path string
	Old  string
	New  string
}

// Span is a byte range in a line, End exclusive.
type Span struct {
	Start int
	End   int
}

// LineMatch is one matching line of a file.
type LineMatch struct {
	Line    int // 1-based
	Content string
	Spans   []Span
}

// SearchMatch groups the matching lines of one file.
type SearchMatch struct {
	Path  string
	Lines []LineMatch
}

// Count returns the number of spans across all lines.
func (m SearchMatch) Count() int {
	n := 0
	for _, l := range m.Lines {
		n += len(l.Spans)
	}
	return n
}
