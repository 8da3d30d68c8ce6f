package model

// ChangeKind represents how a file was changed in a diff
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeModified ChangeKind = "modified"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeRenamed  ChangeKind = "renamed"
)

// LineKind represents the role of a single diff line within a hunk
type LineKind string

const (
	LineContext LineKind = "context"
	LineAdded   LineKind = "added"
	LineRemoved LineKind = "removed"
)

// Line is one diff line. OldLine/NewLine are the 1-based positions the
// line maps to in the old/new file; 0 means the line does not exist on
// that side (added lines have no OldLine, removed lines no NewLine).
type Line struct {
	Kind    LineKind
	Content string
	OldLine int
	NewLine int
}

// Hunk is a contiguous diff region anchored by the unified-diff header
// numbers: @@ -OldStart,OldCount +NewStart,NewCount @@
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Section  string // trailing context of the @@ header, if any
	Lines    []Line
}

// Added returns the number of added lines in the hunk
func (h *Hunk) Added() int {
	return h.count(LineAdded)
}

// Removed returns the number of removed lines in the hunk
func (h *Hunk) Removed() int {
	return h.count(LineRemoved)
}

func (h *Hunk) count(kind LineKind) int {
	n := 0
	for _, l := range h.Lines {
		if l.Kind == kind {
			n++
		}
	}
	return n
}

// FileChange is one file touched in a diff, with its hunks in the
// order they appeared
type FileChange struct {
	Path      string
	OldPath   string // set when Kind is ChangeRenamed
	Kind      ChangeKind
	Binary    bool
	Hunks     []Hunk
	Additions int
	Deletions int
}

// ParsedDiff is the ordered sequence of file changes from one diff.
// Files preserve the order they appeared in the raw text.
type ParsedDiff struct {
	Files []FileChange
}

// TotalChanges returns the summed additions and deletions across files
func (d ParsedDiff) TotalChanges() (additions, deletions int) {
	for _, f := range d.Files {
		additions += f.Additions
		deletions += f.Deletions
	}
	return additions, deletions
}
