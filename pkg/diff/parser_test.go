package diff_test

import (
	"strings"
	"testing"

	"github.com/collie-dev/collie/pkg/diff"
	"github.com/collie-dev/collie/pkg/domain/model"
	"github.com/collie-dev/collie/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestParse_SingleFile(t *testing.T) {
	raw := "--- a/x.py\n+++ b/x.py\n@@ -1,1 +1,2 @@\n-old\n+new1\n+new2\n"

	parsed, err := diff.Parse(raw)
	gt.NoError(t, err)
	gt.A(t, parsed.Files).Length(1)

	f := parsed.Files[0]
	gt.Value(t, f.Path).Equal("x.py")
	gt.Value(t, f.Kind).Equal(model.ChangeModified)
	gt.A(t, f.Hunks).Length(1)

	h := f.Hunks[0]
	gt.Value(t, h.OldStart).Equal(1)
	gt.Value(t, h.OldCount).Equal(1)
	gt.Value(t, h.NewStart).Equal(1)
	gt.Value(t, h.NewCount).Equal(2)
	gt.Value(t, h.Removed()).Equal(1)
	gt.Value(t, h.Added()).Equal(2)

	gt.A(t, h.Lines).Length(3)
	gt.Value(t, h.Lines[0]).Equal(model.Line{Kind: model.LineRemoved, Content: "old", OldLine: 1})
	gt.Value(t, h.Lines[1]).Equal(model.Line{Kind: model.LineAdded, Content: "new1", NewLine: 1})
	gt.Value(t, h.Lines[2]).Equal(model.Line{Kind: model.LineAdded, Content: "new2", NewLine: 2})
}

func TestParse_EmptyDiff(t *testing.T) {
	parsed, err := diff.Parse("")
	gt.NoError(t, err)
	gt.A(t, parsed.Files).Length(0)
}

func TestParse_OmittedCount(t *testing.T) {
	raw := "--- a/f.txt\n+++ b/f.txt\n@@ -3 +3,2 @@\n-x\n+y\n+z\n"

	parsed, err := diff.Parse(raw)
	gt.NoError(t, err)

	h := parsed.Files[0].Hunks[0]
	gt.Value(t, h.OldCount).Equal(1)
	gt.Value(t, h.NewCount).Equal(2)
}

func TestParse_GitHeaderMultiFile(t *testing.T) {
	raw := strings.Join([]string{
		"diff --git a/main.go b/main.go",
		"index 1111111..2222222 100644",
		"--- a/main.go",
		"+++ b/main.go",
		"@@ -10,3 +10,4 @@ func main() {",
		" \tctx := context.Background()",
		"-\trun(ctx)",
		"+\tif err := run(ctx); err != nil {",
		"+\t}",
		" }",
		"diff --git a/util.go b/util.go",
		"new file mode 100644",
		"--- /dev/null",
		"+++ b/util.go",
		"@@ -0,0 +1,2 @@",
		"+package main",
		"+",
		"",
	}, "\n")

	parsed, err := diff.Parse(raw)
	gt.NoError(t, err)
	gt.A(t, parsed.Files).Length(2)

	// files preserve raw diff order
	gt.Value(t, parsed.Files[0].Path).Equal("main.go")
	gt.Value(t, parsed.Files[1].Path).Equal("util.go")
	gt.Value(t, parsed.Files[1].Kind).Equal(model.ChangeAdded)

	gt.Value(t, parsed.Files[0].Hunks[0].Section).Equal("func main() {")
	gt.Value(t, parsed.Files[0].Additions).Equal(2)
	gt.Value(t, parsed.Files[0].Deletions).Equal(1)

	additions, deletions := parsed.TotalChanges()
	gt.Value(t, additions).Equal(4)
	gt.Value(t, deletions).Equal(1)
}

func TestParse_LineNumbers(t *testing.T) {
	raw := strings.Join([]string{
		"--- a/f.txt",
		"+++ b/f.txt",
		"@@ -5,4 +5,4 @@",
		" ctx1",
		"-rm1",
		"+add1",
		" ctx2",
		" ctx3",
		"",
	}, "\n")

	parsed, err := diff.Parse(raw)
	gt.NoError(t, err)

	lines := parsed.Files[0].Hunks[0].Lines
	gt.A(t, lines).Length(5)

	gt.Value(t, lines[0].OldLine).Equal(5)
	gt.Value(t, lines[0].NewLine).Equal(5)
	gt.Value(t, lines[1].OldLine).Equal(6) // removed: old side only
	gt.Value(t, lines[1].NewLine).Equal(0)
	gt.Value(t, lines[2].OldLine).Equal(0) // added: new side only
	gt.Value(t, lines[2].NewLine).Equal(6)
	gt.Value(t, lines[3].OldLine).Equal(7)
	gt.Value(t, lines[3].NewLine).Equal(7)
	gt.Value(t, lines[4].OldLine).Equal(8)
	gt.Value(t, lines[4].NewLine).Equal(8)
}

func TestParse_Rename(t *testing.T) {
	raw := strings.Join([]string{
		"diff --git a/old_name.go b/new_name.go",
		"similarity index 95%",
		"rename from old_name.go",
		"rename to new_name.go",
		"",
	}, "\n")

	parsed, err := diff.Parse(raw)
	gt.NoError(t, err)

	f := parsed.Files[0]
	gt.Value(t, f.Kind).Equal(model.ChangeRenamed)
	gt.Value(t, f.OldPath).Equal("old_name.go")
	gt.Value(t, f.Path).Equal("new_name.go")
}

func TestParse_DeletedFile(t *testing.T) {
	raw := strings.Join([]string{
		"diff --git a/gone.txt b/gone.txt",
		"deleted file mode 100644",
		"--- a/gone.txt",
		"+++ /dev/null",
		"@@ -1,2 +0,0 @@",
		"-line1",
		"-line2",
		"",
	}, "\n")

	parsed, err := diff.Parse(raw)
	gt.NoError(t, err)

	f := parsed.Files[0]
	gt.Value(t, f.Kind).Equal(model.ChangeDeleted)
	gt.Value(t, f.Path).Equal("gone.txt")
	gt.Value(t, f.Deletions).Equal(2)
}

func TestParse_BinaryFile(t *testing.T) {
	raw := strings.Join([]string{
		"diff --git a/logo.png b/logo.png",
		"index 1111111..2222222 100644",
		"Binary files a/logo.png and b/logo.png differ",
		"",
	}, "\n")

	parsed, err := diff.Parse(raw)
	gt.NoError(t, err)

	f := parsed.Files[0]
	gt.Value(t, f.Binary).Equal(true)
	gt.A(t, f.Hunks).Length(0)
}

func TestParse_NoNewlineMarker(t *testing.T) {
	raw := strings.Join([]string{
		"--- a/f.txt",
		"+++ b/f.txt",
		"@@ -1,1 +1,1 @@",
		"-old",
		"\\ No newline at end of file",
		"+new",
		"\\ No newline at end of file",
		"",
	}, "\n")

	parsed, err := diff.Parse(raw)
	gt.NoError(t, err)

	h := parsed.Files[0].Hunks[0]
	gt.Value(t, h.Added()).Equal(1)
	gt.Value(t, h.Removed()).Equal(1)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "unterminated hunk",
			raw:  "--- a/f.txt\n+++ b/f.txt\n@@ -1,1 +1,10 @@\n-old\n+n1\n+n2\n+n3\n+n4\n+n5\n",
		},
		{
			name: "more added lines than declared",
			raw:  "--- a/f.txt\n+++ b/f.txt\n@@ -1,1 +1,1 @@\n-old\n+n1\n+n2\n",
		},
		{
			name: "unparsable hunk header",
			raw:  "--- a/f.txt\n+++ b/f.txt\n@@ -x,1 +1,1 @@\n-old\n+new\n",
		},
		{
			name: "hunk header outside file section",
			raw:  "@@ -1,1 +1,1 @@\n-old\n+new\n",
		},
		{
			name: "unexpected line inside hunk",
			raw:  "--- a/f.txt\n+++ b/f.txt\n@@ -1,1 +1,2 @@\n-old\nwhat is this\n+new\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := diff.Parse(tt.raw)
			gt.Error(t, err)
			gt.True(t, goerr.HasTag(err, types.ErrTagMalformedDiff))
		})
	}
}

// Counts declared by each hunk header must equal the classified lines
// that follow it.
func TestParse_HeaderCountsMatchLines(t *testing.T) {
	raw := strings.Join([]string{
		"diff --git a/a.go b/a.go",
		"--- a/a.go",
		"+++ b/a.go",
		"@@ -1,3 +1,4 @@",
		" keep",
		"-drop",
		"+put1",
		"+put2",
		" keep2",
		"@@ -10,2 +11,1 @@",
		"-x",
		"-y",
		"+z",
		"",
	}, "\n")

	parsed, err := diff.Parse(raw)
	gt.NoError(t, err)

	for _, f := range parsed.Files {
		for _, h := range f.Hunks {
			context := len(h.Lines) - h.Added() - h.Removed()
			gt.Value(t, h.OldCount).Equal(h.Removed() + context)
			gt.Value(t, h.NewCount).Equal(h.Added() + context)
		}
	}
}

func TestFileExtensions(t *testing.T) {
	parsed := model.ParsedDiff{Files: []model.FileChange{
		{Path: "cmd/main.go"},
		{Path: "lib/util.PY"},
		{Path: "pkg/another.go"},
		{Path: "Makefile"},
		{Path: "", OldPath: "legacy.rb"},
	}}

	gt.Value(t, diff.FileExtensions(parsed)).Equal([]string{"go", "py", "rb"})
}
