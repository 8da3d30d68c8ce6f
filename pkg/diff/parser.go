// Package diff parses unified diff text into structured per-file,
// per-hunk change records.
package diff

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/collie-dev/collie/pkg/domain/model"
	"github.com/collie-dev/collie/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

var (
	gitHeaderRegex  = regexp.MustCompile(`^diff --git a/(.+) b/(.+)$`)
	hunkHeaderRegex = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@(.*)$`)
)

// parser holds the scan state for one Parse call
type parser struct {
	files []model.FileChange
	file  *model.FileChange
	hunk  *model.Hunk

	// remaining line counts declared by the open hunk header
	oldRemain int
	newRemain int
	// next line numbers on each side of the open hunk
	oldCursor int
	newCursor int

	lineNo int // current position in the raw text, for error context
}

// Parse turns raw unified diff text into an ordered ParsedDiff. Both
// git-style diffs (diff --git headers) and plain unified diffs
// (starting at --- / +++) are accepted. An empty input yields an empty
// ParsedDiff. A hunk header that cannot be parsed, or whose declared
// counts disagree with the lines that follow, fails with a
// malformed-diff tagged error.
func Parse(raw string) (model.ParsedDiff, error) {
	p := &parser{}

	for _, line := range strings.Split(raw, "\n") {
		p.lineNo++
		if err := p.consume(line); err != nil {
			return model.ParsedDiff{}, err
		}
	}

	if err := p.finish(); err != nil {
		return model.ParsedDiff{}, err
	}

	return model.ParsedDiff{Files: p.files}, nil
}

// FileExtensions returns the sorted unique lowercase extensions of the
// files in the diff, used as language hints for the prompt.
func FileExtensions(d model.ParsedDiff) []string {
	seen := map[string]struct{}{}
	for _, f := range d.Files {
		path := f.Path
		if path == "" {
			path = f.OldPath
		}
		idx := strings.LastIndex(path, ".")
		if idx < 0 || idx == len(path)-1 {
			continue
		}
		seen[strings.ToLower(path[idx+1:])] = struct{}{}
	}

	exts := make([]string, 0, len(seen))
	for ext := range seen {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func (p *parser) consume(line string) error {
	// While a hunk is still expecting lines, everything is classified
	// by its leading marker character.
	if p.hunk != nil {
		return p.consumeHunkLine(line)
	}

	switch {
	case strings.HasPrefix(line, "diff --git "):
		p.closeFile()
		m := gitHeaderRegex.FindStringSubmatch(line)
		if m == nil {
			return p.malformed("unparsable file header", line)
		}
		p.file = &model.FileChange{
			Path: m[2],
			Kind: model.ChangeModified,
		}

	case strings.HasPrefix(line, "--- "):
		path := stripPathPrefix(line[4:])
		if p.file == nil || len(p.file.Hunks) > 0 || p.file.Binary {
			// Plain unified diff: the --- line starts a new file section
			p.closeFile()
			p.file = &model.FileChange{Kind: model.ChangeModified}
		}
		if path == "" {
			// old side absent: the file was added
			p.file.Kind = model.ChangeAdded
		} else if p.file.Path == "" {
			p.file.Path = path
		}

	case strings.HasPrefix(line, "+++ "):
		if p.file == nil {
			return p.malformed("new-path line outside a file section", line)
		}
		path := stripPathPrefix(line[4:])
		if path == "" {
			p.file.Kind = model.ChangeDeleted
		} else if p.file.Kind != model.ChangeRenamed {
			p.file.Path = path
		}

	case strings.HasPrefix(line, "@@"):
		return p.openHunk(line)

	case strings.HasPrefix(line, "new file mode"):
		if p.file != nil {
			p.file.Kind = model.ChangeAdded
		}

	case strings.HasPrefix(line, "deleted file mode"):
		if p.file != nil {
			p.file.Kind = model.ChangeDeleted
		}

	case strings.HasPrefix(line, "rename from "):
		if p.file != nil {
			p.file.Kind = model.ChangeRenamed
			p.file.OldPath = strings.TrimPrefix(line, "rename from ")
		}

	case strings.HasPrefix(line, "rename to "):
		if p.file != nil {
			p.file.Kind = model.ChangeRenamed
			p.file.Path = strings.TrimPrefix(line, "rename to ")
		}

	case strings.HasPrefix(line, "Binary files "), strings.HasPrefix(line, "GIT binary patch"):
		if p.file != nil {
			p.file.Binary = true
		}

	case p.file != nil && (strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-")):
		// a change line with no hunk left to absorb it: the previous
		// hunk header under-declared its counts
		return p.malformed("change line outside any hunk", line)

	default:
		// index lines, mode lines, similarity scores, trailing blank
		// lines and anything else between sections carry no content
	}

	return nil
}

func (p *parser) consumeHunkLine(line string) error {
	switch {
	case strings.HasPrefix(line, "\\"):
		// "\ No newline at end of file" is a marker, not content
		return nil

	case strings.HasPrefix(line, "+"):
		if p.newRemain == 0 {
			return p.malformed("more added lines than the hunk header declared", line)
		}
		p.hunk.Lines = append(p.hunk.Lines, model.Line{
			Kind:    model.LineAdded,
			Content: line[1:],
			NewLine: p.newCursor,
		})
		p.newCursor++
		p.newRemain--
		p.file.Additions++

	case strings.HasPrefix(line, "-"):
		if p.oldRemain == 0 {
			return p.malformed("more removed lines than the hunk header declared", line)
		}
		p.hunk.Lines = append(p.hunk.Lines, model.Line{
			Kind:    model.LineRemoved,
			Content: line[1:],
			OldLine: p.oldCursor,
		})
		p.oldCursor++
		p.oldRemain--
		p.file.Deletions++

	case strings.HasPrefix(line, " "):
		if p.oldRemain == 0 || p.newRemain == 0 {
			return p.malformed("more context lines than the hunk header declared", line)
		}
		p.hunk.Lines = append(p.hunk.Lines, model.Line{
			Kind:    model.LineContext,
			Content: line[1:],
			OldLine: p.oldCursor,
			NewLine: p.newCursor,
		})
		p.oldCursor++
		p.newCursor++
		p.oldRemain--
		p.newRemain--

	case line == "":
		// usually the artifact of a trailing newline; never content
		return nil

	default:
		return p.malformed("unexpected line inside hunk", line)
	}

	if p.oldRemain == 0 && p.newRemain == 0 {
		p.closeHunk()
	}
	return nil
}

func (p *parser) openHunk(line string) error {
	if p.file == nil {
		return p.malformed("hunk header outside a file section", line)
	}

	m := hunkHeaderRegex.FindStringSubmatch(line)
	if m == nil {
		return p.malformed("unparsable hunk header", line)
	}

	// Omitted counts default to 1 per the unified diff format
	oldStart, _ := strconv.Atoi(m[1])
	oldCount := 1
	if m[2] != "" {
		oldCount, _ = strconv.Atoi(m[2])
	}
	newStart, _ := strconv.Atoi(m[3])
	newCount := 1
	if m[4] != "" {
		newCount, _ = strconv.Atoi(m[4])
	}

	p.hunk = &model.Hunk{
		OldStart: oldStart,
		OldCount: oldCount,
		NewStart: newStart,
		NewCount: newCount,
		Section:  strings.TrimSpace(m[5]),
	}
	p.oldRemain = oldCount
	p.newRemain = newCount
	p.oldCursor = oldStart
	p.newCursor = newStart

	// A hunk may declare zero lines on both sides only in degenerate
	// diffs; close it immediately so the next header is not treated
	// as hunk content.
	if p.oldRemain == 0 && p.newRemain == 0 {
		p.closeHunk()
	}
	return nil
}

func (p *parser) closeHunk() {
	if p.hunk == nil {
		return
	}
	p.file.Hunks = append(p.file.Hunks, *p.hunk)
	p.hunk = nil
}

func (p *parser) closeFile() {
	if p.file == nil {
		return
	}
	p.files = append(p.files, *p.file)
	p.file = nil
}

func (p *parser) finish() error {
	if p.hunk != nil {
		// counters not exhausted: the input ended mid-hunk
		return goerr.New("unterminated hunk: fewer lines than the header declared",
			goerr.T(types.ErrTagMalformedDiff),
			goerr.V("old_remaining", p.oldRemain),
			goerr.V("new_remaining", p.newRemain),
		)
	}
	p.closeFile()
	return nil
}

func (p *parser) malformed(msg, line string) error {
	return goerr.New(msg,
		goerr.T(types.ErrTagMalformedDiff),
		goerr.V("line_no", p.lineNo),
		goerr.V("line", line),
	)
}

// stripPathPrefix normalizes a ---/+++ path: trailing tab metadata is
// dropped, the a/ or b/ prefix is removed, and /dev/null maps to the
// empty string.
func stripPathPrefix(path string) string {
	if idx := strings.IndexByte(path, '\t'); idx >= 0 {
		path = path[:idx]
	}
	if path == "/dev/null" {
		return ""
	}
	if len(path) > 2 && (path[:2] == "a/" || path[:2] == "b/") {
		return path[2:]
	}
	return path
}
