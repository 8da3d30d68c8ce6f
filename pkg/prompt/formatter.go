// Package prompt converts a parsed diff plus pull request metadata
// into a size-bounded review prompt.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/collie-dev/collie/pkg/diff"
	"github.com/collie-dev/collie/pkg/domain/model"
)

// TruncationMarker is appended whenever content had to be cut so the
// analysis service knows it received partial input.
const TruncationMarker = "\n[content truncated: diff exceeds budget]"

// Format produces a review prompt within budget bytes. It never fails:
// the result of the same (diff, meta, budget) triple is byte-identical
// across calls, and len(prompt.Text) <= budget holds for any budget >= 0.
//
// Priority under the budget: (1) title/description header, (2) one
// summary line per file, (3) hunk content in parse order. Hunk content
// is only ever cut at hunk boundaries.
func Format(d model.ParsedDiff, meta model.PRMetadata, budget int) model.ReviewPrompt {
	header := renderHeader(d, meta)
	summaries := renderSummaries(d)
	hunkBlocks := renderHunkBlocks(d)

	full := assemble(header, summaries, hunkBlocks, len(summaries), len(hunkBlocks))
	if len(full) <= budget {
		return model.ReviewPrompt{Text: full}
	}

	reserve := budget - len(TruncationMarker)
	if reserve <= 0 {
		// Not even the marker fits: return as much of the header as
		// the budget allows.
		return model.ReviewPrompt{Text: cutAtRune(header, budget), Truncated: true}
	}

	if len(header) > reserve {
		return model.ReviewPrompt{Text: cutAtRune(header, reserve) + TruncationMarker, Truncated: true}
	}

	// Greedy inclusion in priority order. The first element that does
	// not fit stops its class and everything after it, so the output
	// is always a prefix of the full prompt.
	size := len(header)
	nSummaries := 0
	for _, s := range summaries {
		if size+len(s) > reserve {
			break
		}
		size += len(s)
		nSummaries++
	}

	nHunks := 0
	if nSummaries == len(summaries) {
		for _, b := range hunkBlocks {
			if size+len(b.text) > reserve {
				break
			}
			size += len(b.text)
			nHunks++
		}
	}

	text := assemble(header, summaries, hunkBlocks, nSummaries, nHunks) + TruncationMarker
	return model.ReviewPrompt{Text: text, Truncated: true}
}

// hunkBlock is one includable unit of diff content: a file sub-header
// fused with a single whole hunk, so cutting between blocks never
// splits a hunk.
type hunkBlock struct {
	text string
}

func assemble(header string, summaries []string, blocks []hunkBlock, nSummaries, nHunks int) string {
	var b strings.Builder
	b.WriteString(header)
	for _, s := range summaries[:nSummaries] {
		b.WriteString(s)
	}
	for _, blk := range blocks[:nHunks] {
		b.WriteString(blk.text)
	}
	return b.String()
}

func renderHeader(d model.ParsedDiff, meta model.PRMetadata) string {
	var b strings.Builder

	b.WriteString("# Code Review Request\n\n")
	b.WriteString("## Pull Request\n")
	fmt.Fprintf(&b, "Repository: %s\n", meta.FullName())
	fmt.Fprintf(&b, "Title: %s\n", meta.Title)

	desc := meta.Description
	if desc == "" {
		desc = "No description provided"
	}
	fmt.Fprintf(&b, "Description: %s\n", desc)

	additions, deletions := d.TotalChanges()
	b.WriteString("\n## Change Summary\n")
	fmt.Fprintf(&b, "Files changed: %d (+%d / -%d)\n", len(d.Files), additions, deletions)
	if exts := diff.FileExtensions(d); len(exts) > 0 {
		fmt.Fprintf(&b, "Languages: %s\n", strings.Join(exts, ", "))
	}

	return b.String()
}

func renderSummaries(d model.ParsedDiff) []string {
	if len(d.Files) == 0 {
		return nil
	}

	lines := make([]string, 0, len(d.Files)+1)
	lines = append(lines, "\n## Files\n")
	for _, f := range d.Files {
		var b strings.Builder
		fmt.Fprintf(&b, "- %s (%s", f.Path, f.Kind)
		if f.Kind == model.ChangeRenamed {
			fmt.Fprintf(&b, " from %s", f.OldPath)
		}
		if f.Binary {
			b.WriteString(", binary")
		}
		fmt.Fprintf(&b, ", +%d/-%d)\n", f.Additions, f.Deletions)
		lines = append(lines, b.String())
	}
	return lines
}

func renderHunkBlocks(d model.ParsedDiff) []hunkBlock {
	var blocks []hunkBlock
	first := true

	for _, f := range d.Files {
		if len(f.Hunks) == 0 {
			continue
		}

		prefix := ""
		if first {
			prefix = "\n## Diff\n"
			first = false
		}
		prefix += fmt.Sprintf("\n### %s\n", f.Path)

		for _, h := range f.Hunks {
			blocks = append(blocks, hunkBlock{text: prefix + renderHunk(h)})
			prefix = ""
		}
	}
	return blocks
}

func renderHunk(h model.Hunk) string {
	var b strings.Builder

	fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
	if h.Section != "" {
		b.WriteString(" " + h.Section)
	}
	b.WriteString("\n")

	for _, l := range h.Lines {
		switch l.Kind {
		case model.LineAdded:
			b.WriteString("+")
		case model.LineRemoved:
			b.WriteString("-")
		default:
			b.WriteString(" ")
		}
		b.WriteString(l.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// cutAtRune truncates s to at most n bytes without splitting a rune
func cutAtRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
