package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/collie-dev/collie/pkg/domain/model"
)

// sortFindings orders findings by severity (high first), then file
// path, then line. The order is stable so rendering is deterministic.
func sortFindings(findings []model.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if ri, rj := findings[i].Severity.Rank(), findings[j].Severity.Rank(); ri != rj {
			return ri > rj
		}
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		return findings[i].Line < findings[j].Line
	})
}

// renderComment formats a review result as the markdown body of a PR
// review. Rendering is pure and deterministic: the same result and
// metadata always yield the same body. The trailing HTML comment is an
// idempotency marker so repeated posts for the same PR/commit pair are
// identifiable; webhook redelivery may legitimately invoke this twice.
func renderComment(pr *model.PRMetadata, result *model.ReviewResult) string {
	var sb strings.Builder

	sb.WriteString("## 🐕 Automated Code Review\n\n")
	fmt.Fprintf(&sb, "**Risk**: %s", result.Risk)
	if result.RequiresChanges {
		sb.WriteString(" — changes requested")
	}
	sb.WriteString("\n\n")
	sb.WriteString(result.Summary)
	sb.WriteString("\n")

	if len(result.Findings) > 0 {
		sb.WriteString("\n### Findings\n")
		for _, sev := range []model.Severity{model.SeverityHigh, model.SeverityMedium, model.SeverityLow} {
			group := filterBySeverity(result.Findings, sev)
			if len(group) == 0 {
				continue
			}
			fmt.Fprintf(&sb, "\n#### %s\n", severityHeading(sev))
			for _, f := range group {
				sb.WriteString("- ")
				if f.File != "" {
					if f.Line > 0 {
						fmt.Fprintf(&sb, "`%s:%d` — ", f.File, f.Line)
					} else {
						fmt.Fprintf(&sb, "`%s` — ", f.File)
					}
				}
				sb.WriteString(f.Message)
				sb.WriteString("\n")
			}
		}
	}

	if len(result.Strengths) > 0 {
		sb.WriteString("\n### Strengths\n")
		for _, s := range result.Strengths {
			fmt.Fprintf(&sb, "- %s\n", s)
		}
	}

	if len(result.Risks) > 0 {
		sb.WriteString("\n### Risks\n")
		for _, r := range result.Risks {
			fmt.Fprintf(&sb, "- %s\n", r)
		}
	}

	sb.WriteString("\n---\n")
	sb.WriteString("🤖 Reviewed by collie\n")
	fmt.Fprintf(&sb, "<!-- collie:review %s#%d@%s -->\n", pr.FullName(), pr.Number, pr.HeadSHA)

	return sb.String()
}

func severityHeading(sev model.Severity) string {
	switch sev {
	case model.SeverityHigh:
		return "High"
	case model.SeverityMedium:
		return "Medium"
	default:
		return "Low"
	}
}

func filterBySeverity(findings []model.Finding, sev model.Severity) []model.Finding {
	var out []model.Finding
	for _, f := range findings {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}
