// Package output renders human-facing progress for the CLI: framed
// sections, status icons, and the verification report. Callers hand in
// the writer; the commands pass stderr, because stdout is reserved for
// the generated manifest.
package output

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/streamcast/docker-streamcast/src/verify"
)

// Colors for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func isTerminal() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// UseColor returns true if colored output should be used.
// Respects NO_COLOR env, TERM=dumb, and terminal detection on stderr.
func UseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal() || IsCI()
}

// VerifyTable writes a per-check stats table inside a section.
func VerifyTable(sec *Section, stats []verify.CheckStats) {
	sec.Row("%-12s%6s  %s", "check", "files", "findings")
	for _, s := range stats {
		sec.Row("%-12s%5d   %5d", s.Name, s.Files, s.Findings)
	}
}

// SectionFindings renders findings grouped by file inside a section.
// Files are sorted lexicographically; findings within each file by line,
// check, message. Rows truncate at max (<=0 means no cap); the summary
// line still counts everything.
func SectionFindings(sec *Section, findings []verify.Finding, max int, color bool) {
	if len(findings) == 0 {
		return
	}

	byFile := map[string][]verify.Finding{}
	for _, f := range findings {
		byFile[f.File] = append(byFile[f.File], f)
	}

	files := make([]string, 0, len(byFile))
	for file := range byFile {
		files = append(files, file)
	}
	sort.Strings(files)

	sec.Row("")

	emitted := 0
	for _, file := range files {
		ff := byFile[file]
		sort.Slice(ff, func(i, j int) bool {
			a, b := ff[i], ff[j]
			if a.Line != b.Line {
				return a.Line < b.Line
			}
			if a.Check != b.Check {
				return a.Check < b.Check
			}
			return a.Message < b.Message
		})

		if color {
			sec.Row("%s", colorBold+file+colorReset)
		} else {
			sec.Row("%s", file)
		}

		for _, f := range ff {
			if max > 0 && emitted >= max {
				sec.Row("%s", Dimmed(fmt.Sprintf("  … and %d more", len(findings)-emitted), color))
				sec.Row("")
				return
			}
			loc := "-"
			if f.Line > 0 {
				loc = fmt.Sprintf("%d", f.Line)
			}
			sec.Row("  %-6s %-4s  %-10s %s", loc, severityTag(f.Severity, color), f.Check, f.Message)
			emitted++
		}

		sec.Row("")
	}
}

// FindingsSummaryLine returns a one-line findings summary, optionally colored.
func FindingsSummaryLine(findings []verify.Finding, filesScanned int, color bool) string {
	var critical, warning, info int
	for _, f := range findings {
		switch f.Severity {
		case verify.SeverityCritical:
			critical++
		case verify.SeverityWarning:
			warning++
		default:
			info++
		}
	}

	parts := []string{}
	if critical > 0 {
		s := fmt.Sprintf("%d critical", critical)
		if color {
			s = colorRed + s + colorReset
		}
		parts = append(parts, s)
	}
	if warning > 0 {
		s := fmt.Sprintf("%d warning", warning)
		if color {
			s = colorYellow + s + colorReset
		}
		parts = append(parts, s)
	}
	if info > 0 {
		parts = append(parts, fmt.Sprintf("%d info", info))
	}

	summary := "no findings"
	if len(parts) > 0 {
		summary = strings.Join(parts, ", ")
	}

	totalStr := fmt.Sprintf("%d", len(findings))
	if color {
		totalStr = colorBold + totalStr + colorReset
	}
	return fmt.Sprintf("%s findings in %d files: %s", totalStr, filesScanned, summary)
}

// severityTag returns a short severity label, optionally colored.
func severityTag(s verify.Severity, color bool) string {
	switch s {
	case verify.SeverityCritical:
		if color {
			return colorRed + "CRIT" + colorReset
		}
		return "CRIT"
	case verify.SeverityWarning:
		if color {
			return colorYellow + "WARN" + colorReset
		}
		return "WARN"
	case verify.SeverityInfo:
		if color {
			return colorGray + "INFO" + colorReset
		}
		return "INFO"
	default:
		return s.String()
	}
}

// RowStatus writes a row with label, detail, and a status icon.
func RowStatus(sec *Section, label, detail, status string, color bool) {
	icon := StatusIcon(status, color)
	if detail != "" {
		sec.Row("%s %s %s", label, Dimmed(detail, color), icon)
	} else {
		sec.Row("%s %s", label, icon)
	}
}
