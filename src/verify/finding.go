package verify

import "fmt"

// Severity indicates how serious a finding is.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Finding represents a single verification result.
type Finding struct {
	File     string
	Line     int
	Check    string
	Severity Severity
	Message  string
}

// FileInfo identifies one generated build definition under inspection.
type FileInfo struct {
	Version string // version directory name
	Path    string // relative path from the output dir
	AbsPath string // absolute path on disk
}

// HasCritical reports whether any finding is critical.
func HasCritical(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
