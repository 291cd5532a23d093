package verify

import (
	"context"
	"os"

	"github.com/zricethezav/gitleaks/v8/detect"
)

// secretsCheck scans rendered output with the default gitleaks ruleset.
// Nothing secret belongs in a generated build definition; anything the
// detector flags came in through the template or the buildspec and would
// ship in a public repository.
type secretsCheck struct {
	detector *detect.Detector
}

func newSecretsCheck() (*secretsCheck, error) {
	d, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, err
	}
	return &secretsCheck{detector: d}, nil
}

func (c *secretsCheck) Name() string { return "secrets" }

func (c *secretsCheck) Inspect(_ context.Context, file FileInfo) ([]Finding, error) {
	data, err := os.ReadFile(file.AbsPath)
	if err != nil {
		return nil, err
	}

	hits := c.detector.DetectBytes(data)
	if len(hits) == 0 {
		return nil, nil
	}

	findings := make([]Finding, 0, len(hits))
	for _, h := range hits {
		findings = append(findings, Finding{
			File:     file.Path,
			Line:     h.StartLine + 1, // gitleaks is 0-indexed
			Check:    c.Name(),
			Severity: SeverityCritical,
			Message:  h.Description + " (" + h.RuleID + ")",
		})
	}
	return findings, nil
}
