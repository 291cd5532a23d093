package verify

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/streamcast/docker-streamcast/src/render"
)

// structureCheck validates a rendered build definition against the
// buildspec constants: two fixed stages, the expected build arguments, the
// exposed port set, and the runtime directives every image must carry.
type structureCheck struct {
	spec render.Buildspec
}

func newStructureCheck(spec render.Buildspec) *structureCheck {
	return &structureCheck{spec: spec}
}

func (c *structureCheck) Name() string { return "structure" }

func (c *structureCheck) Inspect(_ context.Context, file FileInfo) ([]Finding, error) {
	data, err := os.ReadFile(file.AbsPath)
	if err != nil {
		return nil, err
	}
	info, err := parseDockerfile(data)
	if err != nil {
		return nil, err
	}

	var findings []Finding
	add := func(sev Severity, line int, msg string) {
		findings = append(findings, Finding{
			File:     file.Path,
			Line:     line,
			Check:    c.Name(),
			Severity: sev,
			Message:  msg,
		})
	}

	base := c.spec.Image.Base + ":" + c.spec.Image.Tag
	if len(info.Stages) != 2 {
		add(SeverityCritical, 0, fmt.Sprintf("expected 2 stages (build, runtime), found %d", len(info.Stages)))
	} else {
		names := [2]string{"build", "runtime"}
		for i, st := range info.Stages {
			if st.Name != names[i] {
				add(SeverityCritical, st.Line, fmt.Sprintf("stage %d must be named %q, found %q", i+1, names[i], st.Name))
			}
			if st.Base != base {
				add(SeverityWarning, st.Line, fmt.Sprintf("stage %q builds from %q, buildspec says %q", st.Name, st.Base, base))
			}
		}
	}

	if got, ok := info.Args["STREAMCAST_VERSION"]; !ok {
		add(SeverityCritical, 0, "missing ARG STREAMCAST_VERSION")
	} else if got != file.Version {
		add(SeverityCritical, 0, fmt.Sprintf("ARG STREAMCAST_VERSION defaults to %q, directory says %q", got, file.Version))
	}
	for _, name := range []string{"DEBUG_LEVEL", "TARGETARCH", "RELEASE_LABEL"} {
		if _, ok := info.Args[name]; !ok {
			add(SeverityCritical, 0, "missing ARG "+name)
		}
	}

	expected := make(map[string]bool, len(c.spec.Ports.TCP)+len(c.spec.Ports.UDP))
	for _, p := range c.spec.Ports.TCP {
		expected[strconv.Itoa(p)] = true
	}
	for _, p := range c.spec.Ports.UDP {
		expected[strconv.Itoa(p)+"/udp"] = true
	}
	exposed := make(map[string]bool, len(info.Expose))
	for _, p := range info.Expose {
		exposed[p] = true
	}
	if missing := diffKeys(expected, exposed); len(missing) > 0 {
		add(SeverityWarning, 0, "EXPOSE is missing "+strings.Join(missing, ", "))
	}
	if extra := diffKeys(exposed, expected); len(extra) > 0 {
		add(SeverityWarning, 0, "EXPOSE lists unexpected "+strings.Join(extra, ", "))
	}

	if !info.Healthcheck {
		add(SeverityWarning, 0, "missing HEALTHCHECK")
	}
	if !info.Entrypoint {
		add(SeverityCritical, 0, "missing ENTRYPOINT")
	}

	return findings, nil
}

// diffKeys returns the sorted keys of a that are absent from b.
func diffKeys(a, b map[string]bool) []string {
	var out []string
	for k := range a {
		if !b[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
