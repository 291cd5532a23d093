package verify

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

var (
	// FROM [--platform=...] <image> [AS <name>]
	fromRe = regexp.MustCompile(`(?i)^FROM\s+(?:--platform=\S+\s+)?(\S+)(?:\s+AS\s+(\S+))?`)
	// ARG <name>[=<default>]
	argRe = regexp.MustCompile(`(?i)^ARG\s+([A-Za-z_][A-Za-z0-9_]*)(?:=(.*))?$`)
	// EXPOSE <port>[/<proto>] ...
	exposeRe = regexp.MustCompile(`(?i)^EXPOSE\s+(.+)`)
	// HEALTHCHECK ...
	healthcheckRe = regexp.MustCompile(`(?i)^HEALTHCHECK\s+(.+)`)
	// ENTRYPOINT ...
	entrypointRe = regexp.MustCompile(`(?i)^ENTRYPOINT\s+(.+)`)
)

// dockerfileInfo is what the structure check needs from a build
// definition: stages, build arguments with their defaults, exposed ports,
// and whether the runtime directives are present.
type dockerfileInfo struct {
	Stages      []stage
	Args        map[string]string // name -> default, "" when none
	Expose      []string
	Healthcheck bool
	Entrypoint  bool
}

// stage describes a single FROM instruction.
type stage struct {
	Name string // alias from "AS name", empty if unnamed
	Base string // the FROM image reference
	Line int
}

// parseDockerfile extracts structural info line by line. Regex-based, not
// a full AST; continuation lines of RUN instructions never match any of
// the patterns, so they fall through harmlessly.
func parseDockerfile(data []byte) (*dockerfileInfo, error) {
	info := &dockerfileInfo{Args: map[string]string{}}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if m := fromRe.FindStringSubmatch(line); m != nil {
			info.Stages = append(info.Stages, stage{Name: m[2], Base: m[1], Line: lineNum})
			continue
		}
		if m := argRe.FindStringSubmatch(line); m != nil {
			info.Args[m[1]] = m[2]
			continue
		}
		if m := exposeRe.FindStringSubmatch(line); m != nil {
			info.Expose = append(info.Expose, strings.Fields(m[1])...)
			continue
		}
		if m := healthcheckRe.FindStringSubmatch(line); m != nil {
			if !strings.EqualFold(strings.TrimSpace(m[1]), "NONE") {
				info.Healthcheck = true
			}
			continue
		}
		if entrypointRe.MatchString(line) {
			info.Entrypoint = true
			continue
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return info, nil
}
