package render

import (
	_ "embed"
	"fmt"

	toml "github.com/pelletier/go-toml/v2"
)

//go:embed buildspec.toml
var buildspecTOML []byte

// Buildspec is the version-independent half of a generated Dockerfile,
// parsed from the embedded buildspec.toml.
type Buildspec struct {
	Image       ImageSpec       `toml:"image"`
	Source      SourceSpec      `toml:"source"`
	Mbedtls     MbedtlsSpec     `toml:"mbedtls"`
	Packages    PackagesSpec    `toml:"packages"`
	Build       BuildParams     `toml:"build"`
	Ports       PortsSpec       `toml:"ports"`
	Runtime     RuntimeSpec     `toml:"runtime"`
	Healthcheck HealthcheckSpec `toml:"healthcheck"`
}

// ImageSpec names the base image both stages start from.
type ImageSpec struct {
	Base   string `toml:"base"`
	Tag    string `toml:"tag"`
	Author string `toml:"author"`
	Prefix string `toml:"prefix"`
}

// SourceSpec locates the upstream release archives and the vendored patch.
type SourceSpec struct {
	Archive  string `toml:"archive"`
	PatchURL string `toml:"patch_url"`
}

// MbedtlsSpec pins the TLS library compiled into the build stage.
type MbedtlsSpec struct {
	Version string `toml:"version"`
	Archive string `toml:"archive"`
}

// PackagesSpec lists the apk packages per stage.
type PackagesSpec struct {
	Build   []string `toml:"build"`
	Runtime []string `toml:"runtime"`
}

// BuildParams holds defaults for the cmake build arguments.
type BuildParams struct {
	DebugLevel int `toml:"debug_level"`
}

// PortsSpec lists the exposed ports. UDP entries render with a /udp suffix.
type PortsSpec struct {
	TCP []int `toml:"tcp"`
	UDP []int `toml:"udp"`
}

// RuntimeSpec fixes the container process.
type RuntimeSpec struct {
	Entrypoint []string `toml:"entrypoint"`
	Command    []string `toml:"command"`
}

// HealthcheckSpec fixes the container health probe.
type HealthcheckSpec struct {
	Interval    string `toml:"interval"`
	Timeout     string `toml:"timeout"`
	StartPeriod string `toml:"start_period"`
	Command     string `toml:"command"`
}

// LoadBuildspec parses the embedded build constants.
func LoadBuildspec() (Buildspec, error) {
	var spec Buildspec
	if err := toml.Unmarshal(buildspecTOML, &spec); err != nil {
		return Buildspec{}, fmt.Errorf("parsing embedded buildspec: %w", err)
	}
	return spec, nil
}
