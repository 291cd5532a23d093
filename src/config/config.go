package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".docker-streamcast.yml"

// Config is the top-level docker-streamcast configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Images   ImagesConfig   `yaml:"images"`
	Manifest ManifestConfig `yaml:"manifest"`
	Output   OutputConfig   `yaml:"output"`
	Verify   VerifyConfig   `yaml:"verify"`
	Registry RegistryConfig `yaml:"registry"`
}

// SourceConfig describes the upstream repository whose release tags drive
// image generation.
type SourceConfig struct {
	// Repo is the clone/ls-remote URL of the upstream project.
	Repo string `yaml:"repo"`
	// RequiredFile must exist in a tag's tree for the tag to qualify.
	RequiredFile string `yaml:"required_file"`
	// MinVersion is the lowest release that still gets an image.
	MinVersion VersionString `yaml:"min_version"`
	// MaxVersions caps how many releases are generated, newest first.
	MaxVersions int `yaml:"max_versions"`
	// Skip lists regex patterns for releases to exclude (known-broken builds).
	Skip []string `yaml:"skip"`
}

// ImagesConfig describes the repository holding the generated Dockerfiles,
// referenced by the manifest header.
type ImagesConfig struct {
	Repo    string `yaml:"repo"`
	Branch  string `yaml:"branch"`
	Builder string `yaml:"builder"`
}

// ManifestConfig holds the fixed fields emitted into every manifest.
type ManifestConfig struct {
	Maintainers   []string `yaml:"maintainers"`
	Architectures []string `yaml:"architectures"`
}

// OutputConfig controls where rendered build definitions are written.
type OutputConfig struct {
	Dir        string `yaml:"dir"`
	Dockerfile string `yaml:"dockerfile"`
}

// VerifyConfig controls the post-render check gate.
type VerifyConfig struct {
	Enabled bool `yaml:"enabled"`
	// Concurrency bounds parallel checks; 0 means one per CPU.
	Concurrency int `yaml:"concurrency"`
	// MaxFindings caps how many finding rows the report prints.
	MaxFindings int `yaml:"max_findings"`
}

// RegistryConfig names the published image repository on Docker Hub,
// used by the tags command to annotate already-published versions.
type RegistryConfig struct {
	Repository string `yaml:"repository"`
}

// Load reads configuration from a YAML file.
// If path is empty, it tries the default file.
// Returns sensible defaults if the file doesn't exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaults(), nil
		}
		return nil, err
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Source:   DefaultSourceConfig(),
		Images:   DefaultImagesConfig(),
		Manifest: DefaultManifestConfig(),
		Output:   DefaultOutputConfig(),
		Verify:   DefaultVerifyConfig(),
		Registry: DefaultRegistryConfig(),
	}
}

// DefaultSourceConfig returns the upstream defaults for the Streamcast project.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		Repo:         "https://github.com/streamcast/streamcast.git",
		RequiredFile: "CMakeLists.txt",
		MinVersion:   "3.9.2",
		MaxVersions:  10,
	}
}

// DefaultImagesConfig points the manifest header at this repository.
func DefaultImagesConfig() ImagesConfig {
	return ImagesConfig{
		Repo:    "https://github.com/streamcast/docker-streamcast.git",
		Branch:  "master",
		Builder: "buildkit",
	}
}

// DefaultManifestConfig returns the fixed manifest fields.
func DefaultManifestConfig() ManifestConfig {
	return ManifestConfig{
		Maintainers: []string{
			"Avery Whitmore <avery@streamcast.dev> (@awhitmore)",
			"Dana Kovac <dana@streamcast.dev> (@dkovac)",
		},
		Architectures: []string{"amd64", "arm32v7", "arm64v8"},
	}
}

// DefaultOutputConfig writes version directories into the working directory.
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Dir:        ".",
		Dockerfile: "Dockerfile",
	}
}

// DefaultVerifyConfig enables the check gate with one worker per CPU.
func DefaultVerifyConfig() VerifyConfig {
	return VerifyConfig{
		Enabled:     true,
		MaxFindings: 20,
	}
}

// DefaultRegistryConfig names the published Docker Hub repository.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		Repository: "streamcast/streamcast",
	}
}

// VersionString is a version number that accepts both quoted and bare YAML
// scalars:
//
//	min_version: "3.9.2"   → "3.9.2"
//	min_version: 3.9       → "3.9" (YAML would otherwise hand us a float)
type VersionString string

// UnmarshalYAML implements custom unmarshaling so bare numeric scalars keep
// their written spelling instead of round-tripping through float64.
func (v *VersionString) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("min_version: expected scalar, got YAML kind %d", value.Kind)
	}
	*v = VersionString(value.Value)
	return nil
}

func (v VersionString) String() string {
	return string(v)
}
