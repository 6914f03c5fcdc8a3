package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/platinummonkey/langmgr/pkg/g2p"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the file name looked up in each engine directory
const ManifestFile = "engine.yaml"

var semverRegex = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)(-[a-zA-Z0-9.-]+)?(\+[a-zA-Z0-9.-]+)?$`)

// Kind selects the builder used for an engine
type Kind string

const (
	KindDictionary  Kind = "dictionary"
	KindPassthrough Kind = "passthrough"
)

// Manifest describes a declarative G2P engine
type Manifest struct {
	ID          string            `yaml:"id"`          // Registry id (e.g., "ja-kana")
	Name        string            `yaml:"name"`        // Display name
	Version     string            `yaml:"version"`     // Semver
	APIVersion  string            `yaml:"api_version"` // Engine API version
	Description string            `yaml:"description"`
	Author      string            `yaml:"author"`
	Category    string            `yaml:"category"`
	Kind        Kind              `yaml:"kind"`
	Lexicon     string            `yaml:"lexicon,omitempty"` // Relative to the engine directory
	Metadata    map[string]string `yaml:"metadata,omitempty"`
}

// Info converts the manifest to registry display metadata
func (m *Manifest) Info() g2p.Info {
	return g2p.Info{
		ID:          m.ID,
		Name:        m.Name,
		Version:     m.Version,
		Author:      m.Author,
		Description: m.Description,
		Category:    m.Category,
	}
}

// ValidationError represents a manifest validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) String() string {
	return e.Field + ": " + e.Message
}

// LoadManifest loads and parses an engine manifest from a file
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	return &manifest, nil
}

// LoadManifestFromDir loads the engine.yaml of an engine directory
func LoadManifestFromDir(dir string) (*Manifest, error) {
	return LoadManifest(filepath.Join(dir, ManifestFile))
}

// SaveManifest saves an engine manifest to a file
func SaveManifest(manifest *Manifest, path string) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

// ValidateManifest performs basic validation on an engine manifest
func ValidateManifest(manifest *Manifest) []ValidationError {
	var errors []ValidationError

	if manifest.ID == "" {
		errors = append(errors, ValidationError{Field: "id", Message: "Engine ID is required"})
	}

	if manifest.Name == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "Engine name is required"})
	}

	if manifest.Version == "" {
		errors = append(errors, ValidationError{Field: "version", Message: "Version is required"})
	} else if !isValidSemver(manifest.Version) {
		errors = append(errors, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("Invalid semver format: %s", manifest.Version),
		})
	}

	if manifest.APIVersion == "" {
		errors = append(errors, ValidationError{Field: "api_version", Message: "API version is required"})
	} else if !isValidSemver(manifest.APIVersion) {
		errors = append(errors, ValidationError{
			Field:   "api_version",
			Message: fmt.Sprintf("Invalid semver format: %s", manifest.APIVersion),
		})
	}

	// Known kinds depend on the loader's registered builders
	if manifest.Kind == "" {
		errors = append(errors, ValidationError{Field: "kind", Message: "Engine kind is required"})
	}

	return errors
}

// isValidSemver checks if a version string follows semantic versioning
func isValidSemver(version string) bool {
	return semverRegex.MatchString(version)
}

// IsCompatibleAPIVersion reports whether an engine's API version shares the
// loader's major version
func IsCompatibleAPIVersion(engineAPIVersion, loaderAPIVersion string) bool {
	return extractMajorVersion(engineAPIVersion) == extractMajorVersion(loaderAPIVersion)
}

func extractMajorVersion(version string) string {
	matches := semverRegex.FindStringSubmatch(version)
	if len(matches) > 1 {
		return matches[1]
	}
	return "0"
}
