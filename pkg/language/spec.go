package language

import (
	"fmt"
	"os"

	"github.com/platinummonkey/langmgr/pkg/g2p"
	"gopkg.in/yaml.v3"
)

// Spec is the serializable form of a Descriptor
type Spec struct {
	ID              string     `yaml:"id" json:"id"`
	Enabled         *bool      `yaml:"enabled,omitempty" json:"enabled,omitempty"` // Defaults to true
	DiscardResult   bool       `yaml:"discard_result,omitempty" json:"discard_result,omitempty"`
	Category        string     `yaml:"category,omitempty" json:"category,omitempty"`
	Description     string     `yaml:"description,omitempty" json:"description,omitempty"`
	DisplayName     string     `yaml:"display_name,omitempty" json:"display_name,omitempty"`
	Author          string     `yaml:"author,omitempty" json:"author,omitempty"`
	DisplayCategory string     `yaml:"display_category,omitempty" json:"display_category,omitempty"`
	SelectedG2P     string     `yaml:"selected_g2p,omitempty" json:"selected_g2p,omitempty"`
	G2PConfig       g2p.Config `yaml:"g2p_config,omitempty" json:"g2p_config,omitempty"`
}

// File is the on-disk layout of a languages file
type File struct {
	Languages []Spec `yaml:"languages"`
}

// NewDescriptorFromSpec builds a descriptor from its serialized form
func NewDescriptorFromSpec(s Spec) *Descriptor {
	d := NewDescriptor(s.ID)
	if s.Enabled != nil {
		d.SetEnabled(*s.Enabled)
	}
	d.SetDiscardResult(s.DiscardResult)
	d.SetCategory(s.Category)
	d.SetDescription(s.Description)
	d.SetDisplayName(s.DisplayName)
	d.SetAuthor(s.Author)
	d.SetDisplayCategory(s.DisplayCategory)
	d.SetSelectedG2P(s.SelectedG2P)
	d.SetG2PConfig(s.G2PConfig)
	return d
}

// Spec returns the serializable form of d
func (d *Descriptor) Spec() Spec {
	enabled := d.enabled
	return Spec{
		ID:              d.id,
		Enabled:         &enabled,
		DiscardResult:   d.discardResult,
		Category:        d.category,
		Description:     d.description,
		DisplayName:     d.displayName,
		Author:          d.author,
		DisplayCategory: d.displayCategory,
		SelectedG2P:     d.selectedG2P,
		G2PConfig:       d.g2pConfig.Clone(),
	}
}

// LoadDescriptors reads a languages file. Empty and duplicate ids are rejected.
func LoadDescriptors(path string) ([]*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read languages file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse languages file: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Languages))
	descriptors := make([]*Descriptor, 0, len(file.Languages))
	for i, s := range file.Languages {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: languages[%d].id empty", ErrInvalidDescriptor, i)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate language id %s", ErrInvalidDescriptor, s.ID)
		}
		seen[s.ID] = struct{}{}
		descriptors = append(descriptors, NewDescriptorFromSpec(s))
	}

	return descriptors, nil
}

// SaveDescriptors writes descriptors to a languages file
func SaveDescriptors(path string, descriptors []*Descriptor) error {
	file := File{Languages: make([]Spec, 0, len(descriptors))}
	for _, d := range descriptors {
		file.Languages = append(file.Languages, d.Spec())
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to marshal languages: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write languages file: %w", err)
	}

	return nil
}

// Find returns the descriptor with id
func Find(descriptors []*Descriptor, id string) (*Descriptor, bool) {
	for _, d := range descriptors {
		if d.ID() == id {
			return d, true
		}
	}
	return nil, false
}
