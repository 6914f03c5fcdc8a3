package language

import (
	"github.com/platinummonkey/langmgr/pkg/g2p"
)

// Descriptor holds the identity and G2P configuration of one language.
// It is not safe for concurrent mutation; owners that share descriptors
// across goroutines synchronize access themselves.
type Descriptor struct {
	id string

	enabled       bool
	discardResult bool

	category        string
	description     string
	displayName     string
	author          string
	displayCategory string

	selectedG2P string
	g2pConfig   g2p.Config
}

// NewDescriptor creates an enabled descriptor that keeps its results
func NewDescriptor(id string) *Descriptor {
	return &Descriptor{
		id:      id,
		enabled: true,
	}
}

func (d *Descriptor) ID() string { return d.id }
func (d *Descriptor) SetID(id string) { d.id = id }

// Enabled reports whether the owner should process this language
func (d *Descriptor) Enabled() bool { return d.enabled }
func (d *Descriptor) SetEnabled(enabled bool) { d.enabled = enabled }

// DiscardResult reports whether conversion output is computed but dropped
func (d *Descriptor) DiscardResult() bool { return d.discardResult }
func (d *Descriptor) SetDiscardResult(discard bool) { d.discardResult = discard }

func (d *Descriptor) Category() string { return d.category }
func (d *Descriptor) SetCategory(category string) { d.category = category }

func (d *Descriptor) Description() string { return d.description }
func (d *Descriptor) SetDescription(description string) { d.description = description }

func (d *Descriptor) DisplayName() string { return d.displayName }
func (d *Descriptor) SetDisplayName(name string) { d.displayName = name }

func (d *Descriptor) Author() string { return d.author }
func (d *Descriptor) SetAuthor(author string) { d.author = author }

func (d *Descriptor) DisplayCategory() string { return d.displayCategory }
func (d *Descriptor) SetDisplayCategory(displayCategory string) { d.displayCategory = displayCategory }

// SelectedG2P is the id of the engine this language converts with. It may be
// empty or name an engine that is not registered.
func (d *Descriptor) SelectedG2P() string { return d.selectedG2P }

// SetSelectedG2P selects an engine by id without checking that it exists
func (d *Descriptor) SetSelectedG2P(id string) { d.selectedG2P = id }

// G2PConfig returns the payload handed to the selected engine
func (d *Descriptor) G2PConfig() g2p.Config { return d.g2pConfig }

// SetG2PConfig replaces the payload with a deep copy of config
func (d *Descriptor) SetG2PConfig(config g2p.Config) { d.g2pConfig = config.Clone() }
