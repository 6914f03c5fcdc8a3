package language

import (
	"fmt"

	"github.com/platinummonkey/langmgr/pkg/g2p"
)

// Lookup finds a G2P factory by id. *g2p.Manager satisfies it.
type Lookup interface {
	Factory(id string) (g2p.Factory, bool)
}

// Resolve returns the factory selected by d. An empty selection or an id
// missing from lookup yields ErrNoConverter.
func Resolve(lookup Lookup, d *Descriptor) (g2p.Factory, error) {
	id := d.SelectedG2P()
	if id == "" {
		return nil, fmt.Errorf("%w: language %s has no engine selected", ErrNoConverter, d.ID())
	}

	f, ok := lookup.Factory(id)
	if !ok {
		return nil, fmt.Errorf("%w: language %s selects unregistered engine %s", ErrNoConverter, d.ID(), id)
	}

	return f, nil
}
