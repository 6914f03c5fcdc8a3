package engines

import (
	"context"
	"strings"

	"github.com/platinummonkey/langmgr/pkg/g2p"
)

// PassthroughID is the registry id of the built-in passthrough engine
const PassthroughID = "passthrough"

// Passthrough returns every token unchanged as its syllable
type Passthrough struct {
	info g2p.Info
}

// NewPassthrough creates a passthrough engine. An empty info.ID defaults to PassthroughID.
func NewPassthrough(info g2p.Info) *Passthrough {
	if info.ID == "" {
		info.ID = PassthroughID
	}
	if info.Name == "" {
		info.Name = "Passthrough"
	}
	return &Passthrough{info: info}
}

func (p *Passthrough) ID() string { return p.info.ID }

func (p *Passthrough) Info() g2p.Info { return p.info }

// Convert echoes the input
func (p *Passthrough) Convert(ctx context.Context, input []string, config g2p.Config) ([]g2p.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lower := config.Bool("lowercase", false)
	results := make([]g2p.Result, len(input))
	for i, token := range input {
		syllable := token
		if lower {
			syllable = strings.ToLower(token)
		}
		results[i] = g2p.Result{
			Lyric:      token,
			Syllable:   syllable,
			Candidates: []string{syllable},
		}
	}
	return results, nil
}

// Builtins returns a setup hook registering the engines that need no data files
func Builtins() g2p.SetupFunc {
	return func(r g2p.Registrar) error {
		return r.AddFactory(NewPassthrough(g2p.Info{
			Author:      "langmgr",
			Description: "Returns each token as its own syllable",
			Category:    "builtin",
		}))
	}
}
