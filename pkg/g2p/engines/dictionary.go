package engines

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/platinummonkey/langmgr/pkg/g2p"
	"gopkg.in/yaml.v3"
)

// ErrUnloaded is returned by Convert after the engine has been unloaded
var ErrUnloaded = errors.New("dictionary unloaded")

const (
	fallbackNone  = "none"
	fallbackLyric = "lyric"
)

// Lexicon maps a word to its pronunciations, preferred first
type Lexicon map[string][]string

// LoadLexicon reads a YAML lexicon file of the form `word: [pron, ...]`
func LoadLexicon(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}

	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	if len(lex) == 0 {
		return nil, fmt.Errorf("lexicon %s is empty", path)
	}

	return lex, nil
}

// Dictionary converts tokens by lexicon lookup
type Dictionary struct {
	info g2p.Info

	mu     sync.RWMutex
	exact  Lexicon
	folded Lexicon
}

// NewDictionary creates a dictionary engine over lexicon
func NewDictionary(info g2p.Info, lexicon Lexicon) *Dictionary {
	exact := make(Lexicon, len(lexicon))
	folded := make(Lexicon, len(lexicon))
	for word, prons := range lexicon {
		exact[word] = append([]string(nil), prons...)
		key := strings.ToLower(word)
		folded[key] = appendUnique(folded[key], prons...)
	}

	return &Dictionary{
		info:   info,
		exact:  exact,
		folded: folded,
	}
}

func (d *Dictionary) ID() string { return d.info.ID }

func (d *Dictionary) Info() g2p.Info { return d.info }

// Size returns the number of words in the lexicon
func (d *Dictionary) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.exact)
}

// Convert looks each token up. Unknown tokens yield Error=true.
func (d *Dictionary) Convert(ctx context.Context, input []string, config g2p.Config) ([]g2p.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fallback := config.String("fallback", fallbackNone)
	if fallback != fallbackNone && fallback != fallbackLyric {
		return nil, fmt.Errorf("unsupported fallback %q (expected %s or %s)", fallback, fallbackNone, fallbackLyric)
	}
	lower := config.Bool("lowercase", true)

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.exact == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnloaded, d.info.ID)
	}

	lex := d.exact
	if lower {
		lex = d.folded
	}

	results := make([]g2p.Result, len(input))
	for i, token := range input {
		key := token
		if lower {
			key = strings.ToLower(token)
		}

		prons, ok := lex[key]
		if !ok || len(prons) == 0 {
			res := g2p.Result{Lyric: token, Error: true}
			if fallback == fallbackLyric {
				res.Syllable = token
			}
			results[i] = res
			continue
		}

		results[i] = g2p.Result{
			Lyric:      token,
			Syllable:   prons[0],
			Candidates: append([]string(nil), prons...),
		}
	}

	return results, nil
}

// Unload drops the lexicon
func (d *Dictionary) Unload() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.exact = nil
	d.folded = nil
	return nil
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range dst {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
