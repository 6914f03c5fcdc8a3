package g2p

import (
	"context"
)

// Factory is the capability every G2P engine implements
type Factory interface {
	// ID is the registry key. Must be non-empty and stable.
	ID() string
	Convert(ctx context.Context, input []string, config Config) ([]Result, error)
}

// Unloader is implemented by factories that hold resources released when the
// manager drops them.
type Unloader interface {
	Unload() error
}

// Describer is implemented by factories that expose display metadata
type Describer interface {
	Info() Info
}

// Info holds display metadata for an engine
type Info struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version,omitempty" json:"version,omitempty"`
	Author      string `yaml:"author,omitempty" json:"author,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Category    string `yaml:"category,omitempty" json:"category,omitempty"`
}

// InfoOf returns the factory's Info, or a minimal one built from its id.
func InfoOf(f Factory) Info {
	if d, ok := f.(Describer); ok {
		info := d.Info()
		if info.ID == "" {
			info.ID = f.ID()
		}
		return info
	}
	return Info{ID: f.ID(), Name: f.ID()}
}

// Result is the conversion outcome for one input token
type Result struct {
	Lyric      string   `json:"lyric"`                // Input token
	Syllable   string   `json:"syllable"`             // Selected pronunciation
	Candidates []string `json:"candidates,omitempty"` // All known pronunciations
	Error      bool     `json:"error"`                // Token could not be converted
}

// Config is the engine-specific configuration payload. Its keys are only
// interpreted by the engine that receives it.
type Config map[string]interface{}

// Clone returns a deep copy of the payload. Nested maps and slices are
// copied; other values are shared.
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case Config:
		return t.Clone()
	case map[string]interface{}:
		return map[string]interface{}(Config(t).Clone())
	case []interface{}:
		out := make([]interface{}, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// Bool reads a boolean key, returning def when the key is absent or not a bool.
func (c Config) Bool(key string, def bool) bool {
	if v, ok := c[key].(bool); ok {
		return v
	}
	return def
}

// String reads a string key, returning def when the key is absent or not a string.
func (c Config) String(key string, def string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return def
}
