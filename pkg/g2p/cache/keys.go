package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/platinummonkey/langmgr/pkg/g2p"
)

const keyPrefix = "g2p"

// Key identifies one cached conversion
type Key struct {
	EngineID   string
	ConfigHash string
	InputHash  string
}

// NewKey builds the key for converting input with config on engine.
// Map keys are sorted by encoding/json, so equal payloads hash equally.
func NewKey(engineID string, config g2p.Config, input []string) (*Key, error) {
	if engineID == "" {
		return nil, ErrInvalidCacheKey
	}

	cfgHash, err := hashJSON(config)
	if err != nil {
		return nil, fmt.Errorf("%w: config not serializable: %v", ErrInvalidCacheKey, err)
	}
	inHash, err := hashJSON(input)
	if err != nil {
		return nil, fmt.Errorf("%w: input not serializable: %v", ErrInvalidCacheKey, err)
	}

	return &Key{
		EngineID:   engineID,
		ConfigHash: cfgHash,
		InputHash:  inHash,
	}, nil
}

// String returns the storage key
func (k *Key) String() string {
	return fmt.Sprintf("%s%s:%s", enginePrefix(k.EngineID), k.ConfigHash, k.InputHash)
}

// enginePrefix returns the prefix shared by every key of an engine. The id is
// escaped so it holds no ':' separator or Redis glob characters, keeping one
// engine's prefix from matching another engine's keys.
func enginePrefix(engineID string) string {
	return fmt.Sprintf("%s:%s:", keyPrefix, url.QueryEscape(engineID))
}

func hashJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:16]), nil
}
