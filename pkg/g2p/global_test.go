package g2p

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Singleton(t *testing.T) {
	ResetDefault()
	defer ResetDefault()

	first := Default()
	second := Default()

	require.NotNil(t, first)
	assert.Same(t, first, second)
}

func TestSetDefault(t *testing.T) {
	ResetDefault()
	defer ResetDefault()

	custom := newTestManager()
	assert.Same(t, custom, SetDefault(custom))
	assert.Same(t, custom, Default())

	// later installs are ignored
	other := newTestManager()
	assert.Same(t, custom, SetDefault(other))
}

func TestResetDefault_ReleasesFactories(t *testing.T) {
	ResetDefault()

	f := newMockFactory("ja-kana")
	mgr := SetDefault(newTestManager())
	require.NoError(t, mgr.AddFactory(f))

	ResetDefault()

	assert.Equal(t, int32(1), f.unloads.Load())
	assert.NotSame(t, mgr, Default())
	assert.Equal(t, 0, Default().Count())

	ResetDefault()
}
