package loader

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/platinummonkey/langmgr/pkg/g2p"
	"github.com/platinummonkey/langmgr/pkg/g2p/engines"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func validManifest(id string, kind Kind) *Manifest {
	return &Manifest{
		ID:          id,
		Name:        id + " engine",
		Version:     "1.2.0",
		APIVersion:  "1.0.0",
		Description: "test engine",
		Author:      "Test Author",
		Category:    "test",
		Kind:        kind,
	}
}

// writeEngine creates root/<name>/engine.yaml and, for dictionaries, a lexicon
func writeEngine(t *testing.T, root, name string, manifest *Manifest) string {
	t.Helper()

	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	if manifest.Kind == KindDictionary {
		lexicon := "hello: [\"hh ah l ow\"]\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "lexicon.yaml"), []byte(lexicon), 0644))
	}
	require.NoError(t, SaveManifest(manifest, filepath.Join(dir, ManifestFile)))
	return dir
}

func TestNewLoader(t *testing.T) {
	dirs := []string{"/tmp/engines"}
	loader := NewLoader(dirs, nil)

	assert.NotNil(t, loader)
	assert.Equal(t, dirs, loader.Dirs())
	assert.NotNil(t, loader.log)
	assert.Contains(t, loader.builders, KindDictionary)
	assert.Contains(t, loader.builders, KindPassthrough)
}

func TestDefaultEngineDirectories(t *testing.T) {
	dirs := DefaultEngineDirectories()

	assert.NotEmpty(t, dirs)
	assert.Contains(t, dirs[0], filepath.Join(".langmgr", "engines"))
}

func TestValidateManifest(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(m *Manifest)
		wantFields []string
	}{
		{name: "valid", mutate: func(m *Manifest) {}},
		{name: "missing id", mutate: func(m *Manifest) { m.ID = "" }, wantFields: []string{"id"}},
		{name: "missing name", mutate: func(m *Manifest) { m.Name = "" }, wantFields: []string{"name"}},
		{name: "bad version", mutate: func(m *Manifest) { m.Version = "one" }, wantFields: []string{"version"}},
		{name: "missing api version", mutate: func(m *Manifest) { m.APIVersion = "" }, wantFields: []string{"api_version"}},
		{name: "missing kind", mutate: func(m *Manifest) { m.Kind = "" }, wantFields: []string{"kind"}},
		{name: "unregistered kind is left to the loader", mutate: func(m *Manifest) { m.Kind = "neural" }},
		{
			name:       "empty manifest",
			mutate:     func(m *Manifest) { *m = Manifest{} },
			wantFields: []string{"id", "name", "version", "api_version", "kind"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validManifest("ja-kana", KindPassthrough)
			tt.mutate(m)

			errs := ValidateManifest(m)
			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestIsCompatibleAPIVersion(t *testing.T) {
	assert.True(t, IsCompatibleAPIVersion("1.4.2", "1.0.0"))
	assert.True(t, IsCompatibleAPIVersion("v1.0.0", "1.0.0"))
	assert.False(t, IsCompatibleAPIVersion("2.0.0", "1.0.0"))
	assert.False(t, IsCompatibleAPIVersion("garbage", "1.0.0"))
}

func TestManifest_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestFile)
	m := validManifest("ja-kana", KindDictionary)
	m.Lexicon = "kana.yaml"
	m.Metadata = map[string]string{"script": "kana"}

	require.NoError(t, SaveManifest(m, path))
	loaded, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, m, loaded)
	assert.Equal(t, "ja-kana engine", loaded.Info().Name)
}

func TestLoader_LoadEngine(t *testing.T) {
	root := t.TempDir()
	loader := NewLoader([]string{root}, quietLogger())
	ctx := context.Background()

	t.Run("dictionary", func(t *testing.T) {
		dir := writeEngine(t, root, "en", validManifest("en-dict", KindDictionary))

		f, err := loader.LoadEngine(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, "en-dict", f.ID())
		assert.IsType(t, &engines.Dictionary{}, f)

		id, ok := loader.SourceID(dir)
		assert.True(t, ok)
		assert.Equal(t, "en-dict", id)

		results, err := f.Convert(ctx, []string{"hello"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "hh ah l ow", results[0].Syllable)
	})

	t.Run("passthrough", func(t *testing.T) {
		dir := writeEngine(t, root, "kana", validManifest("ja-kana", KindPassthrough))

		f, err := loader.LoadEngine(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, "ja-kana", g2p.InfoOf(f).ID)
		assert.Equal(t, "Test Author", g2p.InfoOf(f).Author)
	})

	t.Run("missing lexicon", func(t *testing.T) {
		dir := filepath.Join(root, "nolex")
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, SaveManifest(validManifest("nolex", KindDictionary), filepath.Join(dir, ManifestFile)))

		_, err := loader.LoadEngine(ctx, dir)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to build engine")
	})

	t.Run("incompatible api version", func(t *testing.T) {
		m := validManifest("future", KindPassthrough)
		m.APIVersion = "2.0.0"
		dir := writeEngine(t, root, "future", m)

		_, err := loader.LoadEngine(ctx, dir)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "incompatible API version")
	})

	t.Run("invalid manifest", func(t *testing.T) {
		m := validManifest("", KindPassthrough)
		dir := writeEngine(t, root, "invalid", m)

		_, err := loader.LoadEngine(ctx, dir)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "manifest validation failed")
	})
}

func TestLoader_RegisterKind(t *testing.T) {
	root := t.TempDir()
	loader := NewLoader([]string{root}, quietLogger())

	called := false
	loader.RegisterKind(KindPassthrough, func(ctx context.Context, dir string, m *Manifest) (g2p.Factory, error) {
		called = true
		return engines.NewPassthrough(m.Info()), nil
	})

	dir := writeEngine(t, root, "kana", validManifest("ja-kana", KindPassthrough))
	_, err := loader.LoadEngine(context.Background(), dir)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestLoader_RegisterKind_NewKind(t *testing.T) {
	root := t.TempDir()
	loader := NewLoader([]string{root}, quietLogger())
	dir := writeEngine(t, root, "romaji", validManifest("ja-romaji", Kind("romaji")))

	_, err := loader.LoadEngine(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no builder for engine kind: romaji")

	loader.RegisterKind(Kind("romaji"), func(ctx context.Context, dir string, m *Manifest) (g2p.Factory, error) {
		return engines.NewPassthrough(m.Info()), nil
	})

	f, err := loader.LoadEngine(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "ja-romaji", f.ID())

	id, ok := loader.SourceID(dir)
	require.True(t, ok)
	assert.Equal(t, "ja-romaji", id)
}

func TestLoader_Discover(t *testing.T) {
	root := t.TempDir()
	writeEngine(t, root, "en", validManifest("en-dict", KindDictionary))
	writeEngine(t, root, "kana", validManifest("ja-kana", KindPassthrough))
	writeEngine(t, root, "broken", validManifest("", KindPassthrough))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "not-an-engine"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README"), []byte("x"), 0644))

	loader := NewLoader([]string{root, filepath.Join(root, "missing")}, quietLogger())

	factories, err := loader.Discover(context.Background())
	require.NoError(t, err)

	var ids []string
	for _, f := range factories {
		ids = append(ids, f.ID())
	}
	assert.ElementsMatch(t, []string{"en-dict", "ja-kana"}, ids)
}

func TestLoader_Setup(t *testing.T) {
	root := t.TempDir()
	writeEngine(t, root, "en", validManifest("en-dict", KindDictionary))
	writeEngine(t, root, "kana", validManifest("ja-kana", KindPassthrough))

	loader := NewLoader([]string{root}, quietLogger())
	mgr := g2p.NewManager(g2p.WithLogger(quietLogger()), g2p.WithSetup(loader.Setup()))

	require.NoError(t, mgr.Initialize())
	assert.True(t, mgr.Has("en-dict"))
	assert.True(t, mgr.Has("ja-kana"))
}

func TestLoader_Setup_DuplicateRollsBack(t *testing.T) {
	root := t.TempDir()
	writeEngine(t, root, "a", validManifest("ja-kana", KindPassthrough))
	writeEngine(t, root, "b", validManifest("ja-kana", KindPassthrough))

	loader := NewLoader([]string{root}, quietLogger())
	mgr := g2p.NewManager(
		g2p.WithLogger(quietLogger()),
		g2p.WithSetup(engines.Builtins(), loader.Setup()),
	)

	err := mgr.Initialize()
	require.Error(t, err)
	assert.ErrorIs(t, err, g2p.ErrInitializationFailed)
	assert.ErrorIs(t, err, g2p.ErrDuplicateID)
	assert.False(t, mgr.IsInitialized())
	assert.Equal(t, 0, mgr.Count())
}

func TestLoader_SetWrapper(t *testing.T) {
	root := t.TempDir()
	dir := writeEngine(t, root, "kana", validManifest("ja-kana", KindPassthrough))

	loader := NewLoader([]string{root}, quietLogger())
	var wrapped []string
	loader.SetWrapper(func(f g2p.Factory) g2p.Factory {
		wrapped = append(wrapped, f.ID())
		return f
	})

	_, err := loader.LoadEngine(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"ja-kana"}, wrapped)
}
