package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/platinummonkey/langmgr/pkg/g2p"
	"github.com/platinummonkey/langmgr/pkg/g2p/engines"
	"github.com/sirupsen/logrus"
)

const (
	// CurrentAPIVersion is the engine manifest API version this loader understands
	CurrentAPIVersion = "1.0.0"

	defaultLexiconFile = "lexicon.yaml"
)

// Builder creates a factory from a validated manifest found in dir
type Builder func(ctx context.Context, dir string, manifest *Manifest) (g2p.Factory, error)

// Wrapper decorates every built factory, e.g. with a result cache.
// It must preserve the factory id.
type Wrapper func(g2p.Factory) g2p.Factory

// Loader discovers engine directories and builds factories from their manifests
type Loader struct {
	engineDirs []string
	builders   map[Kind]Builder
	wrap       Wrapper
	sources    map[string]string // engine dir -> factory id
	mu         sync.RWMutex
	log        *logrus.Logger
}

// NewLoader creates a loader over dirs with the built-in kinds registered
func NewLoader(dirs []string, log *logrus.Logger) *Loader {
	if log == nil {
		log = logrus.New()
	}

	l := &Loader{
		engineDirs: dirs,
		builders:   make(map[Kind]Builder),
		sources:    make(map[string]string),
		log:        log,
	}
	l.builders[KindDictionary] = buildDictionary
	l.builders[KindPassthrough] = buildPassthrough

	return l
}

// RegisterKind sets the builder for kind, replacing any existing one
func (l *Loader) RegisterKind(kind Kind, builder Builder) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.builders[kind] = builder
}

// SetWrapper installs a decorator applied to every factory the loader builds
func (l *Loader) SetWrapper(wrap Wrapper) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.wrap = wrap
}

// Dirs returns the directories scanned by Discover
func (l *Loader) Dirs() []string {
	return append([]string(nil), l.engineDirs...)
}

// Discover scans the engine directories. Every subdirectory holding an
// engine.yaml yields a factory; broken engines are logged and skipped.
func (l *Loader) Discover(ctx context.Context) ([]g2p.Factory, error) {
	var factories []g2p.Factory

	for _, dir := range l.engineDirs {
		if err := ctx.Err(); err != nil {
			return factories, err
		}

		if _, err := os.Stat(dir); os.IsNotExist(err) {
			l.log.Debugf("Engine directory does not exist: %s", dir)
			continue
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			l.log.Warnf("Failed to read engine directory %s: %v", dir, err)
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}

			engineDir := filepath.Join(dir, entry.Name())
			if _, err := os.Stat(filepath.Join(engineDir, ManifestFile)); err != nil {
				continue
			}

			factory, err := l.LoadEngine(ctx, engineDir)
			if err != nil {
				l.log.Warnf("Failed to load engine from %s: %v", engineDir, err)
				continue
			}

			factories = append(factories, factory)
		}
	}

	return factories, nil
}

// LoadEngine builds the factory described by dir/engine.yaml
func (l *Loader) LoadEngine(ctx context.Context, dir string) (g2p.Factory, error) {
	manifest, err := LoadManifestFromDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	if validationErrors := ValidateManifest(manifest); len(validationErrors) > 0 {
		return nil, fmt.Errorf("manifest validation failed: %v", validationErrors)
	}

	if !IsCompatibleAPIVersion(manifest.APIVersion, CurrentAPIVersion) {
		return nil, fmt.Errorf("incompatible API version: engine requires %s, loader is %s",
			manifest.APIVersion, CurrentAPIVersion)
	}

	l.mu.RLock()
	builder, ok := l.builders[manifest.Kind]
	wrap := l.wrap
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no builder for engine kind: %s", manifest.Kind)
	}

	factory, err := builder(ctx, dir, manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}
	if wrap != nil {
		factory = wrap(factory)
	}
	if factory.ID() != manifest.ID {
		return nil, fmt.Errorf("engine id mismatch: manifest %q, factory %q", manifest.ID, factory.ID())
	}

	l.mu.Lock()
	l.sources[filepath.Clean(dir)] = manifest.ID
	l.mu.Unlock()

	l.log.Infof("Loaded G2P engine: %s v%s (kind: %s)", manifest.Name, manifest.Version, manifest.Kind)

	return factory, nil
}

// SourceID returns the id of the factory last loaded from dir
func (l *Loader) SourceID(dir string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	id, ok := l.sources[filepath.Clean(dir)]
	return id, ok
}

// forget drops the dir -> id association
func (l *Loader) forget(dir string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.sources, filepath.Clean(dir))
}

// Setup returns a manager setup hook that registers every discovered engine.
// A duplicate id fails the hook, which makes the manager roll back.
func (l *Loader) Setup() g2p.SetupFunc {
	return func(r g2p.Registrar) error {
		factories, err := l.Discover(context.Background())
		if err != nil {
			return fmt.Errorf("engine discovery failed: %w", err)
		}

		for i, f := range factories {
			if err := r.AddFactory(f); err != nil {
				for _, rest := range factories[i:] {
					unload(rest, l.log)
				}
				return fmt.Errorf("failed to register engine %s: %w", f.ID(), err)
			}
		}
		return nil
	}
}

func unload(f g2p.Factory, log *logrus.Logger) {
	if u, ok := f.(g2p.Unloader); ok {
		if err := u.Unload(); err != nil {
			log.Warnf("Failed to unload engine %s: %v", f.ID(), err)
		}
	}
}

func buildDictionary(ctx context.Context, dir string, manifest *Manifest) (g2p.Factory, error) {
	lexiconFile := manifest.Lexicon
	if lexiconFile == "" {
		lexiconFile = defaultLexiconFile
	}
	if !filepath.IsAbs(lexiconFile) {
		lexiconFile = filepath.Join(dir, lexiconFile)
	}

	lexicon, err := engines.LoadLexicon(lexiconFile)
	if err != nil {
		return nil, err
	}

	return engines.NewDictionary(manifest.Info(), lexicon), nil
}

func buildPassthrough(ctx context.Context, dir string, manifest *Manifest) (g2p.Factory, error) {
	return engines.NewPassthrough(manifest.Info()), nil
}

// DefaultEngineDirectories returns the default engine search directories
func DefaultEngineDirectories() []string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "/tmp"
	}

	return []string{
		filepath.Join(homeDir, ".langmgr", "engines"),
		"/etc/langmgr/engines",
		"./engines",
	}
}
