// Package g2p provides the registry of grapheme-to-phoneme converter factories.
//
// # Overview
//
// A Factory converts written tokens into phoneme strings for one engine. The
// Manager is the authoritative id -> factory registry that language
// subsystems query at conversion time.
//
// # Registry
//
// Manager: thread-safe registry with add, remove (by instance or by id),
// clear, lookup and ordered snapshot listing.
// Default: process-wide Manager created on first use.
// Initialize: runs the configured SetupFunc hooks at most once, rolling back
// anything they registered when one of them fails.
//
// # Ownership
//
// A factory added to a Manager is owned by it. When the Manager releases a
// factory (remove, clear, failed initialization) it calls Unload if the
// factory implements Unloader.
//
// # Usage Example
//
//	mgr := g2p.NewManager(
//		g2p.WithLogger(log),
//		g2p.WithSetup(engines.Builtins()),
//	)
//	if err := mgr.Initialize(); err != nil {
//		log.Fatal(err)
//	}
//
//	f, ok := mgr.Factory("passthrough")
//	if !ok {
//		return language.ErrNoConverter
//	}
//	results, err := f.Convert(ctx, []string{"hello"}, nil)
//
// # Related Packages
//
//   - pkg/g2p/engines: built-in engines
//   - pkg/g2p/loader: engine.yaml discovery and hot reload
//   - pkg/g2p/cache: result caching decorator
//   - pkg/language: descriptors that select an engine by id
package g2p
