// Package observability provides logging and Prometheus metrics.
//
// Logging uses logrus with a text formatter; NewLogger parses the level name
// the same way the config layer reads LANGMGR_LOG_LEVEL.
//
// Metrics are registered on a caller-supplied prometheus.Registry so tests
// can use an isolated registry:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	mgr := g2p.NewManager(g2p.WithMetrics(metrics))
//
// Every recording method accepts a nil receiver.
package observability
