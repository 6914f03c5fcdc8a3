// Package api serves the G2P registry and language conversions over HTTP.
//
// Routes:
//
//	GET  /healthz                        liveness and engine count
//	GET  /metrics                        Prometheus metrics
//	GET  /v1/g2p                         registered engines
//	GET  /v1/g2p/{id}                    one engine
//	GET  /v1/languages                   configured languages
//	GET  /v1/languages/{id}              one language
//	POST /v1/languages/{id}/convert      convert {"input": [...]} for one language
//	POST /v1/convert                     convert for every language
package api
