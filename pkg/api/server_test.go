package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/platinummonkey/langmgr/pkg/g2p"
	"github.com/platinummonkey/langmgr/pkg/g2p/engines"
	"github.com/platinummonkey/langmgr/pkg/httputil"
	"github.com/platinummonkey/langmgr/pkg/language"
	"github.com/platinummonkey/langmgr/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingFactory struct{}

func (failingFactory) ID() string { return "broken" }

func (failingFactory) Convert(ctx context.Context, input []string, config g2p.Config) ([]g2p.Result, error) {
	return nil, errors.New("model missing")
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	mgr := g2p.NewManager(g2p.WithLogger(log), g2p.WithMetrics(metrics), g2p.WithSetup(engines.Builtins()))
	require.NoError(t, mgr.Initialize())
	require.NoError(t, mgr.AddFactory(engines.NewDictionary(
		g2p.Info{ID: "ja-kana", Name: "Kana", Category: "ja"},
		engines.Lexicon{"さくら": {"s a k u r a"}},
	)))
	require.NoError(t, mgr.AddFactory(failingFactory{}))

	ja := language.NewDescriptor("ja")
	ja.SetDisplayName("Japanese")
	ja.SetSelectedG2P("ja-kana")

	en := language.NewDescriptor("en")
	en.SetSelectedG2P(engines.PassthroughID)

	fr := language.NewDescriptor("fr")
	fr.SetSelectedG2P("missing-id")

	xx := language.NewDescriptor("xx")
	xx.SetSelectedG2P("broken")

	off := language.NewDescriptor("off")
	off.SetEnabled(false)

	return NewServer(Options{
		Manager:   mgr,
		Processor: language.NewProcessor(mgr, language.WithProcessorLogger(log), language.WithProcessorMetrics(metrics)),
		Languages: []*language.Descriptor{ja, en, fr, xx, off},
		Registry:  registry,
		Metrics:   metrics,
		Log:       log,
	})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)
	return w
}

func TestServer_Healthz(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(httputil.RequestIDHeader))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Initialized)
	assert.Equal(t, 3, resp.Engines)
}

func TestServer_Healthz_NotInitialized(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	mgr := g2p.NewManager(g2p.WithLogger(log))
	s := NewServer(Options{Manager: mgr, Processor: language.NewProcessor(mgr), Log: log})

	w := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	// no registry, no metrics route
	w = do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_ListEngines(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/v1/g2p", "")
	require.Equal(t, http.StatusOK, w.Code)

	var infos []g2p.Info
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &infos))
	require.Len(t, infos, 3)
	assert.Equal(t, engines.PassthroughID, infos[0].ID)
	assert.Equal(t, "ja-kana", infos[1].ID)
	assert.Equal(t, "broken", infos[2].ID)
}

func TestServer_GetEngine(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/v1/g2p/ja-kana", "")
	require.Equal(t, http.StatusOK, w.Code)
	var info g2p.Info
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "Kana", info.Name)

	w = do(t, s, http.MethodGet, "/v1/g2p/missing-id", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Languages(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/v1/languages", "")
	require.Equal(t, http.StatusOK, w.Code)

	var langs []LanguageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &langs))
	require.Len(t, langs, 5)
	assert.Equal(t, "ja", langs[0].ID)
	assert.True(t, langs[0].Resolved)
	assert.Equal(t, "fr", langs[2].ID)
	assert.False(t, langs[2].Resolved)

	w = do(t, s, http.MethodGet, "/v1/languages/ja", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/v1/languages/de", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_ConvertLanguage(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		check  func(t *testing.T, out language.Output)
	}{
		{
			name:   "dictionary hit",
			path:   "/v1/languages/ja/convert",
			body:   `{"input":["さくら","x"]}`,
			status: http.StatusOK,
			check: func(t *testing.T, out language.Output) {
				require.Len(t, out.Results, 2)
				assert.Equal(t, "s a k u r a", out.Results[0].Syllable)
				assert.True(t, out.Results[1].Error)
			},
		},
		{
			name:   "passthrough",
			path:   "/v1/languages/en/convert",
			body:   `{"input":["Hello"]}`,
			status: http.StatusOK,
			check: func(t *testing.T, out language.Output) {
				require.Len(t, out.Results, 1)
				assert.Equal(t, "Hello", out.Results[0].Syllable)
			},
		},
		{
			name:   "missing engine",
			path:   "/v1/languages/fr/convert",
			body:   `{"input":["bonjour"]}`,
			status: http.StatusUnprocessableEntity,
			check: func(t *testing.T, out language.Output) {
				assert.Contains(t, out.Error, "missing-id")
			},
		},
		{
			name:   "engine failure",
			path:   "/v1/languages/xx/convert",
			body:   `{"input":["a"]}`,
			status: http.StatusBadGateway,
			check: func(t *testing.T, out language.Output) {
				assert.Contains(t, out.Error, "model missing")
			},
		},
		{
			name:   "disabled",
			path:   "/v1/languages/off/convert",
			body:   `{"input":["a"]}`,
			status: http.StatusOK,
			check: func(t *testing.T, out language.Output) {
				assert.True(t, out.Skipped)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())

			var out language.Output
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
			tt.check(t, out)
		})
	}
}

func TestServer_ConvertLanguage_BadRequest(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/v1/languages/ja/convert", `{"input":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/v1/languages/de/convert", `{"input":["a"]}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_ConvertAll(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/v1/convert", `{"input":["さくら"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var outputs []language.Output
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outputs))
	require.Len(t, outputs, 5)
	assert.Equal(t, "ja", outputs[0].Language)
	assert.Equal(t, "s a k u r a", outputs[0].Results[0].Syllable)
	assert.NotEmpty(t, outputs[2].Error)
	assert.True(t, outputs[4].Skipped)
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(t)

	do(t, s, http.MethodGet, "/v1/languages/ja", "")

	w := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "langmgr_g2p_factories")
	assert.Contains(t, body, `path="/v1/languages/{id}"`)
}
