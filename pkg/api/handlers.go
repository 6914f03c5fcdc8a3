package api

import (
	"net/http"

	"github.com/platinummonkey/langmgr/pkg/g2p"
	"github.com/platinummonkey/langmgr/pkg/httputil"
	"github.com/platinummonkey/langmgr/pkg/language"
)

// HealthResponse is returned by /healthz
type HealthResponse struct {
	Status      string `json:"status"`
	Initialized bool   `json:"initialized"`
	Engines     int    `json:"engines"`
}

// ConvertRequest is the body of the convert endpoints
type ConvertRequest struct {
	Input []string `json:"input"`
}

// LanguageResponse describes a configured language
type LanguageResponse struct {
	language.Spec
	Resolved bool `json:"resolved"`
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if !s.manager.IsInitialized() {
		status = "initializing"
		code = http.StatusServiceUnavailable
	}

	httputil.WriteJSON(w, code, HealthResponse{
		Status:      status,
		Initialized: s.manager.IsInitialized(),
		Engines:     s.manager.Count(),
	})
}

func (s *Server) listEngines(w http.ResponseWriter, r *http.Request) {
	factories := s.manager.Factories()
	infos := make([]g2p.Info, 0, len(factories))
	for _, f := range factories {
		infos = append(infos, g2p.InfoOf(f))
	}
	httputil.WriteSuccess(w, infos)
}

func (s *Server) getEngine(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	f, ok := s.manager.Factory(id)
	if !ok {
		httputil.WriteNotFoundError(w, "engine not found: "+id)
		return
	}
	httputil.WriteSuccess(w, g2p.InfoOf(f))
}

func (s *Server) describe(d *language.Descriptor) LanguageResponse {
	_, err := language.Resolve(s.manager, d)
	return LanguageResponse{Spec: d.Spec(), Resolved: err == nil}
}

func (s *Server) listLanguages(w http.ResponseWriter, r *http.Request) {
	resp := make([]LanguageResponse, 0, len(s.languages))
	for _, d := range s.languages {
		resp = append(resp, s.describe(d))
	}
	httputil.WriteSuccess(w, resp)
}

func (s *Server) lookupLanguage(w http.ResponseWriter, r *http.Request) (*language.Descriptor, bool) {
	id, err := httputil.PathParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return nil, false
	}

	d, ok := language.Find(s.languages, id)
	if !ok {
		httputil.WriteNotFoundError(w, "language not found: "+id)
		return nil, false
	}
	return d, true
}

func (s *Server) getLanguage(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupLanguage(w, r)
	if !ok {
		return
	}
	httputil.WriteSuccess(w, s.describe(d))
}

func (s *Server) convertLanguage(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupLanguage(w, r)
	if !ok {
		return
	}

	var req ConvertRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	out, err := s.processor.Process(r.Context(), d, req.Input)
	switch {
	case err == nil:
		httputil.WriteSuccess(w, out)
	case language.IsNoConverter(err):
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, out)
	default:
		httputil.WriteJSON(w, http.StatusBadGateway, out)
	}
}

func (s *Server) convertAll(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	outputs, err := s.processor.ProcessAll(r.Context(), s.languages, req.Input)
	if err != nil {
		httputil.WriteError(w, http.StatusServiceUnavailable, err)
		return
	}
	httputil.WriteSuccess(w, outputs)
}
