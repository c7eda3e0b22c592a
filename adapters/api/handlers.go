package api

import (
	"encoding/json"
	"net/http"

	"datavet/adapters/codec"
	"datavet/domain/core"
	"datavet/domain/schema"
	apperrors "datavet/internal/errors"
	"datavet/internal/validator"
)

// validateRequest carries the documents of one validation call. The
// statistics and schema payloads are full documents, embedded raw.
type validateRequest struct {
	Statistics        json.RawMessage `json:"statistics"`
	Schema            json.RawMessage `json:"schema"`
	Environment       string          `json:"environment,omitempty"`
	PreviousSpan      json.RawMessage `json:"previous_span_statistics,omitempty"`
	ServingStatistics json.RawMessage `json:"serving_statistics,omitempty"`
	Paths             []string        `json:"paths,omitempty"`
}

type inferRequest struct {
	Statistics          json.RawMessage `json:"statistics"`
	MaxStringDomainSize int             `json:"max_string_domain_size,omitempty"`
}

type updateRequest struct {
	Schema        json.RawMessage `json:"schema"`
	Statistics    json.RawMessage `json:"statistics"`
	Paths         []string        `json:"paths,omitempty"`
	EnumThreshold int             `json:"enum_threshold,omitempty"`
	Environment   string          `json:"environment,omitempty"`
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, core.NewParseError("request body", err))
		return
	}

	c := codec.NewJSONCodec()
	record, err := c.DecodeStatistics(req.Statistics)
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc, err := c.DecodeSchema(req.Schema)
	if err != nil {
		s.writeError(w, err)
		return
	}

	vreq := validator.Request{
		Statistics:  record,
		Schema:      doc,
		Environment: req.Environment,
		Config:      s.service.Config(),
	}
	if len(req.PreviousSpan) > 0 {
		if vreq.Previous, err = c.DecodeStatistics(req.PreviousSpan); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if len(req.ServingStatistics) > 0 {
		if vreq.Serving, err = c.DecodeStatistics(req.ServingStatistics); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if vreq.Paths, err = parsePaths(req.Paths); err != nil {
		s.writeError(w, err)
		return
	}

	report, err := s.service.ValidateStatistics(r.Context(), vreq)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleInfer(w http.ResponseWriter, r *http.Request) {
	var req inferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, core.NewParseError("request body", err))
		return
	}

	record, err := codec.NewJSONCodec().DecodeStatistics(req.Statistics)
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc, err := s.service.InferSchema(r.Context(), record, req.MaxStringDomainSize)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, core.NewParseError("request body", err))
		return
	}

	c := codec.NewJSONCodec()
	doc, err := c.DecodeSchema(req.Schema)
	if err != nil {
		s.writeError(w, err)
		return
	}
	record, err := c.DecodeStatistics(req.Statistics)
	if err != nil {
		s.writeError(w, err)
		return
	}
	paths, err := parsePaths(req.Paths)
	if err != nil {
		s.writeError(w, err)
		return
	}

	cfg := schema.InferenceConfig{EnumThreshold: req.EnumThreshold}
	updated, err := s.service.UpdateSchema(r.Context(), doc, record, cfg, paths, req.Environment)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func parsePaths(raw []string) ([]core.Path, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	paths := make([]core.Path, 0, len(raw))
	for _, r := range raw {
		p := core.ParsePath(r)
		if p.IsEmpty() {
			return nil, core.NewParseErrorf("paths contains an empty feature path")
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("write response: %v", err)
	}
}

// writeError maps the error taxonomy onto HTTP statuses: malformed input
// is the caller's fault, an inconsistent schema is an unprocessable
// request, everything else is ours.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case "PARSE_ERROR", "INVALID_INPUT", "CONFIG_INVALID":
		status = http.StatusBadRequest
	case "STATE_ERROR":
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed: %v", err)
	}
	s.writeJSON(w, status, errorResponse{Code: code, Error: err.Error()})
}
