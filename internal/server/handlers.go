package server

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/matzehuels/lineage/pkg/buildinfo"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/pipeline"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatText: "text/plain; charset=utf-8",
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// artifact serves one rendered format, for the provider's snapshot or for
// the snapshot posted in the body.
func (s *Server) artifact(format string, fromBody bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := s.options(r.URL.Query())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Formats = []string{format}

		var res *pipeline.Result
		if fromBody {
			var snap graph.Snapshot
			snap, err = s.decodeSnapshot(w, r)
			if err == nil {
				res, err = s.runner.Compute(r.Context(), snap, opts)
			}
			if err == nil {
				_, err = s.runner.RenderInto(r.Context(), res, opts)
			}
		} else {
			res, err = s.runner.Execute(r.Context(), opts)
		}
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		h := w.Header()
		h.Set("Content-Type", contentTypes[format])
		h.Set("X-Snapshot-Hash", res.SnapshotHash)
		h.Set("X-Orphans", strconv.Itoa(len(res.Orphans)))
		if res.CacheInfo.RenderHit {
			h.Set("X-Cache", "HIT")
		} else {
			h.Set("X-Cache", "MISS")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Artifacts[format])
	}
}

// options applies query parameters to the server defaults.
func (s *Server) options(q url.Values) (pipeline.Options, error) {
	opts := s.defaults
	opts.Logger = s.logger

	floats := map[string]*float64{
		"node_width":      &opts.NodeWidth,
		"node_height":     &opts.NodeHeight,
		"viewport_width":  &opts.ViewportWidth,
		"viewport_height": &opts.ViewportHeight,
		"top_margin":      &opts.TopMargin,
		"link_inset":      &opts.LinkInset,
	}
	for name, dst := range floats {
		if v := q.Get(name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "%s: not a number: %q", name, v)
			}
			*dst = f
		}
	}

	bools := map[string]*bool{
		"disjoint": &opts.Disjoint,
		"legend":   &opts.Legend,
		"refresh":  &opts.Refresh,
		"strict":   &opts.Strict,
	}
	for name, dst := range bools {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "%s: not a boolean: %q", name, v)
			}
			*dst = b
		}
	}

	if v := q.Get("depth"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "depth: not an integer: %q", v)
		}
		opts.DOTDepth = d
	}
	if v := q.Get("root"); v != "" {
		opts.DOTRoot = v
	}
	if v := q.Get("title"); v != "" {
		opts.Title = v
	}

	opts.Formats = []string{pipeline.FormatJSON}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	return opts, nil
}

func (s *Server) decodeSnapshot(w http.ResponseWriter, r *http.Request) (graph.Snapshot, error) {
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	defer body.Close()

	format := graph.FormatJSON
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil {
		switch mt {
		case "application/yaml", "application/x-yaml", "text/yaml":
			format = graph.FormatYAML
		}
	}
	return graph.ReadSnapshot(body, format)
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidMember, errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeMalformedGraph:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeDataUnavailable, errors.ErrCodeNetwork, errors.ErrCodeUnauthorized:
		return http.StatusBadGateway
	case errors.ErrCodeInvalidConfig:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := StatusFor(code)

	msg := errors.Detail(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err, "request_id", RequestIDFrom(r.Context()))
		msg = "internal server error"
	} else {
		s.logger.Debug("request rejected", "code", code, "error", err)
	}
	writeJSON(w, status, errorBody{
		Code:      string(code),
		Message:   msg,
		RequestID: RequestIDFrom(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
