package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kompox/nbcertsync/domain/model"
	"github.com/kompox/nbcertsync/internal/logging"
)

type response struct {
	Status  string `json:"status"`
	Stage   string `json:"stage,omitempty"`
	Message string `json:"message,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
}

// triggerBody accepts both the secretRef envelope and the flat encoding.
type triggerBody struct {
	SecretRef *struct {
		Name      string `json:"name"`
		Namespace string `json:"namespace"`
	} `json:"secretRef"`
	Namespace       string `json:"namespace"`
	SecretName      string `json:"secretName"`
	SecretNameSnake string `json:"secret_name"`
	Issuer          string `json:"issuer"`
}

var errEmptyTrigger = errors.New("trigger names neither a secret nor a namespace")

// parseTrigger decodes r into a TriggerRequest. JSON bodies win over query
// parameters; an empty body falls back to ?namespace=&secret= (or name=).
func parseTrigger(r *http.Request) (model.TriggerRequest, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return model.TriggerRequest{}, err
	}

	var req model.TriggerRequest
	if len(bytes.TrimSpace(body)) == 0 {
		q := r.URL.Query()
		req.SecretNamespace = q.Get("namespace")
		req.SecretName = q.Get("secret")
		if req.SecretName == "" {
			req.SecretName = q.Get("name")
		}
		req.Issuer = q.Get("issuer")
		req.Source = "query"
	} else {
		var tb triggerBody
		if err := json.Unmarshal(body, &tb); err != nil {
			return model.TriggerRequest{}, fmt.Errorf("malformed JSON body: %w", err)
		}
		switch {
		case tb.SecretRef != nil:
			req.SecretName, req.SecretNamespace = tb.SecretRef.Name, tb.SecretRef.Namespace
			req.Source = "json"
		default:
			req.SecretName, req.SecretNamespace = tb.SecretName, tb.Namespace
			if req.SecretName == "" {
				req.SecretName = tb.SecretNameSnake
			}
			req.Source = "json-flat"
		}
		req.Issuer = tb.Issuer
	}
	req.SecretName = strings.TrimSpace(req.SecretName)
	req.SecretNamespace = strings.TrimSpace(req.SecretNamespace)
	if req.SecretName == "" && req.SecretNamespace == "" {
		return model.TriggerRequest{}, errEmptyTrigger
	}
	return req, nil
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	req, err := parseTrigger(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, response{Status: "error", Stage: string(model.StageValidation), Message: "request body too large"})
			return
		}
		logger.Warn(ctx, "rejected trigger", "err", err.Error())
		writeJSON(w, http.StatusBadRequest, response{Status: "error", Stage: string(model.StageValidation), Message: err.Error()})
		return
	}

	// The run outlives a dropped connection.
	res := s.syncer.Sync(context.WithoutCancel(ctx), req)
	writeJSON(w, StatusFor(res), toResponse(res))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, response{Status: "healthy"})
}

func (s *Server) handleDeepHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.HealthTimeout)
	defer cancel()

	var failed []string
	for _, c := range s.opts.Checkers {
		if err := c.Check(ctx); err != nil {
			logging.FromContext(ctx).Warn(ctx, "health check failed", "check", c.Name(), "err", err.Error())
			failed = append(failed, c.Name()+": "+logging.TruncateErr(err))
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, response{Status: "degraded", Message: strings.Join(failed, "; ")})
		return
	}
	writeJSON(w, http.StatusOK, response{Status: "healthy"})
}

// StatusFor maps a sync outcome to the HTTP status returned to the caller.
func StatusFor(res *model.SyncResult) int {
	if res.Err == nil {
		return http.StatusOK
	}
	err := res.Err
	switch {
	case errors.Is(err, model.ErrInvalidTrigger):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrSecretNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrSecretMalformed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrClusterUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, model.ErrPushRejected):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrPushExhausted):
		return http.StatusGatewayTimeout
	}
	switch res.Stage {
	case model.StageValidation:
		return http.StatusBadRequest
	case model.StagePush:
		return http.StatusBadGateway
	default:
		return http.StatusServiceUnavailable
	}
}

func toResponse(res *model.SyncResult) response {
	if res.Err != nil {
		return response{Status: "error", Stage: string(res.Stage), Message: res.Err.Error()}
	}
	msg := "certificate pushed to " + res.Target.String()
	if res.Skipped {
		msg = "certificate unchanged on " + res.Target.String() + ", push skipped"
	}
	return response{Status: "success", Stage: string(res.Stage), Message: msg, Skipped: res.Skipped}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
