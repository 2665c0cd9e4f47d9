package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/RogerJin0910/xredis/pkg/kv"
	"github.com/RogerJin0910/xredis/pkg/structure"
)

// MetricsInterface defines the interface for metrics recording
type MetricsInterface interface {
	RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration)
}

type Handler struct {
	shared  *kv.Shared
	pool    *structure.Pool
	logger  *zap.SugaredLogger
	metrics MetricsInterface
}

func NewHandler(shared *kv.Shared, pool *structure.Pool, logger *zap.SugaredLogger, metrics MetricsInterface) *Handler {
	return &Handler{
		shared:  shared,
		pool:    pool,
		logger:  logger,
		metrics: metrics,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Readyz reports ready once the store answers PING.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	client, err := h.shared.Acquire(r.Context())
	if err == nil {
		err = client.Ping(r.Context())
	}
	if err != nil {
		h.logger.Warnw("Readiness check failed", "error", err)
		h.writeJSON(w, http.StatusServiceUnavailable, HealthDTO{Status: "unavailable", Reasons: []string{err.Error()}})
		return
	}
	h.writeJSON(w, http.StatusOK, HealthDTO{Status: "ready"})
}

func (h *Handler) GetRandomKey(w http.ResponseWriter, r *http.Request) {
	role, ok := parseRole(r.URL.Query().Get("role"))
	if !ok {
		h.writeError(w, http.StatusBadRequest, "INVALID_ROLE", "role must be primary or replica")
		return
	}

	client, err := h.shared.Acquire(r.Context())
	if err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", err.Error())
		return
	}

	key, err := client.Cmd(role).RandomKey(r.Context()).Result()
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, RandomKeyDTO{Role: role.String(), Key: key, Found: true})
	case errors.Is(err, redis.Nil):
		h.writeJSON(w, http.StatusOK, RandomKeyDTO{Role: role.String()})
	default:
		h.writeStoreError(w, err)
	}
}

// GetStructure reports whether the record behind {kind}/{name} exists and how
// long it has left. It never adds handles to the pool; an unpooled name is
// reported with its kind's default ttl.
func (h *Handler) GetStructure(w http.ResponseWriter, r *http.Request) {
	kind := structure.Kind(strings.ToLower(chi.URLParam(r, "kind")))
	name := chi.URLParam(r, "name")

	handle, pooled, err := h.pool.Peek(r.Context(), kind, name)
	if errors.Is(err, structure.ErrUnsupportedKind) {
		h.writeError(w, http.StatusBadRequest, "UNSUPPORTED_KIND", err.Error())
		return
	}
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	exists, err := handle.Exists(r.Context())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	remaining, err := handle.TTL(r.Context())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, StructureDTO{
		Kind:             string(handle.Kind()),
		Key:              handle.Name(),
		ConfiguredTTLSec: int64(handle.ConfiguredTTL() / time.Second),
		Pooled:           pooled,
		Exists:           exists,
		TTLSec:           ttlSeconds(remaining),
	})
}

func ttlSeconds(d time.Duration) int64 {
	if d == structure.NoExpiration || d == structure.Missing {
		return int64(d)
	}
	return int64(d / time.Second)
}

func parseRole(raw string) (kv.Role, bool) {
	switch strings.ToLower(raw) {
	case "", "replica":
		return kv.RoleReplica, true
	case "primary":
		return kv.RolePrimary, true
	default:
		return kv.RolePrimary, false
	}
}

// Utility methods
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, kv.ErrBackendUnavailable) || kv.IsConnectionError(err) {
		h.writeError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", err.Error())
		return
	}
	h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.logger.Errorw("API error", "code", code, "message", message, "status", status)
	respondError(w, status, code, message)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Code: code, Message: message})
}
