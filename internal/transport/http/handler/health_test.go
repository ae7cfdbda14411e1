package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func healthRouter(checks map[string]HealthCheck) http.Handler {
	r := chi.NewRouter()
	r.Get("/health-check/{action}", NewHealthHandler(checks).Ping)
	return r
}

func TestHealthPing(t *testing.T) {
	r := healthRouter(nil)

	rr := serve(r, http.MethodGet, "/health-check/ping", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rr.Body.String())

	rr = serve(r, http.MethodGet, "/health-check/other", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHealthReady(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	rr := serve(healthRouter(map[string]HealthCheck{"redis": up, "dynamodb": up}), http.MethodGet, "/health-check/ready", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"ready","checks":{"redis":"ok","dynamodb":"ok"}}`, rr.Body.String())

	rr = serve(healthRouter(map[string]HealthCheck{"redis": down, "dynamodb": up}), http.MethodGet, "/health-check/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.JSONEq(t, `{"message":"not ready","checks":{"redis":"down","dynamodb":"ok"}}`, rr.Body.String())
}
