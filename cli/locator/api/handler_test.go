package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniil11ru/lastseen/cli/locator/domain"
	"github.com/daniil11ru/lastseen/cli/locator/errs"
	"github.com/daniil11ru/lastseen/cli/locator/model"
	"github.com/daniil11ru/lastseen/cli/locator/view"
)

// stubService implements the Service interface for testing.
type stubService struct {
	record       *model.Position
	err          error
	batchRecords []*model.Position
	batchSummary domain.BatchSummary
	listData     []interface{}
	listSummary  domain.ListSummary
	exists       bool
	status       domain.NamespaceStatus
}

func (s *stubService) GetOne(ctx context.Context, id string) (*model.Position, error) {
	return s.record, s.err
}

func (s *stubService) GetBatch(ctx context.Context, ids []string) ([]*model.Position, domain.BatchSummary, error) {
	return s.batchRecords, s.batchSummary, s.err
}

func (s *stubService) List(ctx context.Context, limit, offset int, v view.View) ([]interface{}, domain.ListSummary, error) {
	return s.listData, s.listSummary, s.err
}

func (s *stubService) CheckExists(ctx context.Context, id string) (bool, error) {
	return s.exists, s.err
}

func (s *stubService) Status(ctx context.Context) domain.NamespaceStatus {
	return s.status
}

func setupRouter(devices, users Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log.SetOutput(io.Discard)

	handler := NewHandler(map[string]Service{"devices": devices, "users": users})
	return NewController(handler).Router()
}

func doRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func sampleRecord() *model.Position {
	lat, lng := -12.04, -77.03
	return &model.Position{EntityID: "device-001", Lat: &lat, Lng: &lng, RetrievedAt: "2024-03-10T12:00:00Z"}
}

func TestGetPositionViews(t *testing.T) {
	router := setupRouter(&stubService{record: sampleRecord()}, &stubService{})

	w := doRequest(router, http.MethodGet, "/api/v1/devices/positions/device-001", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var full map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &full))
	assert.Equal(t, "device-001", full["id"])
	assert.Contains(t, full, "retrieved_at")

	w = doRequest(router, http.MethodGet, "/api/v1/devices/positions/device-001?view=gps", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var gps map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &gps))
	assert.Len(t, gps, 3)
	assert.Equal(t, -12.04, gps["lat"])
}

func TestGetPositionNotFound(t *testing.T) {
	router := setupRouter(&stubService{err: errs.Newf(errs.NotFound, "no position recorded for %q", "device-999")}, &stubService{})

	w := doRequest(router, http.MethodGet, "/api/v1/devices/positions/device-999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp["code"])
}

func TestUnknownNamespace(t *testing.T) {
	router := setupRouter(&stubService{}, &stubService{})

	w := doRequest(router, http.MethodGet, "/api/v1/satellites/positions/x", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp["code"])
}

func TestErrorCodeToStatusMapping(t *testing.T) {
	tests := []struct {
		code     errs.Code
		expected int
	}{
		{errs.InvalidIdentifier, http.StatusBadRequest},
		{errs.InvalidBatch, http.StatusBadRequest},
		{errs.InvalidPagination, http.StatusBadRequest},
		{errs.NotFound, http.StatusNotFound},
		{errs.DecodeError, http.StatusInternalServerError},
		{errs.StoreUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			router := setupRouter(&stubService{err: errs.New(tt.code, "boom")}, &stubService{})

			w := doRequest(router, http.MethodGet, "/api/v1/devices/positions/device-001", nil)
			assert.Equal(t, tt.expected, w.Code)

			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, string(tt.code), resp["code"])
		})
	}
}

func TestBatchPositions(t *testing.T) {
	service := &stubService{
		batchRecords: []*model.Position{sampleRecord()},
		batchSummary: domain.BatchSummary{Requested: 2, Found: 1, NotFound: 1, NotFoundIDs: []string{"device-002"}},
	}
	router := setupRouter(service, &stubService{})

	body := []byte(`{"ids":["device-001","device-002"],"view":"gps"}`)
	w := doRequest(router, http.MethodPost, "/api/v1/devices/positions/batch", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data    []map[string]interface{} `json:"data"`
		Summary domain.BatchSummary      `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Data, 1)
	assert.Len(t, resp.Data[0], 3)
	assert.Equal(t, "device-001", resp.Data[0]["id"])
	assert.Equal(t, domain.BatchSummary{Requested: 2, Found: 1, NotFound: 1, NotFoundIDs: []string{"device-002"}}, resp.Summary)
}

func TestBatchPositionsMalformedBody(t *testing.T) {
	router := setupRouter(&stubService{}, &stubService{})

	w := doRequest(router, http.MethodPost, "/api/v1/devices/positions/batch", []byte(`{"ids": not json`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_BATCH", resp["code"])
}

func TestListPositionsRejectsNonNumericPagination(t *testing.T) {
	router := setupRouter(&stubService{}, &stubService{})

	for _, path := range []string{
		"/api/v1/devices/positions?limit=abc",
		"/api/v1/devices/positions?offset=x",
	} {
		w := doRequest(router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "INVALID_PAGINATION", resp["code"])
	}
}

func TestGetExists(t *testing.T) {
	router := setupRouter(&stubService{exists: true}, &stubService{exists: false})

	w := doRequest(router, http.MethodGet, "/api/v1/devices/positions/device-001/exists", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "device-001", resp["id"])
	assert.Equal(t, true, resp["exists"])

	// Non-existence is a success, not an error.
	w = doRequest(router, http.MethodGet, "/api/v1/users/positions/user-999/exists", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["exists"])
}

func TestGetStatus(t *testing.T) {
	healthy := setupRouter(
		&stubService{status: domain.NamespaceStatus{Healthy: true}},
		&stubService{status: domain.NamespaceStatus{Healthy: true}},
	)
	w := doRequest(healthy, http.MethodGet, "/api/v1/status", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	degraded := setupRouter(
		&stubService{status: domain.NamespaceStatus{Healthy: true}},
		&stubService{status: domain.NamespaceStatus{Healthy: false}},
	)
	w = doRequest(degraded, http.MethodGet, "/api/v1/status", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp struct {
		Healthy    bool                               `json:"healthy"`
		Namespaces map[string]domain.NamespaceStatus `json:"namespaces"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Healthy)
	assert.True(t, resp.Namespaces["devices"].Healthy)
	assert.False(t, resp.Namespaces["users"].Healthy)
}

func TestRequestIDMiddleware(t *testing.T) {
	router := setupRouter(&stubService{status: domain.NamespaceStatus{Healthy: true}}, &stubService{status: domain.NamespaceStatus{Healthy: true}})

	w := doRequest(router, http.MethodGet, "/api/v1/status", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	router.ServeHTTP(recorder, req)
	assert.Equal(t, "fixed-id", recorder.Header().Get(RequestIDHeader))
}
