package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/portal-cli/internal/dedupe"
	"github.com/sells-group/portal-cli/internal/model"
	"github.com/sells-group/portal-cli/internal/store"
)

func newTestAPI(t *testing.T) *apiServer {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(t.Context()))

	return &apiServer{
		valuations: st,
		detector:   dedupe.NewDetector(dedupe.Options{}),
	}
}

func TestServe_Health(t *testing.T) {
	api := newTestAPI(t)

	rec := httptest.NewRecorder()
	api.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServe_Project(t *testing.T) {
	api := newTestAPI(t)

	body := `{
		"inputs": {"remaining_years": 1},
		"yearly_data": [{"sales": 1000, "pac_percentage": 50, "rent_percentage": 10}]
	}`
	rec := httptest.NewRecorder()
	api.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/valuations/project", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var v model.Valuation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.InDelta(t, 350.0, v.TotalPrice, 0.0001)
	require.Len(t, v.Projections, 1)
	assert.InDelta(t, 350.0, v.Projections[0].CfValue, 0.0001)
}

func TestServe_ProjectRejectsBadInputs(t *testing.T) {
	api := newTestAPI(t)

	rec := httptest.NewRecorder()
	api.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/valuations/project",
		strings.NewReader(`{"inputs": {"remaining_years": 1, "discount_rate": -100}}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	api.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/valuations/project",
		strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe_CreateAndGetValuation(t *testing.T) {
	api := newTestAPI(t)

	body := `{
		"label": "test case",
		"inputs": {"remaining_years": 1},
		"yearly_data": [{"sales": 1000, "pac_percentage": 50, "rent_percentage": 10}]
	}`
	rec := httptest.NewRecorder()
	api.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/valuations", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Valuation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	rec = httptest.NewRecorder()
	api.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/valuations/"+created.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.Valuation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "test case", got.Label)
	assert.InDelta(t, 350.0, got.TotalPrice, 0.0001)

	rec = httptest.NewRecorder()
	api.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/valuations", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.Valuation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestServe_GetValuationNotFound(t *testing.T) {
	api := newTestAPI(t)

	rec := httptest.NewRecorder()
	api.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/valuations/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServe_RegistryUnavailableWithoutPostgres(t *testing.T) {
	api := newTestAPI(t)

	rec := httptest.NewRecorder()
	api.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/duplicates", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	api.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/merges",
		strings.NewReader(`{"primary_id":"a","duplicate_ids":["b"]}`)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
