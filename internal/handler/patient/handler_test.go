package patient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medscanhq/medscan-api/internal/handler"
	patientservice "github.com/medscanhq/medscan-api/internal/service/patient"
	"github.com/medscanhq/medscan-api/internal/store/sqlite"
	"github.com/medscanhq/medscan-api/pkg/logger"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := sqlite.New(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, st.Connect(context.Background()))
	require.NoError(t, st.CreateSchema(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	log := logger.New(&logger.Config{Level: logger.ErrorLevel, TimeFormat: time.RFC3339, Output: io.Discard})
	h := NewHandler(patientservice.NewService(st, log))

	r := gin.New()
	r.POST("/patients", h.Create)
	r.GET("/patients/search", h.Search)
	r.GET("/patients/:id", h.Get)
	r.DELETE("/patients/:id", h.Delete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.Response {
	t.Helper()
	var resp handler.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreatePatientEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/patients", gin.H{
		"email": "api@example.com",
		"name":  "Api Patient",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	resp := decode(t, w)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "api@example.com", data["email"])
	assert.NotEmpty(t, data["id"])
}

func TestCreatePatientRejectsBadBody(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/patients", gin.H{"email": "not-an-email", "name": "X"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decode(t, w).Success)
}

func TestDuplicateEmailReturnsConflict(t *testing.T) {
	r := newTestRouter(t)
	body := gin.H{"email": "dup@example.com", "name": "Dup Patient"}

	w := doJSON(t, r, http.MethodPost, "/patients", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/patients", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetUnknownPatientReturns404(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/patients/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, decode(t, w).Success)
}

func TestDeleteThenGet(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/patients", gin.H{"email": "gone@example.com", "name": "Gone Patient"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w).Data.(map[string]interface{})["id"].(string)

	w = doJSON(t, r, http.MethodDelete, "/patients/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/patients/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/patients", gin.H{"email": "find@example.com", "name": "Findable Person"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/patients/search?q=findable", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	results, ok := decode(t, w).Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, results, 1)

	// A one-character query is treated as empty.
	w = doJSON(t, r, http.MethodGet, "/patients/search?q=f", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	results, ok = decode(t, w).Data.([]interface{})
	require.True(t, ok)
	assert.Empty(t, results)
}
