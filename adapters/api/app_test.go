package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvprof/adapters/memstore"
	"csvprof/domain/profile"
	"csvprof/internal/config"
)

func newTestApp() *App {
	return NewApp(config.DefaultEngineConfig(), memstore.NewStore(), nil)
}

func inlineBody(t *testing.T, rows int) *bytes.Buffer {
	t.Helper()
	req := inlineRequest{
		Name:    "inline.csv",
		Headers: []string{"amount", "region"},
	}
	regions := []string{"north", "south"}
	for i := 0; i < rows; i++ {
		req.Rows = append(req.Rows, profile.Row{
			"amount": fmt.Sprintf("%d", 10+i%7),
			"region": regions[i%2],
		})
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestProfileInlineEndpoint(t *testing.T) {
	app := newTestApp()

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/profile/inline", inlineBody(t, 40))
	app.Router().ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var report profile.Report
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &report))
	assert.Equal(t, "inline.csv", report.Dataset.Source)
	assert.Equal(t, int64(40), report.Dataset.RowCount)
	assert.Len(t, report.Quality.Dimensions, 10)

	// and the report is retrievable afterwards
	resp = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/reports/"+report.ID.String(), nil)
	app.Router().ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestProfileInlineRejectsBadDepth(t *testing.T) {
	app := newTestApp()

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/profile/inline?depth=extreme", inlineBody(t, 5))
	app.Router().ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestProfileInlineRejectsEmptyDataset(t *testing.T) {
	app := newTestApp()
	body, err := json.Marshal(inlineRequest{Name: "none", Headers: []string{"a"}})
	require.NoError(t, err)

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/profile/inline", bytes.NewBuffer(body))
	app.Router().ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestListAndDeleteReports(t *testing.T) {
	app := newTestApp()

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/profile/inline", inlineBody(t, 20))
	app.Router().ServeHTTP(resp, req)
	require.Equal(t, http.StatusCreated, resp.Code)

	var report profile.Report
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &report))

	resp = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/reports", nil)
	app.Router().ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var listing struct {
		Reports []json.RawMessage `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &listing))
	assert.Len(t, listing.Reports, 1)

	resp = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/reports/"+report.ID.String(), nil)
	app.Router().ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/reports/"+report.ID.String(), nil)
	app.Router().ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestHealth(t *testing.T) {
	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	newTestApp().Router().ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}
