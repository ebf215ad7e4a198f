package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"media-service/internal/domain"
	"media-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success    bool               `json:"success"`
	Data       json.RawMessage    `json:"data"`
	Message    string             `json:"message"`
	Error      string             `json:"error"`
	Details    []domain.Violation `json:"details"`
	Pagination *Pagination        `json:"pagination"`
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) (http.Handler, *store.MockMediaStore) {
	t.Helper()
	s := store.NewMockMediaStore(nil)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time {
		start = start.Add(time.Second)
		return start
	})
	handler := NewMediaHandler(s, testLogger(), domain.NewValidator())
	return NewRouter(handler, testLogger(), []string{"*"}), s
}

func seed(t *testing.T, s store.MediaStore) []*domain.Media {
	t.Helper()
	created, err := store.Seed(context.Background(), s, store.SampleMedia())
	require.NoError(t, err)
	return created
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func dunePayload() map[string]any {
	return map[string]any{
		"title":    "Dune",
		"type":     "Movie",
		"director": "Denis Villeneuve",
		"budget":   "$165M",
		"location": "Jordan",
		"duration": "155 min",
		"year":     "2021",
	}
}

func decodeMedia(t *testing.T, raw json.RawMessage) domain.Media {
	t.Helper()
	var m domain.Media
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func decodeMediaList(t *testing.T, raw json.RawMessage) []domain.Media {
	t.Helper()
	var items []domain.Media
	require.NoError(t, json.Unmarshal(raw, &items))
	return items
}

func TestCreateThenFetchDune(t *testing.T) {
	h, _ := newTestServer(t)

	rec, env := do(t, h, http.MethodPost, "/api/media", dunePayload())
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Media created successfully", env.Message)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	created := decodeMedia(t, env.Data)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "$165M", created.Budget)
	assert.False(t, created.CreatedAt.IsZero())

	rec, env = do(t, h, http.MethodGet, "/api/media/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decodeMedia(t, env.Data)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Dune", fetched.Title)
	assert.Equal(t, domain.MediaTypeMovie, fetched.Type)
	assert.Equal(t, "155 min", fetched.Duration)
	assert.Equal(t, "2021", fetched.Year)
}

func TestCreateWithTrailingSlash(t *testing.T) {
	h, _ := newTestServer(t)
	rec, env := do(t, h, http.MethodPost, "/api/media/", dunePayload())
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
}

func TestCreateEmptyBodyReportsEveryField(t *testing.T) {
	h, s := newTestServer(t)

	rec, env := do(t, h, http.MethodPost, "/api/media", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Validation error", env.Error)

	fields := make([]string, 0, len(env.Details))
	for _, d := range env.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"title", "type", "director", "budget", "location", "duration", "year"}, fields)

	count, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCreateRejectsUnknownType(t *testing.T) {
	h, _ := newTestServer(t)
	payload := dunePayload()
	payload["type"] = "Documentary"

	rec, env := do(t, h, http.MethodPost, "/api/media", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, env.Details, 1)
	assert.Equal(t, "type", env.Details[0].Field)
}

func TestCreateRejectsWrongFieldType(t *testing.T) {
	h, _ := newTestServer(t)
	payload := dunePayload()
	payload["title"] = 5

	rec, env := do(t, h, http.MethodPost, "/api/media", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation error", env.Error)
	require.Len(t, env.Details, 1)
	assert.Equal(t, "title", env.Details[0].Field)
	assert.Equal(t, "title must be a string", env.Details[0].Message)
}

func TestCreateWrongFieldTypeStillReportsMissingFields(t *testing.T) {
	h, s := newTestServer(t)

	rec, env := do(t, h, http.MethodPost, "/api/media", `{"title": 5}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation error", env.Error)
	require.Len(t, env.Details, 7)

	messages := make(map[string]string, len(env.Details))
	for _, d := range env.Details {
		messages[d.Field] = d.Message
	}
	assert.Equal(t, "title must be a string", messages["title"])
	for _, field := range []string{"type", "director", "budget", "location", "duration", "year"} {
		assert.Equal(t, field+" is required", messages[field])
	}

	count, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestUpdateWrongFieldTypeReportsEveryField(t *testing.T) {
	h, s := newTestServer(t)
	created := seed(t, s)

	payload := dunePayload()
	payload["year"] = 2021
	delete(payload, "budget")

	rec, env := do(t, h, http.MethodPut, "/api/media/"+created[0].ID, payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := make([]string, 0, len(env.Details))
	for _, d := range env.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"year", "budget"}, fields)
}

func TestCreateMalformedJSON(t *testing.T) {
	h, _ := newTestServer(t)
	rec, env := do(t, h, http.MethodPost, "/api/media", `{"title": "Dune",`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid request payload", env.Error)
	assert.Empty(t, env.Details)
}

func TestCreateStoreFailure(t *testing.T) {
	h, s := newTestServer(t)
	s.FailWith = errors.New("connection reset")

	rec, env := do(t, h, http.MethodPost, "/api/media", dunePayload())
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to create media", env.Error)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestListDefaults(t *testing.T) {
	h, s := newTestServer(t)
	created := seed(t, s)

	rec, env := do(t, h, http.MethodGet, "/api/media", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, Pagination{Total: 4, Page: 1, Limit: 10, TotalPages: 1}, *env.Pagination)

	items := decodeMediaList(t, env.Data)
	require.Len(t, items, 4)
	assert.Equal(t, created[3].ID, items[0].ID)
}

func TestListPaginationAndClamp(t *testing.T) {
	h, s := newTestServer(t)
	seed(t, s)

	rec, env := do(t, h, http.MethodGet, "/api/media?page=2&limit=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Pagination{Total: 4, Page: 2, Limit: 3, TotalPages: 2}, *env.Pagination)
	assert.Len(t, decodeMediaList(t, env.Data), 1)

	rec, env = do(t, h, http.MethodGet, "/api/media?limit=500", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100, env.Pagination.Limit)

	rec, env = do(t, h, http.MethodGet, "/api/media?page=7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", string(env.Data))
}

func TestListRejectsBadPagination(t *testing.T) {
	h, _ := newTestServer(t)

	for _, query := range []string{"page=abc", "page=0", "limit=-1", "limit=1.5"} {
		rec, env := do(t, h, http.MethodGet, "/api/media?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
		require.Len(t, env.Details, 1, query)
		assert.Equal(t, strings.SplitN(query, "=", 2)[0], env.Details[0].Field)
	}
}

func TestListSearch(t *testing.T) {
	h, s := newTestServer(t)
	seed(t, s)

	rec, env := do(t, h, http.MethodGet, "/api/media?search=nolan", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decodeMediaList(t, env.Data)
	require.Len(t, items, 1)
	assert.Equal(t, "Inception", items[0].Title)
	assert.Equal(t, 1, env.Pagination.Total)

	rec, env = do(t, h, http.MethodGet, "/api/media?search=zzz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Pagination{Total: 0, Page: 1, Limit: 10, TotalPages: 0}, *env.Pagination)
}

func TestListStoreFailure(t *testing.T) {
	h, s := newTestServer(t)
	s.FailWith = errors.New("boom")

	rec, env := do(t, h, http.MethodGet, "/api/media", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to fetch media", env.Error)
}

func TestGetUnknown(t *testing.T) {
	h, _ := newTestServer(t)
	rec, env := do(t, h, http.MethodGet, "/api/media/does-not-exist", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Media not found", env.Error)
}

func TestUpdateReplacesRecord(t *testing.T) {
	h, s := newTestServer(t)
	created := seed(t, s)
	target := created[1]

	rec, env := do(t, h, http.MethodPut, "/api/media/"+target.ID, dunePayload())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Media updated successfully", env.Message)

	updated := decodeMedia(t, env.Data)
	assert.Equal(t, target.ID, updated.ID)
	assert.Equal(t, "Dune", updated.Title)
	assert.True(t, target.CreatedAt.Equal(updated.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(target.UpdatedAt))
}

func TestUpdateValidationBeforeNotFound(t *testing.T) {
	h, _ := newTestServer(t)

	rec, env := do(t, h, http.MethodPut, "/api/media/missing", map[string]any{"title": "Only title"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, env.Details, 6)

	rec, env = do(t, h, http.MethodPut, "/api/media/missing", dunePayload())
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Media not found", env.Error)
}

func TestDeleteTwice(t *testing.T) {
	h, s := newTestServer(t)
	created := seed(t, s)

	rec, env := do(t, h, http.MethodDelete, "/api/media/"+created[0].ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Media deleted successfully", env.Message)
	assert.Empty(t, env.Data)

	rec, env = do(t, h, http.MethodDelete, "/api/media/"+created[0].ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Media not found", env.Error)

	rec, _ = do(t, h, http.MethodGet, "/api/media/"+created[0].ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteStoreFailure(t *testing.T) {
	h, s := newTestServer(t)
	s.FailWith = errors.New("boom")

	rec, env := do(t, h, http.MethodDelete, "/api/media/any", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to delete media", env.Error)
}

func TestHealth(t *testing.T) {
	h, s := newTestServer(t)
	seed(t, s)

	rec, env := do(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","records":4}`, string(env.Data))

	s.FailWith = errors.New("down")
	rec, env = do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, env.Success)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	h, _ := newTestServer(t)

	rec, env := do(t, h, http.MethodGet, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Route not found", env.Error)

	rec, env = do(t, h, http.MethodPatch, "/api/media/some-id", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed", env.Error)
}
