package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"deck_srv/internal/config"
	"deck_srv/internal/models"
	"deck_srv/internal/service"
	"deck_srv/internal/statusreport"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDeckService struct {
	mock.Mock
}

func (m *MockDeckService) Generate(ctx context.Context, req statusreport.ReportRequest) (*models.Deck, statusreport.Result) {
	args := m.Called(ctx, req)
	deck, _ := args.Get(0).(*models.Deck)
	return deck, args.Get(1).(statusreport.Result)
}

func (m *MockDeckService) GetDeck(ctx context.Context, id uint) (*models.Deck, error) {
	args := m.Called(ctx, id)
	deck, _ := args.Get(0).(*models.Deck)
	return deck, args.Error(1)
}

func (m *MockDeckService) ListDecks(ctx context.Context, params service.ListDeckParams) (*service.DeckList, error) {
	args := m.Called(ctx, params)
	list, _ := args.Get(0).(*service.DeckList)
	return list, args.Error(1)
}

func (m *MockDeckService) DeleteDeck(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDeckService) GetDeckFile(ctx context.Context, id uint, workbook bool) (io.ReadCloser, *service.DeckFile, error) {
	args := m.Called(ctx, id, workbook)
	rc, _ := args.Get(0).(io.ReadCloser)
	file, _ := args.Get(1).(*service.DeckFile)
	return rc, file, args.Error(2)
}

func (m *MockDeckService) GetDeckURL(ctx context.Context, id uint, workbook bool) (*service.DeckLink, error) {
	args := m.Called(ctx, id, workbook)
	link, _ := args.Get(0).(*service.DeckLink)
	return link, args.Error(1)
}

func setupTestServer() (*Server, *MockDeckService) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := new(MockDeckService)
	builder := statusreport.NewBuilder(statusreport.DefaultBrand(), logger)
	return NewServer(config.Config{}, svc, builder, logger), svc
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	s, _ := setupTestServer()

	rec := do(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestListTools(t *testing.T) {
	s, _ := setupTestServer()

	rec := do(s, http.MethodGet, "/api/v1/tools", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tools []statusreport.ToolDefinition `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Tools, 1)
	assert.Equal(t, "create_tavant_status_report", body.Tools[0].Name)
	require.NotNil(t, body.Tools[0].InputSchema)
	assert.ElementsMatch(t, []string{"project_name", "period_label", "accomplishments"}, body.Tools[0].InputSchema.Required)
}

func TestCreateDeck(t *testing.T) {
	s, svc := setupTestServer()
	deck := &models.Deck{ID: 1, ProjectName: "Apollo", Status: models.DeckStatusCompleted}
	svc.On("Generate", mock.Anything, mock.MatchedBy(func(r statusreport.ReportRequest) bool {
		return r.ProjectName == "Apollo" && len(r.Accomplishments) == 1
	})).Return(deck, statusreport.DefaultBrand().Succeeded("decks/1/a.pptx", 4))

	rec := do(s, http.MethodPost, "/api/v1/decks",
		`{"project_name":"Apollo","period_label":"W50","accomplishments":["Shipped"]}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		Deck   models.Deck         `json:"deck"`
		Result statusreport.Result `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Result.Success)
	assert.Equal(t, 4, body.Result.SlidesCreated)
	assert.Equal(t, "Apollo", body.Deck.ProjectName)
	svc.AssertExpectations(t)
}

func TestCreateDeckFailure(t *testing.T) {
	s, svc := setupTestServer()
	deck := &models.Deck{ID: 2, Status: models.DeckStatusFailed}
	svc.On("Generate", mock.Anything, mock.Anything).
		Return(deck, statusreport.Failed(errors.New("disk full")))

	rec := do(s, http.MethodPost, "/api/v1/decks", `{"project_name":"Apollo","period_label":"W50","accomplishments":[]}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"disk full"`)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestCreateDeckBadRequest(t *testing.T) {
	s, svc := setupTestServer()

	rec := do(s, http.MethodPost, "/api/v1/decks", `{"project_name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, http.MethodPost, "/api/v1/decks", `{"project_name":"Apollo"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "period_label")

	svc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestCreateDeckRejectsInvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing accomplishments", `{"project_name":"Apollo","period_label":"W50"}`, "accomplishments"},
		{"wrong type", `{"project_name":"Apollo","period_label":"W50","accomplishments":"Shipped"}`, "invalid arguments"},
		{"empty project", `{"project_name":"","period_label":"W50","accomplishments":[]}`, "project_name"},
		{"absolute output path", `{"project_name":"Apollo","period_label":"W50","accomplishments":[],"output_path":"/etc/cron.d/deck.pptx"}`, "output_path"},
		{"parent output path", `{"project_name":"Apollo","period_label":"W50","accomplishments":[],"output_path":"../escaped.pptx"}`, "output_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, svc := setupTestServer()

			rec := do(s, http.MethodPost, "/api/v1/decks", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"success":false`)
			assert.Contains(t, rec.Body.String(), tt.want)
			svc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
		})
	}
}

func TestListDecks(t *testing.T) {
	s, svc := setupTestServer()
	failed := models.DeckStatusFailed
	svc.On("ListDecks", mock.Anything, service.ListDeckParams{Page: 2, PageSize: 5, Status: &failed, Search: "apollo"}).
		Return(&service.DeckList{Decks: []models.Deck{{ID: 3}}, Total: 6, Page: 2, PageSize: 5, TotalPages: 2}, nil)

	rec := do(s, http.MethodGet, "/api/v1/decks?page=2&page_size=5&status=failed&search=apollo", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var list service.DeckList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, int64(6), list.Total)
	assert.Len(t, list.Decks, 1)

	rec = do(s, http.MethodGet, "/api/v1/decks?status=archived", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDeck(t *testing.T) {
	s, svc := setupTestServer()
	svc.On("GetDeck", mock.Anything, uint(1)).Return(&models.Deck{ID: 1, ProjectName: "Apollo"}, nil)
	svc.On("GetDeck", mock.Anything, uint(2)).Return(nil, fmt.Errorf("lookup: %w", service.ErrDeckNotFound))

	rec := do(s, http.MethodGet, "/api/v1/decks/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"project_name":"Apollo"`)

	rec = do(s, http.MethodGet, "/api/v1/decks/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(s, http.MethodGet, "/api/v1/decks/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNumberOfCalls(t, "GetDeck", 2)
}

func TestDeleteDeck(t *testing.T) {
	s, svc := setupTestServer()
	svc.On("DeleteDeck", mock.Anything, uint(1)).Return(nil)
	svc.On("DeleteDeck", mock.Anything, uint(9)).Return(errors.New("db down"))

	rec := do(s, http.MethodDelete, "/api/v1/decks/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(s, http.MethodDelete, "/api/v1/decks/9", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDownloadDeck(t *testing.T) {
	s, svc := setupTestServer()
	svc.On("GetDeckFile", mock.Anything, uint(1), true).Return(
		io.NopCloser(strings.NewReader("xlsx-bytes")),
		&service.DeckFile{Name: "a.xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Size: 10},
		nil,
	)
	svc.On("GetDeckFile", mock.Anything, uint(2), false).Return(nil, nil, service.ErrDeckNotReady)

	rec := do(s, http.MethodGet, "/api/v1/decks/1/download?format=xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "xlsx-bytes", rec.Body.String())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="a.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "10", rec.Header().Get("Content-Length"))

	rec = do(s, http.MethodGet, "/api/v1/decks/2/download", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(s, http.MethodGet, "/api/v1/decks/1/download?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeckURL(t *testing.T) {
	s, svc := setupTestServer()
	expires := time.Date(2025, time.December, 13, 16, 45, 0, 0, time.UTC)
	svc.On("GetDeckURL", mock.Anything, uint(1), false).Return(
		&service.DeckLink{URL: "https://decks.example.com/decks/1/a.pptx?X-Amz-Signature=abc", Name: "a.pptx", ExpiresAt: expires}, nil)
	svc.On("GetDeckURL", mock.Anything, uint(2), true).Return(nil, fmt.Errorf("link: %w", service.ErrDeckNotReady))

	rec := do(s, http.MethodGet, "/api/v1/decks/1/url", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var link service.DeckLink
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &link))
	assert.Equal(t, "a.pptx", link.Name)
	assert.Contains(t, link.URL, "X-Amz-Signature")
	assert.True(t, expires.Equal(link.ExpiresAt))

	rec = do(s, http.MethodGet, "/api/v1/decks/2/url?format=xlsx", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(s, http.MethodGet, "/api/v1/decks/1/url?format=docx", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
