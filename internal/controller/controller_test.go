package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/seed-hypermedia/mintter-sub004/internal/dto"
	"github.com/seed-hypermedia/mintter-sub004/internal/pkg/logger"
	"github.com/seed-hypermedia/mintter-sub004/internal/pkg/serverutils"
	"github.com/seed-hypermedia/mintter-sub004/internal/service"
	internalWS "github.com/seed-hypermedia/mintter-sub004/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const paragraphState = `{"root":{"type":"root","children":[{"type":"paragraph","children":[
	{"type":"text","text":"Hello ","format":0},
	{"type":"text","text":"world","format":1}
]}]}}`

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newApp(register func(r fiber.Router)) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	register(app.Group("/api"))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body, token string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func TestCodecController(t *testing.T) {
	app := newApp(NewCodecController(service.NewCodecService()).RegisterRoutes)

	status, env := do(t, app, http.MethodPost, "/api/codec/v1/flatten", `{"content":`+paragraphState+`}`, "")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	var flat dto.FlattenResponse
	require.NoError(t, json.Unmarshal(env.Data, &flat))
	require.Len(t, flat.Document.Blocks, 1)
	assert.Equal(t, "Hello world", flat.Document.Blocks[0].Text)

	blocks, err := json.Marshal(flat.Document.Blocks)
	require.NoError(t, err)

	status, env = do(t, app, http.MethodPost, "/api/codec/v1/markdown", `{"blocks":`+string(blocks)+`}`, "")
	require.Equal(t, http.StatusOK, status)
	var md dto.MarkdownResponse
	require.NoError(t, json.Unmarshal(env.Data, &md))
	assert.Equal(t, "Hello **world**\n\n", md.Markdown)

	status, env = do(t, app, http.MethodPost, "/api/codec/v1/expand", `{"blocks":`+string(blocks)+`}`, "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"world"`)
}

func TestCodecControllerErrors(t *testing.T) {
	app := newApp(NewCodecController(service.NewCodecService()).RegisterRoutes)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"missing content", "/api/codec/v1/flatten", `{}`},
		{"broken body", "/api/codec/v1/flatten", `{"content":`},
		{"malformed embed", "/api/codec/v1/flatten", `{"content":{"root":{"type":"root","children":[{"type":"paragraph","children":[{"type":"embed","url":"x"}]}]}}}`},
		{"interval out of bounds", "/api/codec/v1/expand", `{"blocks":[{"type":"paragraph","text":"ab","layers":[{"kind":"strong","intervals":[[0,9]]}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, app, http.MethodPost, tt.path, tt.body, "")
			assert.Equal(t, http.StatusBadRequest, status)
			assert.False(t, env.Success)
			assert.Equal(t, http.StatusBadRequest, env.Code)
		})
	}
}

// stubDocumentService answers from a single in-memory document.
type stubDocumentService struct {
	owner uuid.UUID
	id    uuid.UUID
	last  *dto.UpdateDocumentRequest
}

func (s *stubDocumentService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	return &dto.CreateDocumentResponse{Id: s.id, Version: 1}, nil
}

func (s *stubDocumentService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	if err := s.Authorize(ctx, userId, id); err != nil {
		return nil, err
	}
	return &dto.ShowDocumentResponse{Id: id, Title: "t", Version: 1}, nil
}

func (s *stubDocumentService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocumentRequest) (*dto.UpdateDocumentResponse, error) {
	s.last = req
	if err := s.Authorize(ctx, userId, req.Id); err != nil {
		return nil, err
	}
	return &dto.UpdateDocumentResponse{Id: req.Id, Version: 2}, nil
}

func (s *stubDocumentService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	return s.Authorize(ctx, userId, id)
}

func (s *stubDocumentService) List(ctx context.Context, userId uuid.UUID, req *dto.ListDocumentsRequest) (*dto.ListDocumentsResponse, error) {
	return &dto.ListDocumentsResponse{Items: []dto.DocumentSummary{}, Limit: req.Limit, Offset: req.Offset}, nil
}

func (s *stubDocumentService) Authorize(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	if userId != s.owner || id != s.id {
		return serverutils.ErrNotFound
	}
	return nil
}

func signToken(t *testing.T, userId uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userId.String()})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestDocumentController(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	stub := &stubDocumentService{owner: uuid.New(), id: uuid.New()}
	hub := internalWS.NewHub(nil, logger.NewNopLogger())
	app := newApp(NewDocumentController(stub, hub, logger.NewNopLogger()).RegisterRoutes)
	token := signToken(t, stub.owner)
	docPath := "/api/document/v1/" + stub.id.String()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		token  string
		want   int
	}{
		{"no token", http.MethodGet, docPath, "", "", http.StatusUnauthorized},
		{"create", http.MethodPost, "/api/document/v1", `{"title":"t","content":` + paragraphState + `}`, token, http.StatusOK},
		{"create without title", http.MethodPost, "/api/document/v1", `{"content":` + paragraphState + `}`, token, http.StatusBadRequest},
		{"show", http.MethodGet, docPath, "", token, http.StatusOK},
		{"show bad id", http.MethodGet, "/api/document/v1/not-a-uuid", "", token, http.StatusBadRequest},
		{"show other user", http.MethodGet, docPath, "", signToken(t, uuid.New()), http.StatusNotFound},
		{"update", http.MethodPut, docPath, `{"title":"t","content":` + paragraphState + `,"version":1}`, token, http.StatusOK},
		{"list", http.MethodGet, "/api/document/v1?limit=5&offset=10", "", token, http.StatusOK},
		{"list over limit", http.MethodGet, "/api/document/v1?limit=500", "", token, http.StatusBadRequest},
		{"delete", http.MethodDelete, docPath, "", token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := do(t, app, tt.method, tt.path, tt.body, tt.token)
			assert.Equal(t, tt.want, status)
		})
	}

	require.NotNil(t, stub.last)
	assert.Equal(t, stub.id, stub.last.Id)
	assert.Equal(t, 1, stub.last.Version)
}

func TestDocumentLiveHandshake(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	stub := &stubDocumentService{owner: uuid.New(), id: uuid.New()}
	hub := internalWS.NewHub(nil, logger.NewNopLogger())
	app := newApp(NewDocumentController(stub, hub, logger.NewNopLogger()).RegisterRoutes)
	livePath := "/api/document/v1/" + stub.id.String() + "/live"

	status, _ := do(t, app, http.MethodGet, livePath, "", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, app, http.MethodGet, livePath+"?token="+signToken(t, uuid.New()), "", "")
	assert.Equal(t, http.StatusNotFound, status)

	// A plain GET from the owner is not an upgrade request.
	status, _ = do(t, app, http.MethodGet, livePath+"?token="+signToken(t, stub.owner), "", "")
	assert.Equal(t, http.StatusUpgradeRequired, status)
}
