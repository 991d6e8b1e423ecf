package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kms/internal/models"
	"kms/internal/repository"
	"kms/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type knowledgeMocks struct {
	knowledge  *MockKnowledgeRepository
	technology *MockTechnologyRepository
	comment    *MockCommentRepository
}

func newKnowledgeTestServer() (*Server, knowledgeMocks) {
	m := knowledgeMocks{
		knowledge:  new(MockKnowledgeRepository),
		technology: new(MockTechnologyRepository),
		comment:    new(MockCommentRepository),
	}
	s := &Server{
		config:       testConfig(),
		knowledgeSvc: service.NewKnowledgeService(m.knowledge, m.technology, m.comment),
	}
	return s, m
}

func withUser(app *fiber.App, userID uint) {
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
}

func jsonRequest(method, target string, body any) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCreateKnowledge(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]any
		mockSetup      func(knowledgeMocks)
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]any{
				"technology": "Go",
				"level":      "Junior",
				"title":      "Goroutines",
				"content":    "Lightweight threads",
				"tags":       []string{"concurrency"},
			},
			mockSetup: func(m knowledgeMocks) {
				m.technology.On("GetByName", mock.Anything, "Go").
					Return(&models.Technology{ID: 2, Name: "Go"}, nil)
				m.knowledge.On("Create", mock.Anything, mock.Anything).Return(nil)
				m.knowledge.On("GetByID", mock.Anything, mock.Anything).
					Return(&models.Knowledge{ID: 1, Title: "Goroutines", Status: models.StatusPending}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Unknown Technology",
			body: map[string]any{
				"technology": "COBOL",
				"title":      "History",
				"content":    "Legacy",
			},
			mockSetup: func(m knowledgeMocks) {
				m.technology.On("GetByName", mock.Anything, "COBOL").Return(nil, nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing Fields",
			body:           map[string]any{"technology": "Go"},
			mockSetup:      func(m knowledgeMocks) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := newKnowledgeTestServer()
			app := fiber.New()
			withUser(app, 1)
			app.Post("/knowledge", s.CreateKnowledge)

			tt.mockSetup(m)
			resp, _ := app.Test(jsonRequest(http.MethodPost, "/knowledge", tt.body))
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestCreateKnowledgeStartsPending(t *testing.T) {
	s, m := newKnowledgeTestServer()
	app := fiber.New()
	withUser(app, 9)
	app.Post("/knowledge", s.CreateKnowledge)

	var created *models.Knowledge
	m.technology.On("GetByName", mock.Anything, "Go").
		Return(&models.Technology{ID: 2, Name: "Go"}, nil)
	m.knowledge.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*models.Knowledge)
	}).Return(nil)
	m.knowledge.On("GetByID", mock.Anything, mock.Anything).
		Return(&models.Knowledge{ID: 1}, nil)

	resp, _ := app.Test(jsonRequest(http.MethodPost, "/knowledge", map[string]any{
		"technology": "Go",
		"title":      "Channels",
		"content":    "Communicate by sharing",
		// A caller-supplied status must not bypass moderation
		"status": models.StatusApproved,
	}))
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, created)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, uint(9), created.AuthorID)
	require.NotNil(t, created.TechnologyID)
	assert.Equal(t, uint(2), *created.TechnologyID)
}

func TestUpdateKnowledge(t *testing.T) {
	existing := &models.Knowledge{ID: 5, AuthorID: 1, Status: models.StatusApproved}

	tests := []struct {
		name           string
		userID         uint
		body           map[string]any
		mockSetup      func(knowledgeMocks)
		expectedStatus int
	}{
		{
			name:   "Author Updates",
			userID: 1,
			body:   map[string]any{"technology": "Go", "title": "New", "content": "Body"},
			mockSetup: func(m knowledgeMocks) {
				m.knowledge.On("GetByID", mock.Anything, uint(5)).Return(existing, nil)
				m.knowledge.On("Update", mock.Anything, uint(5), mock.Anything).
					Return(&models.Knowledge{ID: 5, Title: "New"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "Non-Author Forbidden",
			userID: 2,
			body:   map[string]any{"title": "Hijack"},
			mockSetup: func(m knowledgeMocks) {
				m.knowledge.On("GetByID", mock.Anything, uint(5)).Return(existing, nil)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "Missing Article",
			userID: 1,
			body:   map[string]any{"title": "Anything"},
			mockSetup: func(m knowledgeMocks) {
				m.knowledge.On("GetByID", mock.Anything, uint(5)).
					Return(nil, models.NewNotFoundError("Knowledge", uint(5)))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "Invalid Status",
			userID: 1,
			body:   map[string]any{"title": "X", "status": "Published"},
			mockSetup: func(m knowledgeMocks) {
				m.knowledge.On("GetByID", mock.Anything, uint(5)).Return(existing, nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := newKnowledgeTestServer()
			app := fiber.New()
			withUser(app, tt.userID)
			app.Put("/knowledge/:id", s.UpdateKnowledge)

			tt.mockSetup(m)
			resp, _ := app.Test(jsonRequest(http.MethodPut, "/knowledge/5", tt.body))
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestUpdateKnowledgeKeepsStatusWhenOmitted(t *testing.T) {
	s, m := newKnowledgeTestServer()
	app := fiber.New()
	withUser(app, 1)
	app.Put("/knowledge/:id", s.UpdateKnowledge)

	var updated map[string]interface{}
	m.knowledge.On("GetByID", mock.Anything, uint(5)).
		Return(&models.Knowledge{ID: 5, AuthorID: 1, Status: models.StatusApproved}, nil)
	m.knowledge.On("Update", mock.Anything, uint(5), mock.Anything).Run(func(args mock.Arguments) {
		updated = args.Get(2).(map[string]interface{})
	}).Return(&models.Knowledge{ID: 5}, nil)

	resp, _ := app.Test(jsonRequest(http.MethodPut, "/knowledge/5", map[string]any{
		"technology": "Go",
		"title":      "Edited",
		"content":    "Edited body",
	}))
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, updated)
	_, hasStatus := updated["status"]
	assert.False(t, hasStatus, "omitted status must keep the stored value")
	assert.Equal(t, "Edited", updated["title"])
}

func TestDeleteKnowledge(t *testing.T) {
	existing := &models.Knowledge{ID: 5, AuthorID: 1}

	tests := []struct {
		name           string
		userID         uint
		mockSetup      func(knowledgeMocks)
		expectedStatus int
	}{
		{
			name:   "Author Deletes",
			userID: 1,
			mockSetup: func(m knowledgeMocks) {
				m.knowledge.On("GetByID", mock.Anything, uint(5)).Return(existing, nil)
				m.knowledge.On("Delete", mock.Anything, uint(5)).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "Non-Author Forbidden",
			userID: 2,
			mockSetup: func(m knowledgeMocks) {
				m.knowledge.On("GetByID", mock.Anything, uint(5)).Return(existing, nil)
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := newKnowledgeTestServer()
			app := fiber.New()
			withUser(app, tt.userID)
			app.Delete("/knowledge/:id", s.DeleteKnowledge)

			tt.mockSetup(m)
			resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/knowledge/5", nil))
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestUpdateKnowledgeStatus(t *testing.T) {
	t.Run("Moderation Ignores Ownership", func(t *testing.T) {
		s, m := newKnowledgeTestServer()
		app := fiber.New()
		withUser(app, 99) // not the author
		app.Patch("/knowledge/:id/status", s.UpdateKnowledgeStatus)

		m.knowledge.On("Update", mock.Anything, uint(5),
			map[string]interface{}{"status": models.StatusApproved}).
			Return(&models.Knowledge{ID: 5, AuthorID: 1, Status: models.StatusApproved}, nil)

		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/knowledge/5/status",
			map[string]any{"status": models.StatusApproved}))
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var parsed struct {
			Knowledge models.Knowledge `json:"knowledge"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
		assert.Equal(t, models.StatusApproved, parsed.Knowledge.Status)
	})

	t.Run("Rejects Unknown Status", func(t *testing.T) {
		s, _ := newKnowledgeTestServer()
		app := fiber.New()
		withUser(app, 1)
		app.Patch("/knowledge/:id/status", s.UpdateKnowledgeStatus)

		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/knowledge/5/status",
			map[string]any{"status": "Live"}))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSearchKnowledge(t *testing.T) {
	s, m := newKnowledgeTestServer()
	app := fiber.New()
	app.Get("/knowledge/search", s.SearchKnowledge)

	var gotFilter repository.SearchFilter
	m.knowledge.On("Search", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		gotFilter = args.Get(1).(repository.SearchFilter)
	}).Return([]*models.Knowledge{{ID: 1, Title: "Goroutines"}}, nil)

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet,
		"/knowledge/search?technology=go&level=junior&keyword=channel", nil))
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, repository.SearchFilter{
		Technology: "go",
		Level:      "junior",
		Keyword:    "channel",
	}, gotFilter)
}

func TestSearchKnowledgeNoFilters(t *testing.T) {
	s, m := newKnowledgeTestServer()
	app := fiber.New()
	app.Get("/knowledge/search", s.SearchKnowledge)

	m.knowledge.On("Search", mock.Anything, repository.SearchFilter{}).
		Return([]*models.Knowledge{}, nil)

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/knowledge/search", nil))
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateComment(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]any
		mockSetup      func(knowledgeMocks)
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]any{"content": "Nice article"},
			mockSetup: func(m knowledgeMocks) {
				m.knowledge.On("GetByID", mock.Anything, uint(5)).
					Return(&models.Knowledge{ID: 5}, nil)
				m.comment.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Missing Article",
			body: map[string]any{"content": "Orphan"},
			mockSetup: func(m knowledgeMocks) {
				m.knowledge.On("GetByID", mock.Anything, uint(5)).
					Return(nil, models.NewNotFoundError("Knowledge", uint(5)))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Empty Content",
			body:           map[string]any{"content": ""},
			mockSetup:      func(m knowledgeMocks) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := newKnowledgeTestServer()
			app := fiber.New()
			withUser(app, 1)
			app.Post("/knowledge/:id/comments", s.CreateComment)

			tt.mockSetup(m)
			resp, _ := app.Test(jsonRequest(http.MethodPost, "/knowledge/5/comments", tt.body))
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestGetComments(t *testing.T) {
	s, m := newKnowledgeTestServer()
	app := fiber.New()
	app.Get("/knowledge/:id/comments", s.GetComments)

	m.knowledge.On("GetByID", mock.Anything, uint(5)).Return(&models.Knowledge{ID: 5}, nil)
	m.comment.On("ListByKnowledge", mock.Anything, uint(5)).Return([]*models.Comment{
		{ID: 1, Content: "first", KnowledgeID: 5},
		{ID: 2, Content: "second", KnowledgeID: 5},
	}, nil)

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/knowledge/5/comments", nil))
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Comments []models.Comment `json:"comments"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	assert.Len(t, parsed.Comments, 2)
}
