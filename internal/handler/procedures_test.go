package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/buddyai/buddy-server-go/internal/errors"
	"github.com/buddyai/buddy-server-go/internal/middleware"
	"github.com/buddyai/buddy-server-go/internal/model"
	"github.com/buddyai/buddy-server-go/internal/rpc"
	"github.com/buddyai/buddy-server-go/internal/service"
)

type procedureDeps struct {
	agents      *mockAgents
	meetings    *mockMeetings
	transcripts *mockTranscripts
	tokens      *mockTokens
	premium     *mockPremium
}

var testUser = &model.User{ID: "user-1", Name: "Ada", Email: "ada@example.com"}

func newProcedureServer(t *testing.T, user *model.User) (http.Handler, *procedureDeps) {
	t.Helper()
	deps := &procedureDeps{
		agents:      new(mockAgents),
		meetings:    new(mockMeetings),
		transcripts: new(mockTranscripts),
		tokens:      new(mockTokens),
		premium:     new(mockPremium),
	}

	router := rpc.NewRouter(nil)
	RegisterAgentProcedures(router, deps.agents)
	RegisterMeetingProcedures(router, deps.meetings, deps.transcripts, deps.tokens)
	RegisterPremiumProcedures(router, deps.premium)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if user != nil {
				req = req.WithContext(middleware.WithUser(req.Context(), user, &model.Session{ID: "s1", UserID: user.ID}))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Handle("/api/trpc/{procedure}", router)
	return r, deps
}

func callQuery(srv http.Handler, procedure, input string) *httptest.ResponseRecorder {
	target := "/api/trpc/" + procedure
	if input != "" {
		target += "?input=" + url.QueryEscape(input)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func callMutation(srv http.Handler, procedure, input string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/trpc/"+procedure, strings.NewReader(input)))
	return rec
}

func resultData(t *testing.T, rec *httptest.ResponseRecorder) json.RawMessage {
	t.Helper()
	var resp struct {
		Result struct {
			Data json.RawMessage `json:"data"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Result.Data
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorCode {
	t.Helper()
	var resp struct {
		Error struct {
			Code apperrors.ErrorCode `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestProcedures_RequireUser(t *testing.T) {
	srv, _ := newProcedureServer(t, nil)

	for _, procedure := range []string{"agents.getMany", "meetings.getMany", "premium.getProducts"} {
		t.Run(procedure, func(t *testing.T) {
			rec := callQuery(srv, procedure, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, apperrors.ErrCodeUnauthorized, errorCode(t, rec))
		})
	}
}

func TestAgentProcedures(t *testing.T) {
	t.Run("getMany maps pagination and search", func(t *testing.T) {
		srv, deps := newProcedureServer(t, testUser)
		page := service.NewPage([]model.AgentWithMeetingCount{
			{Agent: model.Agent{ID: "a1", Name: "Tutor", UserID: "user-1"}, MeetingCount: 2},
		}, 1, 10)
		deps.agents.On("GetMany", mock.Anything, "user-1", service.ListAgentsParams{
			PageParams: service.PageParams{Page: 2, PageSize: 5},
			Search:     strPtr("tut"),
		}).Return(page, nil)

		rec := callQuery(srv, "agents.getMany", `{"page":2,"pageSize":5,"search":"tut"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		var got service.Page[model.AgentWithMeetingCount]
		require.NoError(t, json.Unmarshal(resultData(t, rec), &got))
		assert.Equal(t, 1, got.Total)
		assert.Equal(t, 2, got.Items[0].MeetingCount)
		deps.agents.AssertExpectations(t)
	})

	t.Run("create validates input", func(t *testing.T) {
		srv, deps := newProcedureServer(t, testUser)

		rec := callMutation(srv, "agents.create", `{"name":"","instructions":"help"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apperrors.ErrCodeValidation, errorCode(t, rec))
		deps.agents.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("create returns agent", func(t *testing.T) {
		srv, deps := newProcedureServer(t, testUser)
		deps.agents.On("Create", mock.Anything, "user-1", "Tutor", "Teach maths").
			Return(&model.Agent{ID: "a1", Name: "Tutor", UserID: "user-1", Instructions: "Teach maths"}, nil)

		rec := callMutation(srv, "agents.create", `{"name":"Tutor","instructions":"Teach maths"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		var got model.Agent
		require.NoError(t, json.Unmarshal(resultData(t, rec), &got))
		assert.Equal(t, "a1", got.ID)
	})

	t.Run("getOne surfaces not found", func(t *testing.T) {
		srv, deps := newProcedureServer(t, testUser)
		deps.agents.On("GetOne", mock.Anything, "user-1", "missing").Return(nil, apperrors.NotFound("Agent"))

		rec := callQuery(srv, "agents.getOne", `{"id":"missing"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, apperrors.ErrCodeNotFound, errorCode(t, rec))
	})

	t.Run("update passes both fields", func(t *testing.T) {
		srv, deps := newProcedureServer(t, testUser)
		deps.agents.On("Update", mock.Anything, "user-1", "a1", model.UpdateAgentParams{
			Name:         strPtr("New"),
			Instructions: strPtr("Do more"),
		}).Return(&model.Agent{ID: "a1", Name: "New"}, nil)

		rec := callMutation(srv, "agents.update", `{"id":"a1","name":"New","instructions":"Do more"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		deps.agents.AssertExpectations(t)
	})
}

func TestMeetingProcedures(t *testing.T) {
	t.Run("getMany converts status filter", func(t *testing.T) {
		srv, deps := newProcedureServer(t, testUser)
		status := model.MeetingStatusCompleted
		deps.meetings.On("GetMany", mock.Anything, "user-1", service.ListMeetingsParams{
			AgentID: strPtr("a1"),
			Status:  &status,
		}).Return(service.NewPage[model.MeetingWithAgent](nil, 0, 10), nil)

		rec := callQuery(srv, "meetings.getMany", `{"agentId":"a1","status":"completed"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"items":[],"total":0,"totalPages":0}`, string(resultData(t, rec)))
		deps.meetings.AssertExpectations(t)
	})

	t.Run("getMany rejects unknown status", func(t *testing.T) {
		srv, _ := newProcedureServer(t, testUser)

		rec := callQuery(srv, "meetings.getMany", `{"status":"archived"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apperrors.ErrCodeValidation, errorCode(t, rec))
	})

	t.Run("update maps optional fields", func(t *testing.T) {
		srv, deps := newProcedureServer(t, testUser)
		status := model.MeetingStatusCancelled
		deps.meetings.On("Update", mock.Anything, "user-1", "m1", model.UpdateMeetingParams{
			Name:   strPtr("Renamed"),
			Status: &status,
		}).Return(&model.Meeting{ID: "m1", Name: "Renamed", Status: status}, nil)

		rec := callMutation(srv, "meetings.update", `{"id":"m1","name":"Renamed","status":"cancelled"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		deps.meetings.AssertExpectations(t)
	})

	t.Run("update ignores media urls", func(t *testing.T) {
		srv, deps := newProcedureServer(t, testUser)
		deps.meetings.On("Update", mock.Anything, "user-1", "m1", model.UpdateMeetingParams{
			Name: strPtr("Renamed"),
		}).Return(&model.Meeting{ID: "m1", Name: "Renamed"}, nil)

		rec := callMutation(srv, "meetings.update",
			`{"id":"m1","name":"Renamed","transcriptUrl":"http://169.254.169.254/latest/meta-data","recordingUrl":"s3://private/key"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		deps.meetings.AssertExpectations(t)
	})

	t.Run("create reports external failure", func(t *testing.T) {
		srv, deps := newProcedureServer(t, testUser)
		deps.meetings.On("Create", mock.Anything, "user-1", "Standup", "a1").
			Return(nil, apperrors.External("video", assert.AnError))

		rec := callMutation(srv, "meetings.create", `{"name":"Standup","agentId":"a1"}`)

		assert.Equal(t, apperrors.ErrCodeExternal, errorCode(t, rec))
	})

	t.Run("getTranscript returns lines", func(t *testing.T) {
		srv, deps := newProcedureServer(t, testUser)
		deps.transcripts.On("GetTranscript", mock.Anything, "user-1", "m1").Return([]model.TranscriptLine{
			{
				TranscriptItem: model.TranscriptItem{SpeakerID: "user-1", Text: "hi"},
				User:           model.Speaker{Name: "Ada"},
			},
		}, nil)

		rec := callQuery(srv, "meetings.getTranscript", `{"id":"m1"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		var got []model.TranscriptLine
		require.NoError(t, json.Unmarshal(resultData(t, rec), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Ada", got[0].User.Name)
	})

	t.Run("generateToken mints video token", func(t *testing.T) {
		srv, deps := newProcedureServer(t, testUser)
		deps.tokens.On("VideoToken", mock.Anything, testUser).Return("video-token", nil)

		rec := callMutation(srv, "meetings.generateToken", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `"video-token"`, string(resultData(t, rec)))
	})

	t.Run("generateChatToken is a mutation", func(t *testing.T) {
		srv, _ := newProcedureServer(t, testUser)

		rec := callQuery(srv, "meetings.generateChatToken", "")

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestPremiumProcedures(t *testing.T) {
	t.Run("getCurrentSubscription returns null without subscription", func(t *testing.T) {
		srv, deps := newProcedureServer(t, testUser)
		deps.premium.On("GetCurrentSubscription", mock.Anything, testUser).Return(nil, nil)

		rec := callQuery(srv, "premium.getCurrentSubscription", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "null", string(resultData(t, rec)))
	})

	t.Run("getProducts reports missing configuration", func(t *testing.T) {
		srv, deps := newProcedureServer(t, testUser)
		deps.premium.On("GetProducts", mock.Anything).Return(nil, apperrors.NotConfigured("Payments"))

		rec := callQuery(srv, "premium.getProducts", "")

		assert.Equal(t, apperrors.ErrCodeNotConfigured, errorCode(t, rec))
	})
}

