package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/buddyai/buddy-server-go/internal/model"
	"github.com/buddyai/buddy-server-go/internal/service"
)

type mockAuth struct{ mock.Mock }

func (m *mockAuth) SignUp(ctx context.Context, params service.SignUpParams) (*service.AuthResult, error) {
	args := m.Called(ctx, params)
	result, _ := args.Get(0).(*service.AuthResult)
	return result, args.Error(1)
}

func (m *mockAuth) SignIn(ctx context.Context, params service.SignInParams) (*service.AuthResult, error) {
	args := m.Called(ctx, params)
	result, _ := args.Get(0).(*service.AuthResult)
	return result, args.Error(1)
}

func (m *mockAuth) SignOut(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockAuth) VerifyEmail(ctx context.Context, email, token string) error {
	return m.Called(ctx, email, token).Error(0)
}

type mockAgents struct{ mock.Mock }

func (m *mockAgents) GetMany(ctx context.Context, userID string, params service.ListAgentsParams) (service.Page[model.AgentWithMeetingCount], error) {
	args := m.Called(ctx, userID, params)
	return args.Get(0).(service.Page[model.AgentWithMeetingCount]), args.Error(1)
}

func (m *mockAgents) GetOne(ctx context.Context, userID, id string) (*model.AgentWithMeetingCount, error) {
	args := m.Called(ctx, userID, id)
	agent, _ := args.Get(0).(*model.AgentWithMeetingCount)
	return agent, args.Error(1)
}

func (m *mockAgents) Create(ctx context.Context, userID, name, instructions string) (*model.Agent, error) {
	args := m.Called(ctx, userID, name, instructions)
	agent, _ := args.Get(0).(*model.Agent)
	return agent, args.Error(1)
}

func (m *mockAgents) Update(ctx context.Context, userID, id string, params model.UpdateAgentParams) (*model.Agent, error) {
	args := m.Called(ctx, userID, id, params)
	agent, _ := args.Get(0).(*model.Agent)
	return agent, args.Error(1)
}

func (m *mockAgents) Remove(ctx context.Context, userID, id string) (*model.Agent, error) {
	args := m.Called(ctx, userID, id)
	agent, _ := args.Get(0).(*model.Agent)
	return agent, args.Error(1)
}

type mockMeetings struct{ mock.Mock }

func (m *mockMeetings) GetMany(ctx context.Context, userID string, params service.ListMeetingsParams) (service.Page[model.MeetingWithAgent], error) {
	args := m.Called(ctx, userID, params)
	return args.Get(0).(service.Page[model.MeetingWithAgent]), args.Error(1)
}

func (m *mockMeetings) GetOne(ctx context.Context, userID, id string) (*model.MeetingWithAgent, error) {
	args := m.Called(ctx, userID, id)
	meeting, _ := args.Get(0).(*model.MeetingWithAgent)
	return meeting, args.Error(1)
}

func (m *mockMeetings) Create(ctx context.Context, userID, name, agentID string) (*model.Meeting, error) {
	args := m.Called(ctx, userID, name, agentID)
	meeting, _ := args.Get(0).(*model.Meeting)
	return meeting, args.Error(1)
}

func (m *mockMeetings) Update(ctx context.Context, userID, id string, params model.UpdateMeetingParams) (*model.Meeting, error) {
	args := m.Called(ctx, userID, id, params)
	meeting, _ := args.Get(0).(*model.Meeting)
	return meeting, args.Error(1)
}

func (m *mockMeetings) Remove(ctx context.Context, userID, id string) (*model.Meeting, error) {
	args := m.Called(ctx, userID, id)
	meeting, _ := args.Get(0).(*model.Meeting)
	return meeting, args.Error(1)
}

type mockTranscripts struct{ mock.Mock }

func (m *mockTranscripts) GetTranscript(ctx context.Context, userID, meetingID string) ([]model.TranscriptLine, error) {
	args := m.Called(ctx, userID, meetingID)
	lines, _ := args.Get(0).([]model.TranscriptLine)
	return lines, args.Error(1)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) VideoToken(ctx context.Context, user *model.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *mockTokens) ChatToken(ctx context.Context, user *model.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

type mockPremium struct{ mock.Mock }

func (m *mockPremium) GetProducts(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]model.Product)
	return products, args.Error(1)
}

func (m *mockPremium) GetCurrentSubscription(ctx context.Context, user *model.User) (*model.Subscription, error) {
	args := m.Called(ctx, user)
	sub, _ := args.Get(0).(*model.Subscription)
	return sub, args.Error(1)
}

type mockCallEvents struct{ mock.Mock }

func (m *mockCallEvents) Handle(ctx context.Context, event model.CallEvent) (string, error) {
	args := m.Called(ctx, event)
	return args.String(0), args.Error(1)
}

func strPtr(s string) *string { return &s }
