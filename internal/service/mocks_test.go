package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"github.com/buddyai/buddy-server-go/internal/database"
	"github.com/buddyai/buddy-server-go/internal/model"
	"github.com/buddyai/buddy-server-go/internal/repository"
	"github.com/buddyai/buddy-server-go/internal/stream"
)

// fakeTx runs the callback without a real transaction. Mock repositories
// return themselves from WithTx.
type fakeTx struct {
	calls int
}

func (f *fakeTx) WithTx(_ context.Context, fn database.TxFunc) error {
	f.calls++
	return fn(nil)
}

// Mock user repository
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) MarkEmailVerified(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *mockUserRepo) WithTx(_ *sqlx.Tx) repository.UserRepository { return m }

// Mock account repository
type mockAccountRepo struct {
	mock.Mock
}

func (m *mockAccountRepo) FindByUserAndProvider(ctx context.Context, userID, providerID string) (*model.Account, error) {
	args := m.Called(ctx, userID, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *mockAccountRepo) Create(ctx context.Context, params model.CreateAccountParams) (*model.Account, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *mockAccountRepo) WithTx(_ *sqlx.Tx) repository.AccountRepository { return m }

// Mock session repository
type mockSessionRepo struct {
	mock.Mock
}

func (m *mockSessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *mockSessionRepo) Create(ctx context.Context, params model.CreateSessionParams) (*model.Session, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *mockSessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *mockSessionRepo) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSessionRepo) WithTx(_ *sqlx.Tx) repository.SessionRepository { return m }

// Mock verification repository
type mockVerificationRepo struct {
	mock.Mock
}

func (m *mockVerificationRepo) Create(ctx context.Context, params model.CreateVerificationParams) (*model.Verification, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Verification), args.Error(1)
}

func (m *mockVerificationRepo) FindActive(ctx context.Context, identifier, valueHash string) (*model.Verification, error) {
	args := m.Called(ctx, identifier, valueHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Verification), args.Error(1)
}

func (m *mockVerificationRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockVerificationRepo) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockVerificationRepo) WithTx(_ *sqlx.Tx) repository.VerificationRepository { return m }

// Mock agent repository
type mockAgentRepo struct {
	mock.Mock
}

func (m *mockAgentRepo) FindMany(ctx context.Context, filter repository.AgentFilter) ([]model.AgentWithMeetingCount, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AgentWithMeetingCount), args.Error(1)
}

func (m *mockAgentRepo) Count(ctx context.Context, filter repository.AgentFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *mockAgentRepo) FindByID(ctx context.Context, id string) (*model.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agent), args.Error(1)
}

func (m *mockAgentRepo) FindByIDForUser(ctx context.Context, id, userID string) (*model.AgentWithMeetingCount, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AgentWithMeetingCount), args.Error(1)
}

func (m *mockAgentRepo) FindByIDs(ctx context.Context, ids []string) ([]model.Agent, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Agent), args.Error(1)
}

func (m *mockAgentRepo) Create(ctx context.Context, params model.CreateAgentParams) (*model.Agent, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agent), args.Error(1)
}

func (m *mockAgentRepo) Update(ctx context.Context, id, userID string, params model.UpdateAgentParams) (*model.Agent, error) {
	args := m.Called(ctx, id, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agent), args.Error(1)
}

func (m *mockAgentRepo) Delete(ctx context.Context, id, userID string) (*model.Agent, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agent), args.Error(1)
}

func (m *mockAgentRepo) WithTx(_ *sqlx.Tx) repository.AgentRepository { return m }

// Mock meeting repository
type mockMeetingRepo struct {
	mock.Mock
}

func (m *mockMeetingRepo) FindMany(ctx context.Context, filter repository.MeetingFilter) ([]model.MeetingWithAgent, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MeetingWithAgent), args.Error(1)
}

func (m *mockMeetingRepo) Count(ctx context.Context, filter repository.MeetingFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *mockMeetingRepo) FindByID(ctx context.Context, id string) (*model.Meeting, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Meeting), args.Error(1)
}

func (m *mockMeetingRepo) FindByIDForUser(ctx context.Context, id, userID string) (*model.MeetingWithAgent, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MeetingWithAgent), args.Error(1)
}

func (m *mockMeetingRepo) Create(ctx context.Context, params model.CreateMeetingParams) (*model.Meeting, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Meeting), args.Error(1)
}

func (m *mockMeetingRepo) Update(ctx context.Context, id, userID string, params model.UpdateMeetingParams) (*model.Meeting, error) {
	args := m.Called(ctx, id, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Meeting), args.Error(1)
}

func (m *mockMeetingRepo) Delete(ctx context.Context, id, userID string) (*model.Meeting, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Meeting), args.Error(1)
}

func (m *mockMeetingRepo) Transition(ctx context.Context, id string, from []model.MeetingStatus, params model.UpdateMeetingParams) (*model.Meeting, error) {
	args := m.Called(ctx, id, from, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Meeting), args.Error(1)
}

func (m *mockMeetingRepo) WithTx(_ *sqlx.Tx) repository.MeetingRepository { return m }

// Mock call intent repository
type mockIntentRepo struct {
	mock.Mock
}

func (m *mockIntentRepo) Create(ctx context.Context, meetingID string) (*model.CallIntent, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CallIntent), args.Error(1)
}

func (m *mockIntentRepo) MarkCompleted(ctx context.Context, meetingID string) error {
	args := m.Called(ctx, meetingID)
	return args.Error(0)
}

func (m *mockIntentRepo) RecordFailure(ctx context.Context, meetingID, reason string, maxAttempts int) (*model.CallIntent, error) {
	args := m.Called(ctx, meetingID, reason, maxAttempts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CallIntent), args.Error(1)
}

func (m *mockIntentRepo) FindPending(ctx context.Context, olderThan time.Time, limit int) ([]model.CallIntent, error) {
	args := m.Called(ctx, olderThan, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CallIntent), args.Error(1)
}

func (m *mockIntentRepo) CountByStatus(ctx context.Context, status model.CallIntentStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

func (m *mockIntentRepo) WithTx(_ *sqlx.Tx) repository.CallIntentRepository { return m }

// Mock video/chat platform
type mockPlatform struct {
	mock.Mock
}

func (m *mockPlatform) GetOrCreateCall(ctx context.Context, callType, callID string, data stream.CallData) error {
	args := m.Called(ctx, callType, callID, data)
	return args.Error(0)
}

func (m *mockPlatform) UpsertUsers(ctx context.Context, users ...stream.User) error {
	args := m.Called(ctx, users)
	return args.Error(0)
}

func (m *mockPlatform) CreateToken(userID string, expiresAt, issuedAt time.Time) (string, error) {
	args := m.Called(userID, expiresAt, issuedAt)
	return args.String(0), args.Error(1)
}

// Mock transcript fetcher
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	args := m.Called(ctx, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Mock event publisher
type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(ctx context.Context, userID, eventType string, payload any) error {
	args := m.Called(ctx, userID, eventType, payload)
	return args.Error(0)
}

// Mock billing provider
type mockBilling struct {
	mock.Mock
}

func (m *mockBilling) ListProducts(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *mockBilling) FindActiveSubscription(ctx context.Context, email string) (*model.Subscription, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscription), args.Error(1)
}

func strPtr(s string) *string { return &s }
