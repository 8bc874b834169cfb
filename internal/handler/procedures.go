package handler

import (
	"context"

	"github.com/buddyai/buddy-server-go/internal/model"
	"github.com/buddyai/buddy-server-go/internal/rpc"
	"github.com/buddyai/buddy-server-go/internal/schema"
	"github.com/buddyai/buddy-server-go/internal/service"
)

type AgentService interface {
	GetMany(ctx context.Context, userID string, params service.ListAgentsParams) (service.Page[model.AgentWithMeetingCount], error)
	GetOne(ctx context.Context, userID, id string) (*model.AgentWithMeetingCount, error)
	Create(ctx context.Context, userID, name, instructions string) (*model.Agent, error)
	Update(ctx context.Context, userID, id string, params model.UpdateAgentParams) (*model.Agent, error)
	Remove(ctx context.Context, userID, id string) (*model.Agent, error)
}

type MeetingService interface {
	GetMany(ctx context.Context, userID string, params service.ListMeetingsParams) (service.Page[model.MeetingWithAgent], error)
	GetOne(ctx context.Context, userID, id string) (*model.MeetingWithAgent, error)
	Create(ctx context.Context, userID, name, agentID string) (*model.Meeting, error)
	Update(ctx context.Context, userID, id string, params model.UpdateMeetingParams) (*model.Meeting, error)
	Remove(ctx context.Context, userID, id string) (*model.Meeting, error)
}

type TranscriptService interface {
	GetTranscript(ctx context.Context, userID, meetingID string) ([]model.TranscriptLine, error)
}

type TokenService interface {
	VideoToken(ctx context.Context, user *model.User) (string, error)
	ChatToken(ctx context.Context, user *model.User) (string, error)
}

type PremiumService interface {
	GetProducts(ctx context.Context) ([]model.Product, error)
	GetCurrentSubscription(ctx context.Context, user *model.User) (*model.Subscription, error)
}

var (
	_ AgentService      = (*service.AgentService)(nil)
	_ MeetingService    = (*service.MeetingService)(nil)
	_ TranscriptService = (*service.TranscriptService)(nil)
	_ TokenService      = (*service.TokenService)(nil)
	_ PremiumService    = (*service.PremiumService)(nil)
)

// RegisterAgentProcedures mounts agents.* on the router.
func RegisterAgentProcedures(r *rpc.Router, agents AgentService) {
	g := r.Group("agents")

	rpc.AuthedQuery(g, "getMany", func(ctx context.Context, user *model.User, in schema.AgentList) (service.Page[model.AgentWithMeetingCount], error) {
		return agents.GetMany(ctx, user.ID, service.ListAgentsParams{
			PageParams: service.PageParams{Page: in.Page, PageSize: in.PageSize},
			Search:     in.Search,
		})
	})

	rpc.AuthedQuery(g, "getOne", func(ctx context.Context, user *model.User, in schema.ByID) (*model.AgentWithMeetingCount, error) {
		return agents.GetOne(ctx, user.ID, in.ID)
	})

	rpc.AuthedMutation(g, "create", func(ctx context.Context, user *model.User, in schema.AgentInsert) (*model.Agent, error) {
		return agents.Create(ctx, user.ID, in.Name, in.Instructions)
	})

	rpc.AuthedMutation(g, "update", func(ctx context.Context, user *model.User, in schema.AgentUpdate) (*model.Agent, error) {
		return agents.Update(ctx, user.ID, in.ID, model.UpdateAgentParams{
			Name:         &in.Name,
			Instructions: &in.Instructions,
		})
	})

	rpc.AuthedMutation(g, "remove", func(ctx context.Context, user *model.User, in schema.ByID) (*model.Agent, error) {
		return agents.Remove(ctx, user.ID, in.ID)
	})
}

// RegisterMeetingProcedures mounts meetings.* on the router.
func RegisterMeetingProcedures(r *rpc.Router, meetings MeetingService, transcripts TranscriptService, tokens TokenService) {
	g := r.Group("meetings")

	rpc.AuthedQuery(g, "getMany", func(ctx context.Context, user *model.User, in schema.MeetingList) (service.Page[model.MeetingWithAgent], error) {
		params := service.ListMeetingsParams{
			PageParams: service.PageParams{Page: in.Page, PageSize: in.PageSize},
			Search:     in.Search,
			AgentID:    in.AgentID,
		}
		if in.Status != nil {
			status := model.MeetingStatus(*in.Status)
			params.Status = &status
		}
		return meetings.GetMany(ctx, user.ID, params)
	})

	rpc.AuthedQuery(g, "getOne", func(ctx context.Context, user *model.User, in schema.ByID) (*model.MeetingWithAgent, error) {
		return meetings.GetOne(ctx, user.ID, in.ID)
	})

	rpc.AuthedMutation(g, "create", func(ctx context.Context, user *model.User, in schema.MeetingInsert) (*model.Meeting, error) {
		return meetings.Create(ctx, user.ID, in.Name, in.AgentID)
	})

	rpc.AuthedMutation(g, "update", func(ctx context.Context, user *model.User, in schema.MeetingUpdate) (*model.Meeting, error) {
		params := model.UpdateMeetingParams{
			Name:    in.Name,
			AgentID: in.AgentID,
			Summary: in.Summary,
		}
		if in.Status != nil {
			status := model.MeetingStatus(*in.Status)
			params.Status = &status
		}
		return meetings.Update(ctx, user.ID, in.ID, params)
	})

	rpc.AuthedMutation(g, "remove", func(ctx context.Context, user *model.User, in schema.ByID) (*model.Meeting, error) {
		return meetings.Remove(ctx, user.ID, in.ID)
	})

	rpc.AuthedQuery(g, "getTranscript", func(ctx context.Context, user *model.User, in schema.ByID) ([]model.TranscriptLine, error) {
		return transcripts.GetTranscript(ctx, user.ID, in.ID)
	})

	rpc.AuthedMutation(g, "generateToken", func(ctx context.Context, user *model.User, _ schema.Empty) (string, error) {
		return tokens.VideoToken(ctx, user)
	})

	rpc.AuthedMutation(g, "generateChatToken", func(ctx context.Context, user *model.User, _ schema.Empty) (string, error) {
		return tokens.ChatToken(ctx, user)
	})
}

// RegisterPremiumProcedures mounts premium.* on the router.
func RegisterPremiumProcedures(r *rpc.Router, premium PremiumService) {
	g := r.Group("premium")

	rpc.AuthedQuery(g, "getProducts", func(ctx context.Context, _ *model.User, _ schema.Empty) ([]model.Product, error) {
		return premium.GetProducts(ctx)
	})

	rpc.AuthedQuery(g, "getCurrentSubscription", func(ctx context.Context, user *model.User, _ schema.Empty) (*model.Subscription, error) {
		return premium.GetCurrentSubscription(ctx, user)
	})
}
