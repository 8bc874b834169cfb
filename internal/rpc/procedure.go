package rpc

import (
	"context"
	"encoding/json"

	apperrors "github.com/buddyai/buddy-server-go/internal/errors"
	"github.com/buddyai/buddy-server-go/internal/middleware"
	"github.com/buddyai/buddy-server-go/internal/model"
	"github.com/buddyai/buddy-server-go/internal/schema"
)

// Query registers a public read procedure served over GET.
func Query[I, O any](reg Registrar, name string, fn func(ctx context.Context, input I) (O, error)) {
	reg.Handle(name, KindQuery, typed(fn))
}

// Mutation registers a public write procedure served over POST.
func Mutation[I, O any](reg Registrar, name string, fn func(ctx context.Context, input I) (O, error)) {
	reg.Handle(name, KindMutation, typed(fn))
}

// AuthedQuery registers a read procedure that requires a signed-in user.
func AuthedQuery[I, O any](reg Registrar, name string, fn func(ctx context.Context, user *model.User, input I) (O, error)) {
	reg.Handle(name, KindQuery, authed(fn))
}

// AuthedMutation registers a write procedure that requires a signed-in user.
func AuthedMutation[I, O any](reg Registrar, name string, fn func(ctx context.Context, user *model.User, input I) (O, error)) {
	reg.Handle(name, KindMutation, authed(fn))
}

// authed rejects anonymous callers before the input is decoded.
func authed[I, O any](fn func(ctx context.Context, user *model.User, input I) (O, error)) HandlerFunc {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		user := middleware.GetUser(ctx)
		if user == nil {
			return nil, apperrors.Unauthorized("Unauthorized")
		}
		return typed(func(ctx context.Context, input I) (O, error) {
			return fn(ctx, user, input)
		})(ctx, raw)
	}
}

func typed[I, O any](fn func(ctx context.Context, input I) (O, error)) HandlerFunc {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var input I
		if err := json.Unmarshal(raw, &input); err != nil {
			return nil, apperrors.ValidationError("invalid input").WithCause(err)
		}
		if err := schema.Validate(&input); err != nil {
			return nil, err
		}
		return fn(ctx, input)
	}
}
