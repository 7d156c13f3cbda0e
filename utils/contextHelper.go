package utils

import (
	"context"

	"github.com/xmustafa5/b2b-exommmerce-sub003/appctx"
)

var (
	ContextKeyUserId        = appctx.ContextKeyUserId
	ContextKeyUserName      = appctx.ContextKeyUserName
	ContextKeyActorRole     = appctx.ContextKeyActorRole
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
)

// GetUserId is the zero-default form for audit fields, where an absent
// actor is recorded as 0.
func GetUserId(ctx context.Context) int {
	userId, _ := appctx.GetInt(ctx, ContextKeyUserId)
	return userId
}

func GetActorRoleFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyActorRole)
}

func GetCorrelationId(ctx context.Context) string {
	correlationId, _ := appctx.GetString(ctx, ContextKeyCorrelationId)
	return correlationId
}

func SetUserIdInContext(ctx context.Context, userId int) context.Context {
	return appctx.Set(ctx, ContextKeyUserId, userId)
}

func SetUserNameInContext(ctx context.Context, userName string) context.Context {
	return appctx.Set(ctx, ContextKeyUserName, userName)
}

func SetActorRoleInContext(ctx context.Context, role string) context.Context {
	return appctx.Set(ctx, ContextKeyActorRole, role)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}
