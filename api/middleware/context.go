package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxOperatorID   contextKey = "operator_id"
	ctxOperatorRole contextKey = "operator_role"
)

// OperatorIDFromContext returns the authenticated operator, or uuid.Nil.
func OperatorIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxOperatorID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxOperatorRole).(string); ok {
		return v
	}
	return ""
}

// WithOperator seeds the context for tests and internal calls.
func WithOperator(ctx context.Context, operatorID uuid.UUID, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxOperatorID, operatorID)
	return context.WithValue(ctx, ctxOperatorRole, role)
}
