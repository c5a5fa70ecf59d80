// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// Roles an operator can carry on a counting session.
const (
	RoleCounter    = "counter"
	RoleSupervisor = "supervisor"
)

// OperatorContext contains the authenticated operator information.
type OperatorContext struct {
	Name      string
	Warehouse string
	Role      string
	SessionID string
}

type operatorContextKey struct{}

// WithOperator adds OperatorContext to context.
func WithOperator(ctx context.Context, op *OperatorContext) context.Context {
	return context.WithValue(ctx, operatorContextKey{}, op)
}

// GetOperator returns OperatorContext from context.
func GetOperator(ctx context.Context) *OperatorContext {
	if v, ok := ctx.Value(operatorContextKey{}).(*OperatorContext); ok {
		return v
	}
	return nil
}

// GetOperatorName returns operator name from context or empty string.
func GetOperatorName(ctx context.Context) string {
	if op := GetOperator(ctx); op != nil {
		return op.Name
	}
	return ""
}

// GetWarehouse returns the operator's warehouse from context or empty string.
func GetWarehouse(ctx context.Context) string {
	if op := GetOperator(ctx); op != nil {
		return op.Warehouse
	}
	return ""
}

// IsSupervisor reports whether the operator carries the supervisor role.
func IsSupervisor(ctx context.Context) bool {
	op := GetOperator(ctx)
	return op != nil && op.Role == RoleSupervisor
}
