// Package correlation carries a per-request trace identifier across
// service boundaries, so failures can be matched end-to-end in logs.
package correlation

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header carrying the correlation identifier.
const Header = "X-Correlation-ID"

type ctxKey struct{}

// NewID generates a fresh correlation identifier.
func NewID() string {
	return uuid.NewString()
}

// WithContext returns a context carrying the given correlation identifier.
func WithContext(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, ctxKey{}, cid)
}

// FromContext returns the correlation identifier carried by ctx,
// or "" when none is present.
func FromContext(ctx context.Context) string {
	cid, _ := ctx.Value(ctxKey{}).(string)
	return cid
}
