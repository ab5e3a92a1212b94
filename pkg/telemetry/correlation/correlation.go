// Package correlation ties together the logs, spans and audit entries that
// belong to one business flow, such as a payment arriving by API and later
// by webhook.
package correlation

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"
)

const maxLen = 128

type ctxKey struct{}

// ExtractCorrelationID returns the ID on ctx, or "".
func ExtractCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// ContextWithCorrelationID stores id after sanitizing it. Unusable values
// leave ctx unchanged.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	id = Sanitize(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

// EnsureCorrelationID keeps an existing ID or generates a ULID.
func EnsureCorrelationID(ctx context.Context) (context.Context, string) {
	if id := ExtractCorrelationID(ctx); id != "" {
		return ctx, id
	}
	id := ulid.Make().String()
	return context.WithValue(ctx, ctxKey{}, id), id
}

// ForPayment sets a deterministic ID for a provider payment so that every
// delivery of the same payment shares it.
func ForPayment(ctx context.Context, provider, paymentID string) context.Context {
	provider = strings.ToLower(strings.TrimSpace(provider))
	paymentID = strings.TrimSpace(paymentID)
	if provider == "" || paymentID == "" {
		return ctx
	}
	return ContextWithCorrelationID(ctx, provider+":"+paymentID)
}

// Sanitize trims the value and rejects anything that is too long or holds
// characters outside [A-Za-z0-9._:-].
func Sanitize(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > maxLen {
		return ""
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == ':' || r == '-':
		default:
			return ""
		}
	}
	return id
}
