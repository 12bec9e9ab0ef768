package auth

import "context"

type contextKey struct{ name string }

var sourceIPKey = contextKey{"source_ip"}

// WithSourceIP annotates the context with the request origin so audit
// events can record it without widening every operation signature.
func WithSourceIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, sourceIPKey, ip)
}

// SourceIPFromContext returns the request origin set by WithSourceIP.
func SourceIPFromContext(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(sourceIPKey).(string)
	return ip, ok && ip != ""
}
