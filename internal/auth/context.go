package auth

import "net/http"

// ContextKey is the type used for context keys
type ContextKey string

// ContextKeyUsername is the key for the session username in the context
const ContextKeyUsername ContextKey = "username"

// GetUsername retrieves the authenticated username from the request context.
func GetUsername(r *http.Request) string {
	if name, ok := r.Context().Value(ContextKeyUsername).(string); ok {
		return name
	}
	return ""
}
