package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/futig/rafiq-frontend/internal/config"
	"github.com/futig/rafiq-frontend/internal/pkg/logger"
)

// ConversationHeader lets API clients pick their conversation without cookies
const ConversationHeader = "X-Conversation-ID"

type conversationKey struct{}

// Session binds every request to a conversation id.
// The id comes from the X-Conversation-ID header, then the session cookie;
// a new one is issued as a cookie when neither holds a valid UUID.
func Session(cfg config.WebConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := validID(r.Header.Get(ConversationHeader))
			if id == "" {
				if c, err := r.Cookie(cfg.CookieName); err == nil {
					id = validID(c.Value)
				}
				if id == "" {
					id = uuid.NewString()
					http.SetCookie(w, &http.Cookie{
						Name:     cfg.CookieName,
						Value:    id,
						Path:     "/",
						MaxAge:   int(cfg.CookieMaxAge.Seconds()),
						HttpOnly: true,
						Secure:   cfg.CookieSecure,
						SameSite: http.SameSiteLaxMode,
					})
				}
			}

			ctx := context.WithValue(r.Context(), conversationKey{}, id)
			ctx = logger.WithConversation(ctx, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ConversationID returns the id bound by Session, or "" outside of it.
func ConversationID(ctx context.Context) string {
	id, _ := ctx.Value(conversationKey{}).(string)
	return id
}

func validID(raw string) string {
	id, err := uuid.Parse(raw)
	if err != nil {
		return ""
	}
	return id.String()
}
