package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/prostorehq/storefront-backend/pkg/config"
	"github.com/prostorehq/storefront-backend/pkg/logger"
)

// CartSession guarantees every shopper carries a cart session cookie. A
// missing or empty cookie gets a freshly minted identifier so guest carts
// survive across requests before sign-in.
func CartSession(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionCartID := ""
			if cookie, err := r.Cookie(cfg.CartCookieName); err == nil {
				sessionCartID = cookie.Value
			}

			if sessionCartID == "" {
				sessionCartID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CartCookieName,
					Value:    sessionCartID,
					Path:     "/",
					Expires:  time.Now().Add(cfg.CartCookieTTL),
					MaxAge:   int(cfg.CartCookieTTL / time.Second),
					HttpOnly: true,
					Secure:   cfg.CookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := WithSessionCartID(r.Context(), sessionCartID)
			if logg != nil {
				ctx = logg.WithSessionCartID(ctx, sessionCartID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
