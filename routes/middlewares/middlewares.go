package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"

	"github.com/mbolis/quick-form/airtable"
	"github.com/mbolis/quick-form/httpx"
	"github.com/mbolis/quick-form/log"
)

type ctxKey int

const ownerKey ctxKey = iota

// Owner middleware to check for a valid bearer token carrying the 'owner' role.
func Owner(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(secret, nil), RequireOwner).Handler(next)
	}
}

// RequireOwner reads the owner id from verified token claims.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := r.Context().Value(oauth.ClaimsContext).(map[string]string)

		isOwner := false
		if rolesClaim, ok := claims["roles"]; ok {
			for _, role := range strings.Split(rolesClaim, ",") {
				if role == "owner" {
					isOwner = true
					break
				}
			}
		}
		ownerID := claims[httpx.ClaimOwnerID]

		if !isOwner || ownerID == "" {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), ownerKey, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OwnerID returns the authenticated owner of the request.
func OwnerID(r *http.Request) string {
	id, _ := r.Context().Value(ownerKey).(string)
	return id
}

// WebhookMAC rejects webhook deliveries whose MAC does not match secret.
// An empty secret disables the check.
func WebhookMAC(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := httpx.ReadBody(r)
			switch {
			case errors.Is(err, httpx.ErrBodyTooLarge):
				httpx.LogStatus(w, http.StatusRequestEntityTooLarge, log.WarnLevel, "webhook.read_body.too_large")
				return
			case err != nil:
				httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "webhook.read_body")
				return
			}
			if err := airtable.VerifyMAC(secret, r.Header.Get(airtable.MACHeader), body); err != nil {
				httpx.LogStatusMsg(w, http.StatusUnauthorized, log.WarnLevel, "webhook.verify_mac", "%s", err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
