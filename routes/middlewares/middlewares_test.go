package middlewares

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/oauth"
	"github.com/stretchr/testify/assert"

	"github.com/mbolis/quick-form/airtable"
)

func TestRequireOwner(t *testing.T) {
	var seen string
	handler := RequireOwner(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = OwnerID(r)
	}))

	cases := []struct {
		name   string
		claims map[string]string
		status int
	}{
		{"no claims", nil, http.StatusForbidden},
		{"wrong role", map[string]string{"roles": "guest", "owner_id": "o1"}, http.StatusForbidden},
		{"no owner id", map[string]string{"roles": "owner"}, http.StatusForbidden},
		{"owner", map[string]string{"roles": "admin,owner", "owner_id": "o1"}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest("GET", "/", nil)
			if tc.claims != nil {
				req = req.WithContext(context.WithValue(req.Context(), oauth.ClaimsContext, tc.claims))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "o1", seen)
			}
		})
	}
}

func TestWebhookMAC(t *testing.T) {
	key := []byte("webhook-secret")
	secret := base64.StdEncoding.EncodeToString(key)
	body := `{"base":{"id":"app1"}}`

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(body))
	valid := "hmac-sha256=" + hex.EncodeToString(mac.Sum(nil))

	var got string
	handler := WebhookMAC(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = string(b)
	}))

	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set(airtable.MACHeader, valid)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, got)

	req = httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set(airtable.MACHeader, "hmac-sha256=00")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest("POST", "/", strings.NewReader(strings.Repeat(" ", 1<<20+1)))
	req.Header.Set(airtable.MACHeader, valid)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	open := WebhookMAC("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec = httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest("POST", "/", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, rec.Code)
}
