package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/quick-form/app"
	"github.com/mbolis/quick-form/config"
	"github.com/mbolis/quick-form/database"
	"github.com/mbolis/quick-form/httpx"
	"github.com/mbolis/quick-form/model"
)

type tokenReply struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func TestLoginAndRefresh(t *testing.T) {
	store, err := database.Open(filepath.Join(t.TempDir(), "login.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	owner, err := store.CreateOwner(ctx, "alice", "pw")
	require.NoError(t, err)
	_, err = store.CreateForm(ctx, model.Form{
		OwnerID: owner.ID, Title: "Mine", ExternalBaseID: "appBase", ExternalTableID: "tblMine", Active: true,
	})
	require.NoError(t, err)

	cfg := config.Config{TokenSecret: "test-secret", TokenTTL: time.Minute, AirtableURL: "http://localhost", AirtableRPS: 1}
	handler := Wire(app.New(store, cfg, httpx.NewBearerServer(store, cfg)))

	send := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	req := httptest.NewRequest("POST", "/api/login", nil)
	req.SetBasicAuth("alice", "wrong")
	assert.Equal(t, http.StatusUnauthorized, send(req).Code)

	req = httptest.NewRequest("POST", "/api/login", nil)
	req.SetBasicAuth("alice", "pw")
	rec := send(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login tokenReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.AccessToken)
	require.NotEmpty(t, login.RefreshToken)

	// the token carries the owner id, so only this owner's forms come back
	req = httptest.NewRequest("GET", "/api/admin/forms", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rec = send(req)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Forms []model.Form `json:"forms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Forms, 1)
	assert.Equal(t, owner.ID, list.Forms[0].OwnerID)

	req = httptest.NewRequest("GET", "/api/admin/forms", nil)
	assert.Equal(t, http.StatusUnauthorized, send(req).Code)

	req = httptest.NewRequest("POST", "/api/refresh", nil)
	req.Header.Set("Authorization", "Refresh "+login.RefreshToken)
	rec = send(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var refreshed tokenReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))
	assert.NotEmpty(t, refreshed.AccessToken)

	// refresh tokens are single use
	req = httptest.NewRequest("POST", "/api/refresh", nil)
	req.Header.Set("Authorization", "Refresh "+login.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, send(req).Code)
}
