package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/oauth"

	"github.com/mbolis/quick-form/config"
	"github.com/mbolis/quick-form/database"
)

const (
	ClaimOwnerID = "owner_id"
	refreshTTL   = 8760 * time.Hour
)

type credentialsVerifier struct {
	store *database.Store
}

// NewBearerServer issues owner tokens through the password and
// refresh_token grants.
func NewBearerServer(store *database.Store, cfg config.Config) *oauth.BearerServer {
	return oauth.NewBearerServer(cfg.TokenSecret, cfg.TokenTTL, CredentialsVerifier(store), nil)
}

func CredentialsVerifier(store *database.Store) oauth.CredentialsVerifier {
	return &credentialsVerifier{store}
}

func (cs *credentialsVerifier) ValidateUser(username string, password string, scope string, r *http.Request) error {
	return cs.store.CheckPassword(r.Context(), username, password)
}
func (cs *credentialsVerifier) StoreTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	return cs.store.StoreTokenID(context.Background(), credential, tokenID, refreshTokenID, time.Now().Add(refreshTTL))
}
func (cs *credentialsVerifier) ValidateTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	expiration, err := cs.store.ConsumeTokenID(context.Background(), credential, tokenID, refreshTokenID)
	if err != nil || expiration.Before(time.Now()) {
		return errors.New("could not refresh")
	}
	return nil
}
func (cs *credentialsVerifier) AddClaims(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	owner, err := cs.store.OwnerByUsername(r.Context(), credential)
	if err != nil {
		return nil, err
	}
	return map[string]string{"roles": "owner", ClaimOwnerID: owner.ID}, nil
}
func (*credentialsVerifier) AddProperties(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{}, nil
}
func (*credentialsVerifier) ValidateClient(clientID string, clientSecret string, scope string, r *http.Request) error {
	return errors.New("not supported")
}
