package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/Zdenek156/bereifung24-scheduling/internal/clock"
	"github.com/Zdenek156/bereifung24-scheduling/internal/lock"
	"github.com/Zdenek156/bereifung24-scheduling/internal/models"
)

// refreshMargin: tokens are refreshed proactively when they expire within
// this window.
const refreshMargin = 5 * time.Minute

type CredentialStore interface {
	GetCredential(ctx context.Context, ownerType string, ownerID uint) (*models.CalendarCredential, error)
	SaveCredential(ctx context.Context, cred *models.CalendarCredential) error
}

// TokenVault hands out access tokens for calendar owners, refreshing them
// transparently before they expire. Refreshes are serialized per owner so
// two requests never race against the same refresh token.
type TokenVault struct {
	store  CredentialStore
	conf   *oauth2.Config
	clock  clock.Clock
	locks  *lock.Keyed
	margin time.Duration
}

func NewTokenVault(store CredentialStore, conf *oauth2.Config, clk clock.Clock) *TokenVault {
	return &TokenVault{
		store:  store,
		conf:   conf,
		clock:  clk,
		locks:  lock.NewKeyed(),
		margin: refreshMargin,
	}
}

// AccessToken returns a token valid for at least the safety margin. A
// failed refresh surfaces as an auth-kind error and leaves the stored
// credential untouched for a later retry.
func (v *TokenVault) AccessToken(ctx context.Context, cred *models.CalendarCredential) (string, error) {
	if cred == nil || cred.RefreshToken == "" {
		return "", &Error{Op: "token", Kind: KindAuth, Err: errors.New("no refresh token on file")}
	}

	now := v.clock.Now()
	if cred.AccessToken != "" && cred.ExpiresAt.After(now.Add(v.margin)) {
		return cred.AccessToken, nil
	}

	key := fmt.Sprintf("%s:%d", cred.OwnerType, cred.OwnerID)
	v.locks.Lock(key)
	defer v.locks.Unlock(key)

	// a concurrent request may have refreshed while we waited for the lock
	if fresh, err := v.store.GetCredential(ctx, cred.OwnerType, cred.OwnerID); err == nil && fresh != nil {
		*cred = *fresh
		if cred.AccessToken != "" && cred.ExpiresAt.After(now.Add(v.margin)) {
			return cred.AccessToken, nil
		}
	}

	tok, err := v.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken}).Token()
	if err != nil {
		return "", &Error{Op: "refresh", Kind: KindAuth, Err: err}
	}

	cred.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		// provider rotated the refresh token as well
		cred.RefreshToken = tok.RefreshToken
	}
	if !tok.Expiry.IsZero() {
		cred.ExpiresAt = tok.Expiry
	} else {
		cred.ExpiresAt = now.Add(time.Hour)
	}

	if err := v.store.SaveCredential(ctx, cred); err != nil {
		return "", err
	}
	return cred.AccessToken, nil
}
