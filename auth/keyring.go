// Package auth persists the streaming OAuth token in the system keyring.
// Acquiring the token is left to the user; this package only stores it.
package auth

import (
	"errors"

	"github.com/streampane/streampane/log"
	"github.com/zalando/go-keyring"
)

const (
	service = "streampane"
	user    = "oauth-token"
)

// SetToken persists the OAuth token to the system keyring.
func SetToken(token string) error {
	return keyring.Set(service, user, token)
}

// GetToken retrieves the OAuth token from the system keyring.
func GetToken() (string, error) {
	return keyring.Get(service, user)
}

// DeleteToken removes the OAuth token from the system keyring.
func DeleteToken() error {
	return keyring.Delete(service, user)
}

// Token returns the stored token, or "" when none is stored or the keyring is unavailable.
// Requests then go out without the oauth parameter.
func Token() string {
	token, err := GetToken()
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			log.Warnf("oauth token unavailable: %v", err)
		}
		return ""
	}
	return token
}
