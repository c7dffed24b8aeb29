// Package auth provides a high-level API for persisting and retrieving user credentials from the system keyring.
package auth

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const (
	service = "kiosk"
	user    = "ratings-token"
)

// SetToken persists the ratings service token to the system keyring.
func SetToken(token string) error {
	return keyring.Set(service, user, token)
}

// GetToken retrieves the ratings service token from the system keyring.
func GetToken() (string, error) {
	return keyring.Get(service, user)
}

// Token is a network.TokenSource that treats a missing entry as "no token".
func Token() (string, error) {
	token, err := GetToken()
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return token, err
}

// DeleteToken removes the ratings service token from the system keyring.
func DeleteToken() error {
	return keyring.Delete(service, user)
}
