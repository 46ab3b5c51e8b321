package feed

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/tartampluch/go-eracal/internal/config"
)

// Password returns the password stored in the OS keyring for user. An
// empty user or a missing entry yields an empty password.
func Password(user string) (string, error) {
	if user == "" {
		return "", nil
	}
	pass, err := keyring.Get(config.KeyringService, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrKeyring, err)
	}
	return pass, nil
}

// StorePassword saves pass for user in the OS keyring.
func StorePassword(user, pass string) error {
	if err := keyring.Set(config.KeyringService, user, pass); err != nil {
		return fmt.Errorf("%s: %w", config.ErrKeyringStore, err)
	}
	return nil
}
