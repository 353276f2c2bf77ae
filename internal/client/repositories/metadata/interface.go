// Package metadata stores small key/value records of the local vault: the
// cached profile of the signed-in user and the settings documents.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyProfile       = "profile"
	KeyNotifications = "settings.notifications"
	KeySecurity      = "settings.security"
)

// Repository is a key/value store. Get returns (nil, nil) for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
