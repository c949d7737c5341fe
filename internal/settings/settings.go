// Package settings persists the user's credential and theme preference.
package settings

import "context"

// Keys of the persisted values.
const (
	KeyCredential = "apiKey"
	KeyTheme      = "theme"
)

// Store is a small key-value contract; missing values read as "".
type Store interface {
	Credential(ctx context.Context) (string, error)
	SetCredential(ctx context.Context, value string) error
	Theme(ctx context.Context) (string, error)
	SetTheme(ctx context.Context, value string) error
	Close() error
}

// kv is implemented by each backend; keyed adapts it to Store.
type kv interface {
	get(ctx context.Context, key string) (string, error)
	set(ctx context.Context, key, value string) error
}

type keyed struct {
	kv
}

func (k keyed) Credential(ctx context.Context) (string, error) {
	return k.get(ctx, KeyCredential)
}

func (k keyed) SetCredential(ctx context.Context, value string) error {
	return k.set(ctx, KeyCredential, value)
}

func (k keyed) Theme(ctx context.Context) (string, error) {
	return k.get(ctx, KeyTheme)
}

func (k keyed) SetTheme(ctx context.Context, value string) error {
	return k.set(ctx, KeyTheme, value)
}
