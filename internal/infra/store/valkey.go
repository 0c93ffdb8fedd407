package store

import (
	"context"
	"fmt"

	"github.com/valkey-io/valkey-go"
)

// ValkeyBackend stores each document as a string value in Valkey.
type ValkeyBackend struct {
	client valkey.Client
	prefix string
}

// NewValkeyBackend constructs a backend; keys are namespaced by prefix when set.
func NewValkeyBackend(client valkey.Client, prefix string) *ValkeyBackend {
	return &ValkeyBackend{client: client, prefix: prefix}
}

func (b *ValkeyBackend) Name() string { return "valkey" }

func (b *ValkeyBackend) Load(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := b.client.Do(ctx, b.client.B().Get().Key(b.key(key)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(payload), true, nil
}

func (b *ValkeyBackend) Save(ctx context.Context, key string, data []byte) error {
	return b.client.Do(ctx, b.client.B().Set().Key(b.key(key)).Value(string(data)).Build()).Error()
}

// Ping checks the connection.
func (b *ValkeyBackend) Ping(ctx context.Context) error {
	return b.client.Do(ctx, b.client.B().Ping().Build()).Error()
}

func (b *ValkeyBackend) key(key string) string {
	if b.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", b.prefix, key)
}

var (
	_ Backend = (*ValkeyBackend)(nil)
	_ Pinger  = (*ValkeyBackend)(nil)
)
