package resolve

import (
	"context"
	"encoding/json"
	"fmt"

	"agentscope/internal/store"
)

// Load reads and decodes one entity. Returns (nil, false, nil) when the
// key does not exist.
func Load[T any](ctx context.Context, s store.Store, kind, key string) (*T, bool, error) {
	data, ok, err := s.Get(ctx, kind, key)
	if err != nil {
		return nil, false, fmt.Errorf("load %s/%s: %w", kind, key, err)
	}
	if !ok {
		return nil, false, nil
	}
	entity := new(T)
	if err := json.Unmarshal(data, entity); err != nil {
		return nil, false, fmt.Errorf("decode %s/%s: %w", kind, key, err)
	}
	return entity, true, nil
}

// LoadOrCreate loads an entity or returns a zero-valued one. The second
// return reports whether the entity was created; the caller fills
// identifying fields and saves.
func LoadOrCreate[T any](ctx context.Context, s store.Store, kind, key string) (*T, bool, error) {
	entity, ok, err := Load[T](ctx, s, kind, key)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return entity, false, nil
	}
	return new(T), true, nil
}

// Save encodes and upserts one entity.
func Save(ctx context.Context, s store.Store, kind, key string, entity any) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", kind, key, err)
	}
	if err := s.Put(ctx, kind, key, data); err != nil {
		return fmt.Errorf("save %s/%s: %w", kind, key, err)
	}
	return nil
}
