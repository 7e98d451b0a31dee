package geostore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/bazi-report/internal/domain/geo"
)

// ValkeyStore shares resolutions across instances through a single Valkey hash.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "geocode"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Get(ctx context.Context, key string) (geo.Resolution, bool, error) {
	cmd := s.client.B().Hget().Key(s.hashKey()).Field(key).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return geo.Resolution{}, false, nil
		}
		return geo.Resolution{}, false, err
	}
	var res geo.Resolution
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return geo.Resolution{}, false, fmt.Errorf("decode cached resolution: %w", err)
	}
	return res, true, nil
}

func (s *ValkeyStore) Save(ctx context.Context, key string, res geo.Resolution) error {
	if key == "" {
		return nil
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	cmd := s.client.B().Hset().Key(s.hashKey()).FieldValue().FieldValue(key, string(payload)).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) Delete(ctx context.Context, key string) error {
	return s.client.Do(ctx, s.client.B().Hdel().Key(s.hashKey()).Field(key).Build()).Error()
}

func (s *ValkeyStore) Clear(ctx context.Context) error {
	return s.client.Do(ctx, s.client.B().Del().Key(s.hashKey()).Build()).Error()
}

func (s *ValkeyStore) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.client.Do(ctx, s.client.B().Hkeys().Key(s.hashKey()).Build()).AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *ValkeyStore) hashKey() string {
	return fmt.Sprintf("%s:resolutions", s.prefix)
}

var _ geo.Store = (*ValkeyStore)(nil)
