package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var ErrNotFound = errors.New("key not found")

const (
	TokenKey = "user_token"
	UserKey  = "user"
)

// AttendanceKey is the cache key of a user's attendance record.
func AttendanceKey(userID int64) string {
	return "attendanceStatus_" + strconv.FormatInt(userID, 10)
}

// Store is a string key-value store. Get returns ErrNotFound for missing keys.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

func GetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}
