package capture

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"axiapac.com/selfservice/infrastructure/filesystem"
)

// Source produces a photo.
type Source interface {
	Capture(ctx context.Context) (*Photo, error)
}

type FileSource struct {
	Path string
}

func (s FileSource) Capture(ctx context.Context) (*Photo, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo %s: %w", s.Path, err)
	}
	return NewPhoto(filepath.Base(s.Path), data)
}

type S3Source struct {
	Client filesystem.ObjectGetter
	Bucket string
	Key    string
}

func (s S3Source) Capture(ctx context.Context) (*Photo, error) {
	var buf bytes.Buffer
	if err := filesystem.ReadFile(ctx, s.Client, s.Bucket, s.Key, &buf); err != nil {
		return nil, err
	}
	return NewPhoto(filepath.Base(s.Key), buf.Bytes())
}

// ParseLocation returns the bucket and key of an s3://bucket/key location.
func ParseLocation(location string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(location, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// Run captures from src on its own goroutine and hands the result over via
// the returned Pending.
func Run(ctx context.Context, src Source) *Pending {
	pending, resolver := Request()
	go func() {
		photo, err := src.Capture(ctx)
		if err != nil {
			resolver.Reject(err)
			return
		}
		resolver.Resolve(photo)
	}()
	return pending
}
