// Package storage holds uploaded avatar blobs. Two backends exist: local
// disk under a fixed upload directory, and an S3-compatible bucket.
package storage

import "context"

// Store writes and removes avatar blobs. Save returns the reference to
// persist on the user record; Remove accepts that same reference, which
// makes cleanup on a failed registration backend-agnostic.
type Store interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
	Remove(ctx context.Context, ref string) error
}
