// Package blob stores generated export documents. It is a thin object-store
// abstraction with filesystem, in-memory, and S3 backends; keys map to
// object names directly and objects are immutable once written.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// Driver identifies a concrete blob backend.
type Driver string

const (
	// DriverFilesystem is the local filesystem backend (default, dev).
	DriverFilesystem Driver = "fs"
	// DriverS3 is an S3 / MinIO compatible backend.
	DriverS3 Driver = "s3"
	// DriverMemory is the in-memory backend used in tests.
	DriverMemory Driver = "memory"
)

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string            // MIME type, optional
	Metadata    map[string]string // small, flat user metadata
}

// Info describes a stored document.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	URL          string            `json:"url,omitempty"`
}

// Store is the interface export writers depend on. Put fails when the key
// already exists; documents are never overwritten in place.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// OpenFromEnvFn constructs the S3 backend; wired by the s3 package to keep
// the aws dependency out of default builds' call path until selected.
type OpenFromEnvFn func(ctx context.Context) (Store, error)

// NewStore constructs a Store for the driver. fsRoot applies to the
// filesystem driver only; an empty root defaults to ./exports.
func NewStore(ctx context.Context, driver Driver, fsRoot string, openS3 OpenFromEnvFn) (Store, error) {
	switch driver {
	case DriverFilesystem, "":
		return NewFilesystem(fsRoot)
	case DriverS3:
		if openS3 == nil {
			return nil, fmt.Errorf("s3 blob driver not available")
		}
		return openS3(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

// Open selects a Store implementation using environment variables.
//
//	CATALOGCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	CATALOGCORE_BLOB_FS_ROOT: directory root when driver=fs (default ./exports)
//	(S3 specific variables are documented in the s3 package)
func Open(ctx context.Context, openS3 OpenFromEnvFn) (Store, error) {
	driver := Driver(os.Getenv("CATALOGCORE_BLOB_DRIVER"))
	return NewStore(ctx, driver, os.Getenv("CATALOGCORE_BLOB_FS_ROOT"), openS3)
}

func cloneMetadata(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
