// Package storage caches downloaded roster PDFs on disk, one current copy
// per region.
package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo contains metadata about a cached roster file
type FileInfo struct {
	RegionID    string    `json:"region_id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // Internal storage path
	FetchedAt   time.Time `json:"fetched_at"`
}

// Storage defines the interface for roster cache operations
type Storage interface {
	// Put stores a region's roster, replacing any previous copy
	Put(ctx context.Context, regionID string, filename string, contentType string, r io.Reader) (*FileInfo, error)

	// Get opens the cached roster for a region
	Get(ctx context.Context, regionID string) (io.ReadCloser, *FileInfo, error)

	// FilePath returns the on-disk path of a region's cached roster;
	// PDF parsing works from a path, not a reader
	FilePath(ctx context.Context, regionID string) (string, error)

	// GetInfo returns metadata without opening the file
	GetInfo(ctx context.Context, regionID string) (*FileInfo, error)

	// Delete removes a region's cached roster
	Delete(ctx context.Context, regionID string) error

	// List returns metadata for every cached roster
	List(ctx context.Context) ([]*FileInfo, error)
}

// Config holds storage configuration
type Config struct {
	LocalPath string `yaml:"local_path" env:"STORAGE_LOCAL_PATH" envDefault:"./cache"`
}

// New creates a new Storage implementation based on configuration
func New(cfg *Config) (Storage, error) {
	return NewLocalStorage(cfg.LocalPath)
}
