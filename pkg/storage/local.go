package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage implements Storage using the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local filesystem storage
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	// Ensure base path exists
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{basePath: basePath}, nil
}

// Put stores a region's roster and returns its metadata. An existing cached
// copy for the region is replaced.
func (s *LocalStorage) Put(ctx context.Context, regionID string, filename string, contentType string, r io.Reader) (*FileInfo, error) {
	regionDir := filepath.Join(s.basePath, sanitizeFilename(regionID))
	if err := os.MkdirAll(regionDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create region directory: %w", err)
	}

	if old, err := s.GetInfo(ctx, regionID); err == nil {
		os.Remove(filepath.Join(regionDir, old.Path))
	}

	storedFilename := sanitizeFilename(filename)
	filePath := filepath.Join(regionDir, storedFilename)

	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(filePath) // Cleanup on error
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	info := &FileInfo{
		RegionID:    regionID,
		Name:        filename,
		Size:        size,
		ContentType: contentType,
		Path:        storedFilename,
		FetchedAt:   time.Now(),
	}

	if err := s.saveMetadata(regionID, info); err != nil {
		os.Remove(filePath) // Cleanup on error
		return nil, err
	}

	return info, nil
}

// Get opens the cached roster for a region
func (s *LocalStorage) Get(ctx context.Context, regionID string) (io.ReadCloser, *FileInfo, error) {
	info, err := s.GetInfo(ctx, regionID)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(s.basePath, sanitizeFilename(regionID), info.Path))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	return f, info, nil
}

// FilePath returns the on-disk path of a region's cached roster
func (s *LocalStorage) FilePath(ctx context.Context, regionID string) (string, error) {
	info, err := s.GetInfo(ctx, regionID)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, sanitizeFilename(regionID), info.Path), nil
}

// GetInfo returns metadata without opening the file
func (s *LocalStorage) GetInfo(ctx context.Context, regionID string) (*FileInfo, error) {
	data, err := os.ReadFile(s.metaPath(regionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no cached roster for region: %s", regionID)
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var info FileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	return &info, nil
}

// Delete removes a region's cached roster
func (s *LocalStorage) Delete(ctx context.Context, regionID string) error {
	info, err := s.GetInfo(ctx, regionID)
	if err != nil {
		return err
	}

	filePath := filepath.Join(s.basePath, sanitizeFilename(regionID), info.Path)
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	os.Remove(s.metaPath(regionID))

	return nil
}

// List returns metadata for every cached roster
func (s *LocalStorage) List(ctx context.Context) ([]*FileInfo, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache: %w", err)
	}

	files := make([]*FileInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := s.GetInfo(ctx, entry.Name())
		if err != nil {
			continue
		}
		files = append(files, info)
	}

	return files, nil
}

// saveMetadata saves roster metadata to a JSON file
func (s *LocalStorage) saveMetadata(regionID string, info *FileInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(s.metaPath(regionID), data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	return nil
}

func (s *LocalStorage) metaPath(regionID string) string {
	return filepath.Join(s.basePath, sanitizeFilename(regionID), "meta.json")
}

// sanitizeFilename removes unsafe characters from filenames
func sanitizeFilename(name string) string {
	// Replace path separators and other dangerous characters
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
