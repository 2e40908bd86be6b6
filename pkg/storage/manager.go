// Package storage handles media file storage and duplicate detection.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Manager stores downloaded media files under a directory. Files are named
// <tweetID>_<index><ext> so every media attachment of a tweet has a stable
// location.
type Manager struct {
	mediaDir string
	saved    map[string]string // key -> filename
	mu       sync.RWMutex
}

// NewManager creates a storage manager rooted at mediaDir
func NewManager(mediaDir string) (*Manager, error) {
	if err := os.MkdirAll(mediaDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	m := &Manager{
		mediaDir: mediaDir,
		saved:    make(map[string]string),
	}

	if err := m.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return m, nil
}

// scanExistingFiles indexes already downloaded media so reruns skip them
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.mediaDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		key := name[:len(name)-len(filepath.Ext(name))]
		m.saved[key] = name
	}

	return nil
}

// key builds the map key for a tweet's media attachment
func key(tweetID string, index int) string {
	return fmt.Sprintf("%s_%d", tweetID, index)
}

// IsSaved reports whether the media attachment is already on disk
func (m *Manager) IsSaved(tweetID string, index int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.saved[key(tweetID, index)]
	return ok
}

// Path returns the stored file path for a media attachment, empty if not
// saved
func (m *Manager) Path(tweetID string, index int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.saved[key(tweetID, index)]
	if !ok {
		return ""
	}
	return filepath.Join(m.mediaDir, name)
}

// Save writes a media file from the reader. The write goes through a temp
// file and rename so a crash never leaves a partial file under the final
// name.
func (m *Manager) Save(r io.Reader, tweetID string, index int, ext string) (string, error) {
	filename := key(tweetID, index) + ext
	path := filepath.Join(m.mediaDir, filename)

	tempFile := path + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to write media data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.saved[key(tweetID, index)] = filename
	m.mu.Unlock()

	return path, nil
}

// MediaDir returns the media directory path
func (m *Manager) MediaDir() string {
	return m.mediaDir
}

// SavedCount returns the number of stored media files
func (m *Manager) SavedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.saved)
}

// RelPath converts a stored path to one relative to base, for embedding in
// exported documents. Falls back to the original path when no relative form
// exists.
func RelPath(path, base string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}
