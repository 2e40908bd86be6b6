// Package checkpoint persists export progress so an interrupted run can
// resume without refetching. State lives in two files in the output
// directory: a small metadata file with the cursor, and the tweet payload
// fetched so far.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/norandom/x-likes-scraper/pkg/logger"
	"github.com/norandom/x-likes-scraper/pkg/models"
)

const (
	checkpointFile = ".export_checkpoint.json"
	tweetsFile     = ".export_tweets.json"
	version        = "1.0"
)

// Snapshot is the checkpoint metadata. The cursor is stored in its string
// form; an empty string means the export had not advanced past the first
// page.
type Snapshot struct {
	UserID        string `json:"user_id"`
	Cursor        string `json:"cursor"`
	TotalFetched  int    `json:"total_fetched"`
	DownloadMedia bool   `json:"download_media"`
	Timestamp     string `json:"timestamp"`
	Version       string `json:"version"`
}

// Resume returns the cursor to continue fetching from.
func (s *Snapshot) Resume() models.Cursor {
	if s.Cursor == "" {
		return models.StartCursor()
	}
	return models.NextCursor(s.Cursor)
}

// Store saves and restores export checkpoints in a directory.
type Store struct {
	dir string
	log logger.Logger
}

// NewStore creates a checkpoint store rooted at dir, creating it if needed.
func NewStore(dir string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	return &Store{dir: dir, log: log}, nil
}

// Save writes the current export state. The tweet payload is written first so
// the metadata file never refers to tweets that are not on disk yet. Both
// writes go through a temp file and rename.
func (s *Store) Save(userID string, tweets []models.Tweet, cursor models.Cursor, downloadMedia bool) error {
	if err := s.writeAtomic(tweetsFile, tweets); err != nil {
		return fmt.Errorf("failed to save tweets: %w", err)
	}

	snap := Snapshot{
		UserID:        userID,
		Cursor:        cursor.String(),
		TotalFetched:  len(tweets),
		DownloadMedia: downloadMedia,
		Timestamp:     time.Now().Format(time.RFC3339),
		Version:       version,
	}
	if err := s.writeAtomic(checkpointFile, snap); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	s.log.WithField("total_fetched", snap.TotalFetched).Info("checkpoint saved")
	return nil
}

// Load reads the checkpoint and its tweet payload. A missing checkpoint
// returns nil without error. A corrupt checkpoint is logged and treated as
// absent.
func (s *Store) Load() (*Snapshot, []models.Tweet, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, checkpointFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.log.WithError(err).Warn("checkpoint file corrupt, ignoring")
		return nil, nil, nil
	}

	var tweets []models.Tweet
	payload, err := os.ReadFile(filepath.Join(s.dir, tweetsFile))
	if err == nil {
		if err := json.Unmarshal(payload, &tweets); err != nil {
			s.log.WithError(err).Warn("checkpoint tweet payload corrupt, ignoring")
			return nil, nil, nil
		}
	} else if !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("failed to read checkpoint tweets: %w", err)
	}

	return &snap, tweets, nil
}

// Exists reports whether a complete checkpoint is on disk.
func (s *Store) Exists() bool {
	if _, err := os.Stat(filepath.Join(s.dir, checkpointFile)); err != nil {
		return false
	}
	if _, err := os.Stat(filepath.Join(s.dir, tweetsFile)); err != nil {
		return false
	}
	return true
}

// IsValid reports whether the checkpoint on disk belongs to the given user.
func (s *Store) IsValid(userID string) bool {
	info := s.Info()
	return info != nil && info.UserID == userID
}

// Info returns the checkpoint metadata without loading the tweet payload,
// nil if no readable checkpoint exists.
func (s *Store) Info() *Snapshot {
	data, err := os.ReadFile(filepath.Join(s.dir, checkpointFile))
	if err != nil {
		return nil
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.log.WithError(err).Warn("checkpoint file corrupt")
		return nil
	}
	return &snap
}

// Clear removes both checkpoint files.
func (s *Store) Clear() error {
	for _, name := range []string{checkpointFile, tweetsFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	s.log.Debug("checkpoint cleared")
	return nil
}

// Progress returns a human-readable description of the checkpoint.
func (s *Store) Progress() string {
	info := s.Info()
	if info == nil {
		return "No checkpoint found"
	}
	return fmt.Sprintf("User %s: %d tweets (saved at %s)", info.UserID, info.TotalFetched, info.Timestamp)
}

func (s *Store) writeAtomic(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
