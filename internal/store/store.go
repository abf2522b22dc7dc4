// Package store persists pipeline runs as a single JSON file holding an
// array of run records. The file is read in full and rewritten in full on
// every append; a mutex serializes the read-modify-write cycle so concurrent
// runs cannot lose each other's results.
package store

import (
	"encoding/json"
	"path/filepath"
	"sync"

	"epextract/pkg/models"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Store is the append-only run log
type Store struct {
	fs   afero.Fs
	path string
	log  *logrus.Logger
	mu   sync.Mutex
}

// New creates a Store writing to path on fs
func New(fs afero.Fs, path string, log *logrus.Logger) *Store {
	return &Store{
		fs:   fs,
		path: path,
		log:  log,
	}
}

// Load reads the full run history. A missing file or unparseable content is
// treated as an empty history, never an error.
func (s *Store) Load() []models.RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Append adds one run record to the history and rewrites the file
func (s *Store) Append(record models.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := append(s.load(), record)
	return s.write(records)
}

func (s *Store) load() []models.RunRecord {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil
	}

	var records []models.RunRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.log.WithError(err).WithField("file", s.path).Warn("Run log unreadable, starting with empty history")
		return nil
	}
	return records
}

// write replaces the run log atomically via a temp file in the same directory
func (s *Store) write(records []models.RunRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0644); err != nil {
		return err
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		s.fs.Remove(tmp)
		return err
	}

	s.log.WithFields(logrus.Fields{
		"file": filepath.Base(s.path),
		"runs": len(records),
	}).Info("Run log saved")
	return nil
}
