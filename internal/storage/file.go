package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/shortyhq/shorty/internal/errors"
	"github.com/shortyhq/shorty/internal/models"
)

// FileStore keeps the whole catalog in a single JSON snapshot that is
// rewritten on every mutation. Lookups are linear scans, which is the
// accepted trade-off for the small catalogs this backend targets.
//
// One mutex serializes every read-modify-write, so concurrent increments
// on the same code never lose updates. Access events go to a sibling
// JSON-lines file, append-only.
type FileStore struct {
	mu         sync.Mutex
	path       string
	eventsPath string
}

type fileSnapshot struct {
	Links []models.Link `json:"links"`
}

// NewFileStore opens a file-backed store at path. The snapshot is created
// lazily on the first mutation; a missing file reads as an empty catalog.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, apperrors.StorageError{Backend: "file", Op: "open", Err: fmt.Errorf("empty file path")}
	}
	return &FileStore{
		path:       path,
		eventsPath: path + ".events.jsonl",
	}, nil
}

func (s *FileStore) FindByCode(ctx context.Context, code string) (*models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range snap.Links {
		if snap.Links[i].Code == code {
			link := snap.Links[i]
			return &link, nil
		}
	}
	return nil, apperrors.ErrShortCodeNotFound
}

func (s *FileStore) Insert(ctx context.Context, link *models.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return err
	}
	for i := range snap.Links {
		if snap.Links[i].Code == link.Code {
			return apperrors.ErrDuplicateCode
		}
	}
	link.ID = uint(len(snap.Links) + 1)
	snap.Links = append(snap.Links, *link)
	return s.save(snap)
}

func (s *FileStore) IncrementClicks(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return err
	}
	for i := range snap.Links {
		if snap.Links[i].Code == code {
			snap.Links[i].Clicks++
			return s.save(snap)
		}
	}
	return apperrors.ErrShortCodeNotFound
}

func (s *FileStore) ListAll(ctx context.Context) ([]models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return nil, err
	}
	links := make([]models.Link, len(snap.Links))
	copy(links, snap.Links)
	return links, nil
}

func (s *FileStore) RecordClick(ctx context.Context, click *models.Click) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.eventsPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return apperrors.StorageError{Backend: "file", Op: "record click", Err: err}
	}
	defer f.Close()

	line, err := json.Marshal(click)
	if err != nil {
		return apperrors.StorageError{Backend: "file", Op: "record click", Err: err}
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return apperrors.StorageError{Backend: "file", Op: "record click", Err: err}
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

// load reads the snapshot. Callers must hold the mutex.
func (s *FileStore) load() (*fileSnapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &fileSnapshot{}, nil
		}
		return nil, apperrors.StorageError{Backend: "file", Op: "read", Err: err}
	}
	var snap fileSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, apperrors.StorageError{Backend: "file", Op: "decode", Err: err}
	}
	return &snap, nil
}

// save rewrites the snapshot via write-to-temp-then-rename so a crash
// mid-write never leaves a partial file behind. Callers must hold the mutex.
func (s *FileStore) save(snap *fileSnapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return apperrors.StorageError{Backend: "file", Op: "encode", Err: err}
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".links-*.tmp")
	if err != nil {
		return apperrors.StorageError{Backend: "file", Op: "write", Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.StorageError{Backend: "file", Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.StorageError{Backend: "file", Op: "write", Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return apperrors.StorageError{Backend: "file", Op: "rename", Err: err}
	}
	return nil
}

var _ Store = (*FileStore)(nil)
