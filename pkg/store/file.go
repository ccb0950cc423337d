// Package store provides persistence adapters for the encoded region list.
// Every adapter treats Save as a full overwrite and Load as "whatever was
// last saved, in order".
package store

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileData represents the serializable form of the region list
type fileData struct {
	Regions []string
	Count   int
	SavedAt time.Time
}

// File stores the encoded list as a gob file
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile creates a file store at path. The file is created on first save.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path
func (f *File) Path() string {
	return f.path
}

// Save replaces the file contents with encoded. The new file is written
// next to the old one and renamed over it.
func (f *File) Save(ctx context.Context, encoded []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	data := fileData{
		Regions: encoded,
		Count:   len(encoded),
		SavedAt: time.Now().UTC(),
	}

	encoder := gob.NewEncoder(tmp)
	if err := encoder.Encode(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}

// Load returns the saved list, or nothing if the file does not exist yet
func (f *File) Load(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var data fileData
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}

	if data.Regions == nil {
		return []string{}, nil
	}
	return data.Regions, nil
}
