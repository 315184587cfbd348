package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/idilsaglam/tada/internal/model"
)

// JSON-backed todo list. Single file, human-readable, portable.
// No locking; fine for a local single-user CLI.

const DataFileName = "todos.json"

// Store reads and writes the whole list at Path.
type Store struct {
	Path string
}

func New(path string) *Store { return &Store{Path: path} }

func (s *Store) Load() ([]model.Item, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Item{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var items []model.Item
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

func (s *Store) Save(items []model.Item) error {
	if items == nil {
		items = []model.Item{}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := os.WriteFile(s.Path, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// Find returns the index of the item with id, or -1.
func Find(items []model.Item, id int64) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
