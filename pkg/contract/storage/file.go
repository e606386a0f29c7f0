package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"veridian-hq/covenant/pkg/contract"
)

// ContractPath maps a module source path to its contract file: the `.dsl`
// suffix (or `.test.dsl`) is replaced with `.contract.json`.
func ContractPath(modulePath string) string {
	base := strings.TrimSuffix(modulePath, ".dsl")
	base = strings.TrimSuffix(base, ".test")
	return base + ".contract.json"
}

// FileStore persists each module's contract as a JSON file beside its
// source, under the same root module paths resolve against. This is the
// default backend.
type FileStore struct {
	root   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileStore creates a file-backed contract store rooted at root.
func NewFileStore(root string) *FileStore {
	return &FileStore{
		root:   root,
		logger: slog.Default().With("component", "contract.storage.file"),
	}
}

func (s *FileStore) resolve(modulePath string) string {
	return filepath.Join(s.root, filepath.FromSlash(ContractPath(modulePath)))
}

// Load reads the module's contract file. A missing file yields an empty
// contract; a malformed file is an error.
func (s *FileStore) Load(ctx context.Context, modulePath string) (contract.Contract, error) {
	path := s.resolve(modulePath)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return contract.Contract{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read contract %s: %w", path, err)
	}

	var c contract.Contract
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse contract %s: %w", path, err)
	}
	return c, nil
}

// Save writes the module's contract file atomically via a temp file rename.
func (s *FileStore) Save(ctx context.Context, modulePath string, c contract.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.resolve(modulePath)
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode contract %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write contract %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write contract %s: %w", path, err)
	}

	s.logger.Debug("contract saved", "module", modulePath, "symbols", len(c))
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }
