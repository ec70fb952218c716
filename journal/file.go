package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rustyeddy/tradejournal/trade"
)

// FileStore keeps the trade list as one JSON document.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFile returns a store backed by path. The file is created on first save.
func NewFile(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("journal: empty file path")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &FileStore{path: path}, nil
}

// Path of the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) LoadTrades(ctx context.Context) ([]trade.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []trade.Trade{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []trade.Trade{}, nil
	}

	var trades []trade.Trade
	if err := json.Unmarshal(data, &trades); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if trades == nil {
		trades = []trade.Trade{}
	}
	return trades, nil
}

// SaveTrades writes to a temp file in the same directory and renames it over
// the old document.
func (s *FileStore) SaveTrades(ctx context.Context, trades []trade.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if trades == nil {
		trades = []trade.Trade{}
	}
	data, err := json.MarshalIndent(trades, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *FileStore) Close() error { return nil }

func sortByExit(trades []trade.Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].ExitDate.Before(trades[j].ExitDate)
	})
}
