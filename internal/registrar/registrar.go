// Package registrar records newly launched token and pair addresses as
// watch sources for the host event source.
package registrar

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Source kinds registered on token launch.
const (
	SourceToken = "token"
	SourcePair  = "pair"
)

// Registrar registers a watch source. Registration is one-time and
// idempotent per address.
type Registrar interface {
	Register(kind, address string) error
}

// WatchSource is the record appended for each new registration.
type WatchSource struct {
	Kind         string `json:"kind"`
	Address      string `json:"address"`
	RegisteredAt string `json:"registered_at"`
}

// JsonlRegistrar appends watch sources to a JSONL file, deduplicating by
// address within and across runs (existing file is read on first use).
type JsonlRegistrar struct {
	path   string
	mu     sync.Mutex
	seen   map[string]struct{}
	loaded bool
}

func NewJsonlRegistrar(path string) *JsonlRegistrar {
	return &JsonlRegistrar{path: path, seen: make(map[string]struct{})}
}

func (r *JsonlRegistrar) Register(kind, address string) error {
	if address == "" {
		return fmt.Errorf("address required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.loadLocked(); err != nil {
		return err
	}

	key := strings.ToLower(address)
	if _, ok := r.seen[key]; ok {
		return nil
	}

	dir := filepath.Dir(r.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create registrar dir: %w", err)
		}
	}

	file, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open registrar file: %w", err)
	}
	defer file.Close()

	record := WatchSource{
		Kind:         kind,
		Address:      key,
		RegisteredAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal watch source: %w", err)
	}
	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write watch source: %w", err)
	}

	r.seen[key] = struct{}{}
	return nil
}

func (r *JsonlRegistrar) loadLocked() error {
	if r.loaded {
		return nil
	}
	r.loaded = true

	file, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open registrar file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record WatchSource
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			continue
		}
		r.seen[strings.ToLower(record.Address)] = struct{}{}
	}
	return scanner.Err()
}
