package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileKV persists every namespace into a single JSON snapshot file,
// rewritten atomically after each mutation. It is the durable analogue of a
// browser's local storage area.
type FileKV struct {
	mu   sync.RWMutex
	path string
	snap map[string]json.RawMessage
}

// OpenFileKV opens (or creates) the snapshot file at path.
func OpenFileKV(path string) (*FileKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	kv := &FileKV{path: path, snap: make(map[string]json.RawMessage)}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return kv, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}
	if len(raw) == 0 {
		return kv, nil
	}
	if err := json.Unmarshal(raw, &kv.snap); err != nil {
		// A corrupt snapshot is treated as empty; collections fall back
		// to their seeds on load.
		kv.snap = make(map[string]json.RawMessage)
	}
	return kv, nil
}

func (f *FileKV) Get(_ context.Context, namespace string) ([]byte, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	raw, ok := f.snap[namespace]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, true, nil
}

func (f *FileKV) Put(_ context.Context, namespace string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := make(json.RawMessage, len(data))
	copy(stored, data)
	f.snap[namespace] = stored
	return f.flushLocked()
}

func (f *FileKV) Delete(_ context.Context, namespace string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.snap, namespace)
	return f.flushLocked()
}

// flushLocked rewrites the snapshot via a temp file rename so a crash never
// leaves a half-written store behind.
func (f *FileKV) flushLocked() error {
	raw, err := json.Marshal(f.snap)
	if err != nil {
		return fmt.Errorf("encode store snapshot: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write store snapshot: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace store snapshot: %w", err)
	}
	return nil
}
