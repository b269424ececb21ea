// Package kvstore provides durable implementations of the ledger key-value medium.
package kvstore

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ledger "github.com/belisario-afk/cakepop-ledger"
)

const ext = ".json"

// Dir stores each key as a file in a folder.
//
// Keys are path-escaped, so "smallbatch-ledger-v2::guest" is stored as
// "smallbatch-ledger-v2%3A%3Aguest.json". Writes go through a temporary file
// and a rename so a crash never leaves a half written value behind.
type Dir struct {
	path string
}

// NewDir returns a Dir rooted at path. The folder is created on first write.
func NewDir(path string) *Dir { return &Dir{path: path} }

func (d *Dir) filename(key string) string {
	return filepath.Join(d.path, url.QueryEscape(key)+ext)
}

func (d *Dir) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(d.filename(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", key, err)
	}
	return data, nil
}

func (d *Dir) Set(key string, value []byte) error {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("cannot create store folder %q: %w", d.path, err)
	}
	tmp, err := os.CreateTemp(d.path, ".tmp-*")
	if err != nil {
		return fmt.Errorf("cannot write %q: %w", key, err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot write %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), d.filename(key)); err != nil {
		return fmt.Errorf("cannot write %q: %w", key, err)
	}
	return nil
}

func (d *Dir) Delete(key string) error {
	err := os.Remove(d.filename(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cannot delete %q: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys in sorted order.
func (d *Dir) Keys() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot list store folder %q: %w", d.path, err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}
		key, err := url.QueryUnescape(strings.TrimSuffix(name, ext))
		if err != nil {
			continue // not ours
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
