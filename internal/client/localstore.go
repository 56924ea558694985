package client // package client implements the storefront's offline-capable API client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"

	"go.uber.org/zap"
)

// LocalStore is a single-file key/value store standing in for the
// browser's localStorage: each key maps to one JSON document and every
// write rewrites the value wholesale.  Alongside the pending-order queue
// it holds the cart and the session echo (token, user, isLoggedIn,
// userName) under their historical keys.
type LocalStore struct {
	path string
	log  *zap.Logger
	mu   sync.Mutex
}

func NewLocalStore(path string, log *zap.Logger) *LocalStore {
	return &LocalStore{path: path, log: log}
}

// Get unmarshals the value under key into v.  The second return is false
// when the key (or the whole file) does not exist.
func (s *LocalStore) Get(key string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.read()
	if err != nil {
		return false, err
	}
	raw, ok := data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores v under key, replacing any previous value.
func (s *LocalStore) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.read()
	if err != nil {
		return err
	}
	data[key] = raw
	return s.write(data)
}

// Remove deletes the key entirely.  Removing an absent key is a no-op.
func (s *LocalStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return s.write(data)
}

func (s *LocalStore) read() (map[string]json.RawMessage, error) {
	buf, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, err
	}
	data := map[string]json.RawMessage{}
	if len(buf) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(buf, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *LocalStore) write(data map[string]json.RawMessage) error {
	buf, err := json.Marshal(data)
	if err != nil {
		return err
	}
	// Same atomicity idiom as the server's workbook store: temp file plus
	// rename, so a crash mid-write never corrupts the state file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
