// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contentstore

import (
	"context"
	"sync"
)

// Memory is an in-process Store for tests.
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemory() *Memory { return &Memory{files: make(map[string][]byte)} }

func (m *Memory) Driver() Driver { return DriverMemory }

func (m *Memory) Exists(_ context.Context, path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[path]
	return ok, nil
}

func (m *Memory) Create(_ context.Context, path string, content []byte, _ string) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path]; ok {
		return Info{}, ErrExists
	}
	m.files[path] = append([]byte(nil), content...)
	return Info{Path: path, URL: "memory://" + path}, nil
}

// Content returns a stored file, for assertions.
func (m *Memory) Content(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.files[path]
	return append([]byte(nil), b...), ok
}
