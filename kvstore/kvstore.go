// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package kvstore provides the durable string key-value capability that the
// survey client keeps its identity and progress in.
package kvstore

import (
	"fmt"
	"sync"
)

// Driver identifies a concrete backend.
type Driver string

const (
	DriverMemory Driver = "memory" // tests
	DriverFile   Driver = "file"   // one file per key under a directory (default)
	DriverSQLite Driver = "sqlite" // single table in a local database file
)

// Store is a small, synchronous key-value store. Get reports ok=false for
// missing keys; Remove on a missing key is not an error.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// Open returns the store for driver rooted at dir.
func Open(driver Driver, dir string) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile, "":
		return NewFile(dir)
	case DriverSQLite:
		return OpenSQLite(dir)
	default:
		return nil, fmt.Errorf("unknown state backend %q", driver)
	}
}

// Memory implements Store in process memory.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory { return &Memory{data: make(map[string]string)} }

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
