package storage

import (
	"encoding/json"
	"fmt"
)

// MockStorage keeps the values in memory and counts the calls.
type MockStorage struct {
	Elements map[Key][]byte
	Stores   int
	Loads    int
}

func NewMockStorage() *MockStorage {
	return &MockStorage{Elements: make(map[Key][]byte)}
}

func (m *MockStorage) Store(k Key, value interface{}) error {
	m.Stores++
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not marshal value: %w", err)
	}
	m.Elements[k] = b
	return nil
}

func (m *MockStorage) Load(k Key, value interface{}) error {
	m.Loads++
	b, ok := m.Elements[k]
	if !ok {
		return fmt.Errorf("not found '%v': %w", k, NotFoundErr)
	}
	if err := json.Unmarshal(b, value); err != nil {
		return fmt.Errorf("could not unmarshal value: %v: %w", err, CouldNotLoadErr)
	}
	return nil
}
