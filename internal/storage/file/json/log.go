package json

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/drakos74/digits-embed/internal/storage"
)

const (
	filename = "%s.events.log"
)

// Registry appends events as json lines, one file per group.
type Registry struct {
	path string
}

// NewEventRegistry creates a registry under the given dir.
func NewEventRegistry(path string) *Registry {
	return &Registry{path: path}
}

func (r *Registry) file(group string) string {
	return filepath.Join(r.path, fmt.Sprintf(filename, group))
}

// Add appends the value to the events of the group.
func (r *Registry) Add(group string, value interface{}) error {
	info, err := os.Stat(r.path)
	if err != nil {
		err := os.MkdirAll(r.path, os.ModePerm)
		if err != nil {
			return fmt.Errorf("could not make dir: %s: %w", r.path, err)
		}
	} else if !info.IsDir() {
		return fmt.Errorf("path given is not a directory: %s", r.path)
	}

	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not encode value '%+v': %w", value, err)
	}
	f, err := os.OpenFile(r.file(group), os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return fmt.Errorf("could not open log file: %w", err)
	}
	defer f.Close()

	if _, err = f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("could not write log file for '%s': %w", group, err)
	}
	return nil
}

// GetAll decodes the events of the group into values, which must be a pointer to a slice.
func (r *Registry) GetAll(group string, values interface{}) error {
	ptr := reflect.ValueOf(values)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("only accepting slices as placeholder for the results")
	}
	slice := ptr.Elem()
	t := slice.Type().Elem()

	f, err := os.Open(r.file(group))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("no events for '%s': %w", group, storage.NotFoundErr)
	}
	if err != nil {
		return fmt.Errorf("could not open log file: %w", err)
	}
	defer f.Close()

	elements := reflect.MakeSlice(slice.Type(), 0, 10)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		instance := reflect.New(t)
		if err := json.Unmarshal(line, instance.Interface()); err != nil {
			return fmt.Errorf("could not decode event value '%s': %v: %w", line, err, storage.CouldNotLoadErr)
		}
		elements = reflect.Append(elements, instance.Elem())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("could not read events for '%s': %w", group, err)
	}
	slice.Set(elements)
	return nil
}
