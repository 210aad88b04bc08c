package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/drakos74/digits-embed/internal/storage"
)

// Save saves the given json struct into the given path with the provided filename.
// The file is replaced atomically, a failed save leaves the previous content in place.
func Save(filePath string, fileName string, value interface{}) error {
	// check if filepath exists
	info, err := os.Stat(filePath)
	if err != nil {
		err := os.MkdirAll(filePath, os.ModePerm)
		if err != nil {
			return fmt.Errorf("could not make dir: %s: %w", filePath, err)
		}
	} else if !info.IsDir() {
		return fmt.Errorf("path given is not a directory: %s", filePath)
	}

	p := filepath.Join(filePath, fileName)
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not save key '%+v': %w", p, err)
	}
	return replace(p, b)
}

// replace writes the bytes to a temporary file next to the target and renames it over the target.
func replace(p string, b []byte) error {
	dir, name := filepath.Split(p)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("could not create file for '%s': %w", p, err)
	}
	tmp := f.Name()
	// no-op after a successful rename
	defer os.Remove(tmp)

	if _, err := f.Write(b); err != nil {
		f.Close()
		return fmt.Errorf("could not write bytes to file '%s' : %w", p, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close file '%s': %w", p, err)
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		return fmt.Errorf("could not set permissions of '%s': %w", p, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("could not replace file '%s': %w", p, err)
	}
	return nil
}

// Load loads the payload from the given filePath and fileName.
func Load(filePath string, fileName string, value interface{}) error {

	p := filepath.Join(filePath, fileName)

	data, err := os.ReadFile(p)
	if err != nil {
		return fmt.Errorf("could not read file '%s' %s: %w", p, err.Error(), storage.NotFoundErr)
	}

	err = json.Unmarshal(data, value)
	if err != nil {
		return fmt.Errorf("could not unmarshal key '%s': %v: %w", p, err, storage.CouldNotLoadErr)
	}

	return nil
}
