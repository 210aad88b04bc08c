package json

import (
	"encoding/json"
	"fmt"
)

// Capture writes the payload as indented json into the given file.
// Readers of the file see either the previous or the new payload, never a partial one.
func Capture(payload interface{}, filename string) error {
	bb, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal payload for '%s': %w", filename, err)
	}
	return replace(filename, bb)
}
