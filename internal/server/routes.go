package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/drakos74/digits-embed/internal/color"
	"github.com/drakos74/digits-embed/internal/storage"
	storejson "github.com/drakos74/digits-embed/internal/storage/file/json"
	"github.com/drakos74/digits-embed/internal/sweep"
)

// Report serves the report of the last run in the given output dir.
func Report(dir string) Route {
	return Route{
		Action: Data,
		Path:   "report",
		Method: GET,
		Exec: func(r *http.Request) ([]byte, int, error) {
			b, err := os.ReadFile(filepath.Join(dir, sweep.ReportFile))
			if errors.Is(err, os.ErrNotExist) {
				return []byte("no report"), http.StatusNotFound, nil
			}
			if err != nil {
				return nil, 0, fmt.Errorf("could not read report: %w", err)
			}
			var report sweep.Report
			if err := json.Unmarshal(b, &report); err != nil {
				return nil, 0, fmt.Errorf("could not parse report: %w", err)
			}
			return b, http.StatusOK, nil
		},
	}
}

// Runs serves the run history of the registry.
func Runs(registry *storejson.Registry) Route {
	return Route{
		Action: Data,
		Path:   "runs",
		Method: GET,
		Exec: func(r *http.Request) ([]byte, int, error) {
			runs := make([]sweep.Run, 0)
			err := registry.GetAll(sweep.HistoryGroup, &runs)
			if err != nil && !errors.Is(err, storage.NotFoundErr) {
				return nil, 0, fmt.Errorf("could not load runs: %w", err)
			}
			b, err := json.Marshal(runs)
			if err != nil {
				return nil, 0, err
			}
			return b, http.StatusOK, nil
		},
	}
}

// ColorRequest is the payload of the color route.
type ColorRequest struct {
	Labels []float64 `json:"labels"`
}

// ColorResponse holds one color per requested label.
type ColorResponse struct {
	Colors []string `json:"colors"`
}

// Colors maps the posted labels to their colors.
func Colors(debug bool) Route {
	return Route{
		Action: Data,
		Path:   "colors",
		Method: POST,
		Exec: func(r *http.Request) ([]byte, int, error) {
			var request ColorRequest
			if err := JsonRead(r, debug, &request); err != nil {
				return []byte(err.Error()), http.StatusBadRequest, nil
			}
			colors, err := color.Labels(request.Labels)
			if err != nil {
				return []byte(err.Error()), http.StatusBadRequest, nil
			}
			b, err := json.Marshal(ColorResponse{Colors: colors})
			if err != nil {
				return nil, 0, err
			}
			return b, http.StatusOK, nil
		},
	}
}
