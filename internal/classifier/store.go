package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yourusername/footy-better/internal/models"
)

// Save writes the trained ensemble to path as indented JSON, creating the
// parent directory if needed.
func Save(e *Ensemble, path string) error {
	if e == nil {
		return fmt.Errorf("%w: nothing to save", ErrInvalidModel)
	}
	if path == "" {
		return fmt.Errorf("model path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal classifier model: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a previously saved ensemble. A missing file maps to
// models.ErrNotFound so callers can treat the classifier as an absent
// capability rather than a failure.
func Load(path string) (*Ensemble, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: classifier model at %s", models.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read classifier model: %w", err)
	}

	var e Ensemble
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to parse classifier model: %w", err)
	}
	if e.FeatureCount <= 0 || len(e.Weights) == 0 {
		return nil, fmt.Errorf("%w: %s has no trained members", ErrInvalidModel, path)
	}
	for i, w := range e.Weights {
		if len(w) != e.FeatureCount+1 {
			return nil, fmt.Errorf("%w: member %d has %d weights, expected %d",
				ErrInvalidModel, i, len(w), e.FeatureCount+1)
		}
	}
	return &e, nil
}
