package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"timekeeper/internal/core/model"
)

// ExportFileName returns the download name for an export taken at now.
func ExportFileName(now time.Time) string {
	return "timekeeper-data-" + now.Format("2006-01-02") + ".json"
}

// EncodeExport renders an export as indented JSON.
func EncodeExport(export model.Export) ([]byte, error) {
	encoded, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return encoded, nil
}

// WriteExport writes the export into dir and returns the file path.
func WriteExport(dir string, export model.Export, now time.Time) (string, error) {
	encoded, err := EncodeExport(export)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, ExportFileName(now))
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
