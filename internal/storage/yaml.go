package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"timekeeper/internal/core/model"
)

const yamlFileName = "state.yaml"

// YAMLGateway keeps the record in a single YAML file.
type YAMLGateway struct {
	path string

	mu         sync.Mutex
	lastDigest [sha256.Size]byte
}

// NewYAML creates a gateway for the file at path.
func NewYAML(path string) *YAMLGateway {
	return &YAMLGateway{path: path}
}

// Path returns the state file location.
func (gateway *YAMLGateway) Path() string {
	return gateway.path
}

// Load reads the record. Missing keys keep their defaults.
func (gateway *YAMLGateway) Load(ctx context.Context) (model.Record, error) {
	record, _, err := gateway.read()
	return record, err
}

// Save writes the record through a temporary file and a rename.
func (gateway *YAMLGateway) Save(ctx context.Context, record model.Record) error {
	if err := os.MkdirAll(filepath.Dir(gateway.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	serialized, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal state yaml: %w", err)
	}

	gateway.mu.Lock()
	defer gateway.mu.Unlock()

	tempPath := gateway.path + ".tmp"
	if err := os.WriteFile(tempPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tempPath, gateway.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	gateway.lastDigest = sha256.Sum256(serialized)
	return nil
}

// Close is a no-op for files.
func (gateway *YAMLGateway) Close() error {
	return nil
}

// loadExternal reads the file and reports whether it differs from the last write of this gateway.
func (gateway *YAMLGateway) loadExternal() (model.Record, bool, error) {
	record, digest, err := gateway.read()
	if err != nil {
		return record, false, err
	}
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	if digest == gateway.lastDigest {
		return record, false, nil
	}
	gateway.lastDigest = digest
	return record, true, nil
}

func (gateway *YAMLGateway) read() (model.Record, [sha256.Size]byte, error) {
	record := model.DefaultRecord()
	var digest [sha256.Size]byte

	rawData, err := os.ReadFile(gateway.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return record, digest, ErrNotFound
		}
		return record, digest, fmt.Errorf("read state file: %w", err)
	}
	digest = sha256.Sum256(rawData)
	if len(bytes.TrimSpace(rawData)) == 0 {
		return record, digest, ErrNotFound
	}

	if err := yaml.Unmarshal(rawData, &record); err != nil {
		return model.DefaultRecord(), digest, fmt.Errorf("parse state yaml: %w", err)
	}
	sanitizeRecord(&record)
	return record, digest, nil
}
