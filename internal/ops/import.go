package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/prompthive/internal/config"
	"github.com/hpungsan/prompthive/internal/errors"
	"github.com/hpungsan/prompthive/internal/library"
)

// MaxImportBytes caps the size of an import file.
const MaxImportBytes = 32 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string // required; .json, .yaml or .yml
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Path        string `json:"path"`
	Prompts     int    `json:"prompts"`
	Collections int    `json:"collections"`
	Version     int    `json:"version"`
}

// Import replaces the whole library with the contents of a backup file.
// The file must contain prompts and collections arrays. A missing version is
// stamped with the current one.
func Import(ctx context.Context, lib Library, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}
	format, _ := FormatForPath(input.Path)

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if _, ok := err.(*errors.HiveError); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, MaxImportBytes+1))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}
	if len(raw) > MaxImportBytes {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("import file exceeds %d bytes", MaxImportBytes))
	}

	db, err := ParseBackup(raw, format)
	if err != nil {
		return nil, err
	}

	if err := lib.Write(ctx, db); err != nil {
		return nil, err
	}
	return &ImportOutput{
		Path:        input.Path,
		Prompts:     len(db.Prompts),
		Collections: len(db.Collections),
		Version:     db.Version,
	}, nil
}

// ParseBackup decodes and validates backup content in the given format.
func ParseBackup(raw []byte, format Format) (*library.Database, error) {
	raw = library.TrimBOM(raw)
	if format == FormatYAML {
		converted, err := yamlToJSON(raw)
		if err != nil {
			return nil, errors.NewInvalidDocument(err)
		}
		raw = converted
	}

	if err := library.ValidateImport(raw); err != nil {
		return nil, errors.NewInvalidDocument(err)
	}

	db := &library.Database{}
	if err := json.Unmarshal(raw, db); err != nil {
		return nil, errors.NewInvalidDocument(err)
	}
	if db.Version == 0 {
		db.Version = library.CurrentVersion
	}
	if !library.KnownVersions[db.Version] {
		return nil, errors.NewUnsupportedVersion(db.Version)
	}
	return db, nil
}

// yamlToJSON re-encodes a YAML document as JSON so it can go through the same
// schema validation as a JSON backup.
func yamlToJSON(raw []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	doc, err := jsonCompatible(doc)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func jsonCompatible(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			converted, err := jsonCompatible(item)
			if err != nil {
				return nil, err
			}
			t[k] = converted
		}
		return t, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("mapping key %v is not a string", k)
			}
			converted, err := jsonCompatible(item)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case []any:
		for i, item := range t {
			converted, err := jsonCompatible(item)
			if err != nil {
				return nil, err
			}
			t[i] = converted
		}
		return t, nil
	}
	return v, nil
}
