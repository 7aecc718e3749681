package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/prompthive/internal/config"
	"github.com/hpungsan/prompthive/internal/errors"
	"github.com/hpungsan/prompthive/internal/library"
)

// Format is a backup file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml". Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.NewInvalidRequest("format must be one of: json, yaml")
}

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path   string // optional, default: ~/.prompthive/exports/prompthive-backup-<date>.<ext>
	Format Format // optional; inferred from Path, else JSON
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path        string `json:"path"`
	Format      Format `json:"format"`
	Prompts     int    `json:"prompts"`
	Collections int    `json:"collections"`
	ExportedAt  int64  `json:"exported_at"`
}

// Export writes a full backup of the library to a file.
func Export(ctx context.Context, lib Library, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	ts := now()

	format := input.Format
	if format == "" && input.Path != "" {
		format, _ = FormatForPath(input.Path)
	}
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatYAML {
		return nil, errors.NewInvalidRequest("format must be one of: json, yaml")
	}

	// Determine export path
	exportPath := input.Path
	if exportPath == "" {
		var err error
		exportPath, err = defaultExportPath(format, ts)
		if err != nil {
			return nil, err
		}
	} else if pathFormat, ok := FormatForPath(exportPath); ok && pathFormat != format {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("path extension does not match format %s", format))
	}

	// Validate ALL paths (both user-provided and default) for security
	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	db, err := lib.Read(ctx)
	if err != nil {
		return nil, err
	}
	data, err := encodeBackup(db, format)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("export")
	}

	// Ensure parent directory exists
	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	if err := writeFileAtomic(exportPath, data); err != nil {
		return nil, err
	}

	return &ExportOutput{
		Path:        exportPath,
		Format:      format,
		Prompts:     len(db.Prompts),
		Collections: len(db.Collections),
		ExportedAt:  ts.Unix(),
	}, nil
}

func encodeBackup(db *library.Database, format Format) ([]byte, error) {
	if format == FormatJSON {
		data, err := library.Encode(db)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		return data, nil
	}

	out := *db
	if out.Version == 0 {
		out.Version = library.CurrentVersion
	}
	data, err := yaml.Marshal(&out)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return data, nil
}

// writeFileAtomic writes to a temp file first, then renames it into place so an
// existing file is preserved on failure.
func writeFileAtomic(path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}

	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink at the destination.
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}

	// On Windows, os.Rename fails if the destination exists. Fail safely and keep
	// the existing file rather than delete then rename.
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows yet (choose a new path or delete the existing file)")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}

// defaultExportPath generates the default export path.
// Format: ~/.prompthive/exports/prompthive-backup-<YYYY-MM-DD>.<ext>
func defaultExportPath(format Format, ts time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("prompthive-backup-%s.%s", ts.Format("2006-01-02"), format)
	return filepath.Join(dir, filename), nil
}
