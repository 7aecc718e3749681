package library

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CorruptError reports content that is not valid JSON.
type CorruptError struct {
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("database is not valid JSON: %v", e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// UnsupportedVersionError reports a document version outside KnownVersions.
type UnsupportedVersionError struct {
	Version int
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported database version %d", e.Version)
}

// InvalidDocumentError reports valid JSON that does not have the database shape.
type InvalidDocumentError struct {
	Err error
}

func (e *InvalidDocumentError) Error() string {
	return fmt.Sprintf("invalid database document: %v", e.Err)
}

func (e *InvalidDocumentError) Unwrap() error { return e.Err }

// Encode serializes db as pretty-printed JSON with 2-space indentation.
// A zero version is stamped with CurrentVersion; unknown versions are refused.
// db itself is not modified.
func Encode(db *Database) ([]byte, error) {
	if db == nil {
		db = Default()
	}
	out := *db
	if out.Version == 0 {
		out.Version = CurrentVersion
	}
	if !KnownVersions[out.Version] {
		return nil, &UnsupportedVersionError{Version: out.Version}
	}
	if out.Prompts == nil {
		out.Prompts = []Prompt{}
	}
	if out.Collections == nil {
		out.Collections = []Collection{}
	}
	// Tags must encode as [], so nil tag slices get replaced on a private copy.
	for i := range out.Prompts {
		if out.Prompts[i].Tags == nil {
			out.Prompts = append([]Prompt(nil), out.Prompts...)
			for j := range out.Prompts {
				if out.Prompts[j].Tags == nil {
					out.Prompts[j].Tags = []string{}
				}
			}
			break
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var utf8BOM = []byte("\xEF\xBB\xBF")

// TrimBOM drops a leading UTF-8 byte order mark. Editors on Windows add one
// when saving database.json by hand.
func TrimBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

// Decode parses a database document. A leading byte order mark is ignored.
//
// Errors are typed: *CorruptError for malformed JSON, *UnsupportedVersionError
// for a version outside KnownVersions, *InvalidDocumentError for JSON of the
// wrong shape. Callers decide which of these are recoverable.
func Decode(data []byte) (*Database, error) {
	data = TrimBOM(data)
	if !json.Valid(data) {
		var v any
		err := json.Unmarshal(data, &v)
		if err == nil {
			err = fmt.Errorf("invalid JSON")
		}
		return nil, &CorruptError{Err: err}
	}

	var probe struct {
		Version json.RawMessage `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, &InvalidDocumentError{Err: err}
	}

	version := 0
	if len(probe.Version) > 0 && string(probe.Version) != "null" {
		if err := json.Unmarshal(probe.Version, &version); err != nil {
			return nil, &InvalidDocumentError{Err: fmt.Errorf("version must be an integer: %w", err)}
		}
	}
	if !KnownVersions[version] {
		return nil, &UnsupportedVersionError{Version: version}
	}

	db := &Database{}
	if err := json.Unmarshal(data, db); err != nil {
		return nil, &InvalidDocumentError{Err: err}
	}
	db.normalize()
	return db, nil
}
