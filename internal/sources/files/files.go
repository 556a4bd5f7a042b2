// Package files reads organization records from YAML, JSON or CSV files.
//
// YAML and JSON files hold either a bare list of records or a document
// {source: <id>, records: [...]}. CSV files have a header row starting with
// local_id,name,parent_local_id; further columns become attributes.
package files

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/orgmap/pkg/config"
	"github.com/agentstation/orgmap/pkg/errors"
	"github.com/agentstation/orgmap/pkg/org"
)

// Supported formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Required CSV columns, in order.
var csvHeader = []string{"local_id", "name", "parent_local_id"}

// Source reads one record file on every Records call.
type Source struct {
	id     string
	path   string
	format string
}

// document is the wrapped file layout.
type document struct {
	Source  string       `json:"source" yaml:"source"`
	Records []org.Record `json:"records" yaml:"records"`
}

// Open creates a Source for spec. The id defaults to the file name without
// extension and the format to the extension.
func Open(spec config.SourceSpec) (*Source, error) {
	if spec.Path == "" {
		return nil, errors.NewConfigError("path", spec.Path, "cannot be empty")
	}
	format, err := DetectFormat(spec.Path, spec.Format)
	if err != nil {
		return nil, err
	}
	id := spec.ID
	if id == "" {
		base := filepath.Base(spec.Path)
		id = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return &Source{id: id, path: spec.Path, format: format}, nil
}

// DetectFormat resolves an explicit format or the file extension.
func DetectFormat(path, format string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", errors.NewConfigError("format", format, "unsupported record file format for "+path)
}

// ID returns the source id.
func (s *Source) ID() string { return s.id }

// Path returns the file path.
func (s *Source) Path() string { return s.path }

// Format returns the resolved format.
func (s *Source) Format() string { return s.format }

// Records reads and parses the file.
func (s *Source) Records(ctx context.Context) ([]org.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path) //nolint:gosec
	if err != nil {
		return nil, errors.WrapIO("read", s.path, err)
	}

	var records []org.Record
	switch s.format {
	case FormatYAML:
		records, err = s.parseDocument(data, yaml.Unmarshal)
	case FormatJSON:
		records, err = s.parseDocument(data, json.Unmarshal)
	case FormatCSV:
		records, err = ParseCSV(bytes.NewReader(data))
	}
	if err != nil {
		var perr *errors.ParseError
		if stderrors.As(err, &perr) {
			perr.Format, perr.File = s.format, s.path
			return nil, perr
		}
		return nil, errors.WrapParse(s.format, s.path, err)
	}
	return records, nil
}

func (s *Source) parseDocument(data []byte, unmarshal func([]byte, any) error) ([]org.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var list []org.Record
	if trimmed[0] == '[' || trimmed[0] == '-' {
		if err := unmarshal(data, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var doc document
	if err := unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Source != "" && doc.Source != s.id {
		return nil, errors.NewIngestionError(s.id, "", "file declares source "+doc.Source, nil)
	}
	return doc.Records, nil
}

// ParseCSV reads records from CSV with a local_id,name,parent_local_id header.
// Empty attribute cells are omitted.
func ParseCSV(r io.Reader) ([]org.Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, csvError(err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}
	if len(header) < len(csvHeader) {
		return nil, &errors.ParseError{Line: 1, Message: "header must start with " + strings.Join(csvHeader, ",")}
	}
	for i, col := range csvHeader {
		if header[i] != col {
			return nil, &errors.ParseError{Line: 1, Message: "header must start with " + strings.Join(csvHeader, ",")}
		}
	}

	var records []org.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		rec := org.Record{
			LocalID:  strings.TrimSpace(row[0]),
			Name:     strings.TrimSpace(row[1]),
			ParentID: strings.TrimSpace(row[2]),
		}
		for i := len(csvHeader); i < len(row); i++ {
			v := strings.TrimSpace(row[i])
			if v == "" || header[i] == "" {
				continue
			}
			if rec.Attributes == nil {
				rec.Attributes = make(map[string]any)
			}
			rec.Attributes[header[i]] = v
		}
		records = append(records, rec)
	}
	return records, nil
}

func csvError(err error) error {
	var pe *csv.ParseError
	if stderrors.As(err, &pe) {
		return &errors.ParseError{Line: pe.Line, Message: pe.Err.Error(), Err: err}
	}
	return &errors.ParseError{Message: err.Error(), Err: err}
}
