// Package seed bulk-loads switch submissions from YAML or JSON files.
package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ahmed-Ibrahim-0/switches-controller/lifecycle"
	"github.com/Ahmed-Ibrahim-0/switches-controller/models"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Creator is the part of lifecycle.Service an import needs.
type Creator interface {
	Create(ctx context.Context, f lifecycle.Fields) (*models.Switch, error)
}

// document is the wrapped form: a top-level "switches" list.
type document struct {
	Switches []lifecycle.Fields `json:"switches" yaml:"switches"`
}

// Load reads a seed file, choosing the decoder from its extension.
func Load(path string) ([]lifecycle.Fields, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rows, err := Decode(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return rows, nil
}

// Decode accepts either a bare list of submissions or a document with a
// "switches" key. ext selects the format: .yaml/.yml or .json/.jsonc.
func Decode(ext string, data []byte) ([]lifecycle.Fields, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return decodeYAML(data)
	case ".json", ".jsonc":
		return decodeJSON(data)
	default:
		return nil, fmt.Errorf("unsupported seed format %q", ext)
	}
}

func decodeYAML(data []byte) ([]lifecycle.Fields, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		var rows []lifecycle.Fields
		if err := node.Decode(&rows); err != nil {
			return nil, err
		}
		return rows, nil
	}
	var doc document
	if err := node.Decode(&doc); err != nil {
		return nil, err
	}
	return doc.Switches, nil
}

func decodeJSON(data []byte) ([]lifecycle.Fields, error) {
	// comments and trailing commas are stripped first
	clean := bytes.TrimSpace(jsonc.ToJSON(data))
	if len(clean) == 0 {
		return nil, nil
	}
	if clean[0] == '[' {
		var rows []lifecycle.Fields
		if err := json.Unmarshal(clean, &rows); err != nil {
			return nil, err
		}
		return rows, nil
	}
	var doc document
	if err := json.Unmarshal(clean, &doc); err != nil {
		return nil, err
	}
	return doc.Switches, nil
}

// Rejection records a row the engine refused.
type Rejection struct {
	Row    int // zero based position in the seed file
	Serial string
	Err    error
}

type Result struct {
	Imported []*models.Switch
	Rejected []Rejection
}

// Import submits rows one by one in file order. Validation and conflict
// failures are collected and the import moves on; a store failure stops it
// and returns what was imported so far.
func Import(ctx context.Context, c Creator, rows []lifecycle.Fields) (*Result, error) {
	res := &Result{}
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		sw, err := c.Create(ctx, row)
		switch lifecycle.KindOf(err) {
		case lifecycle.KindNone:
			res.Imported = append(res.Imported, sw)
		case lifecycle.KindValidation, lifecycle.KindConflict:
			res.Rejected = append(res.Rejected, Rejection{Row: i, Serial: row.GoverningSerial(), Err: err})
		default:
			return res, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return res, nil
}
