package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stackbundle/pkg/deps"
	"github.com/matzehuels/stackbundle/pkg/errors"
	"github.com/matzehuels/stackbundle/pkg/report"
)

// Formats accepted by [WriteReport].
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

func fromNode(n *deps.Node) node {
	out := node{
		Coordinate: n.ID.String(),
		File:       n.File,
		URL:        n.URL,
		Bundle:     n.Bundle,
		Headers:    n.Headers,
		Packages:   n.Provides,
	}
	for _, c := range n.Children {
		out.Dependencies = append(out.Dependencies, fromNode(c))
	}
	return out
}

// WriteJSON encodes a tree as indented JSON.
// The output can be re-imported with [ReadJSON].
func WriteJSON(tree *deps.Node, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fromNode(tree)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes a tree as YAML.
func WriteYAML(tree *deps.Node, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fromNode(tree)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// ExportTree writes a tree to path, choosing the encoding by extension.
func ExportTree(tree *deps.Node, path string) error {
	format, err := formatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if format == FormatYAML {
		return WriteYAML(tree, f)
	}
	return WriteJSON(tree, f)
}

// WriteReport encodes a report in the given format ("json" or "yaml").
func WriteReport(r *report.Report, w io.Writer, format string) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	}
	return errors.New(errors.ErrCodeUnsupported, "unsupported report format: %s", format)
}

// ExportReport writes a report to path, choosing the encoding by extension.
func ExportReport(r *report.Report, path string) error {
	format, err := formatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteReport(r, f, format)
}

func formatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", path)
}
