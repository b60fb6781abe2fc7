package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stackbundle/pkg/deps"
	"github.com/matzehuels/stackbundle/pkg/errors"
)

type node struct {
	Coordinate   string            `json:"coordinate" yaml:"coordinate"`
	File         string            `json:"file,omitempty" yaml:"file,omitempty"`
	URL          string            `json:"url,omitempty" yaml:"url,omitempty"`
	Bundle       bool              `json:"bundle,omitempty" yaml:"bundle,omitempty"`
	Headers      map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Packages     []string          `json:"packages,omitempty" yaml:"packages,omitempty"`
	Dependencies []node            `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// ReadJSON decodes a JSON tree from r. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*deps.Node, error) {
	var data node
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return data.toNode()
}

// ReadYAML decodes a YAML tree from r. ReadYAML does not close r.
func ReadYAML(r io.Reader) (*deps.Node, error) {
	var data node
	if err := yaml.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return data.toNode()
}

// ImportTree reads a tree file, choosing the decoder by extension.
func ImportTree(path string) (*deps.Node, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	read := ReadJSON
	if format == FormatYAML {
		read = ReadYAML
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "tree file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	tree, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

func (n node) toNode() (*deps.Node, error) {
	id, err := deps.ParseIdentity(n.Coordinate)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", n.Coordinate, err)
	}
	out := &deps.Node{
		ID:       id,
		File:     n.File,
		URL:      n.URL,
		Bundle:   n.Bundle,
		Headers:  n.Headers,
		Provides: n.Packages,
	}
	for _, c := range n.Dependencies {
		child, err := c.toNode()
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, child)
	}
	return out, nil
}
