package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	cgerrors "github.com/matzehuels/clustergraph/pkg/errors"
)

// Document is the serialized form of a graph.
type Document struct {
	Nodes []Node `json:"nodes" toml:"nodes"`
	Links []Link `json:"links" toml:"links"`
}

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a Graph to indented JSON bytes.
// Nodes and links keep their definition order.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a Graph as JSON to an io.Writer.
func WriteGraph(g *Graph, w io.Writer) error {
	doc := Document{Nodes: g.Nodes(), Links: g.Links()}
	if doc.Nodes == nil {
		doc.Nodes = []Node{}
	}
	if doc.Links == nil {
		doc.Links = []Link{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteGraphFile writes a Graph to a JSON file.
func WriteGraphFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(g, f)
}

// ReadGraph decodes a JSON graph from an io.Reader and builds it.
func ReadGraph(r io.Reader) (*Graph, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidFormat, err, "decode graph JSON")
	}
	return Build(doc.Nodes, doc.Links)
}

// ReadGraphTOML decodes a TOML graph from an io.Reader and builds it.
func ReadGraphTOML(r io.Reader) (*Graph, error) {
	var doc Document
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidFormat, err, "decode graph TOML")
	}
	return Build(doc.Nodes, doc.Links)
}

// ReadGraphFile reads a graph file. Files with a .toml extension are decoded
// as TOML, everything else as JSON.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cgerrors.Wrap(cgerrors.ErrCodeFileNotFound, err, "graph file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ReadGraphTOML(f)
	}
	return ReadGraph(f)
}
