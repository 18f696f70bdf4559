package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/conform"
	"gopkg.in/yaml.v3"
)

var definitionExts = []string{".yaml", ".yml", ".json"}

// ReadDocument reads a JSON or YAML document from path ("-" reads stdin).
// The top level must be an object. YAML input is normalized to the shapes the
// JSON decoder produces, with numbers kept as json.Number.
func ReadDocument(path string, stdin io.Reader) (map[string]any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return DecodeDocument(data)
}

// DecodeDocument decodes data as JSON when it looks like JSON, and as YAML otherwise.
func DecodeDocument(data []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("document is empty")
	}

	if trimmed[0] != '{' && trimmed[0] != '[' {
		var tree any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("invalid yaml document: %w", err)
		}
		normalized, err := json.Marshal(tree)
		if err != nil {
			return nil, fmt.Errorf("document cannot be represented as json: %w", err)
		}
		trimmed = normalized
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("invalid json document: %w", err)
	}
	doc, ok := tree.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document must be an object, got %T", tree)
	}
	return doc, nil
}

// DefinitionName derives a definition name from a file path: signup.yaml -> signup.
func DefinitionName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadDir registers every definition file found directly in dir and returns
// how many were registered. A missing directory registers nothing.
func LoadDir(ctx context.Context, eng *conform.Engine, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read definitions dir: %w", err)
	}

	n := 0
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !slices.Contains(definitionExts, strings.ToLower(filepath.Ext(entry.Name()))) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		source, err := os.ReadFile(path)
		if err != nil {
			return n, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := eng.Register(ctx, DefinitionName(path), source); err != nil {
			return n, fmt.Errorf("%s: %w", path, err)
		}
		n++
	}
	return n, nil
}
