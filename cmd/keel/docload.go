package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/meridian-grc/keel/pkg/policy"
)

// loadDocument reads a JSON or YAML document and returns it as JSON bytes.
// YAML is converted so every downstream consumer sees one wire format.
func loadDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", path, err)
		}
		return out, nil
	default:
		return data, nil
	}
}

// loadModuleDir collects module documents from a directory. Each file must
// be named <kind>.json or <kind>.yaml for a known module kind; anything
// else is skipped.
func loadModuleDir(dir string) (map[policy.ModuleKind]json.RawMessage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	known := make(map[string]policy.ModuleKind, len(policy.AllModuleKinds()))
	for _, kind := range policy.AllModuleKinds() {
		known[string(kind)] = kind
	}

	modules := make(map[policy.ModuleKind]json.RawMessage)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		base := strings.TrimSuffix(name, filepath.Ext(name))
		kind, ok := known[base]
		if !ok {
			continue
		}
		doc, err := loadDocument(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		modules[kind] = doc
	}
	return modules, nil
}
