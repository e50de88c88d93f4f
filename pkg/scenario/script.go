package scenario

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Command is one authored step of a script: a command name plus its raw,
// untyped arguments. Commands interpret the arguments themselves.
type Command struct {
	Name string            `json:"command" yaml:"command"`
	Args map[string]string `json:"args,omitempty" yaml:"args,omitempty"`
}

// GetArg returns the named argument, or "" if the command does not set it.
func (c Command) GetArg(name string) string {
	if c.Args == nil {
		return ""
	}
	return c.Args[name]
}

// ImageSpec declares an image view present on the stage.
type ImageSpec struct {
	Name     string `json:"name" yaml:"name"`
	Material string `json:"material,omitempty" yaml:"material,omitempty"` // "dynamic", "static" or empty for none
}

// RetainerBoxSpec declares an effect container present on the stage.
type RetainerBoxSpec struct {
	Name    string `json:"name" yaml:"name"`
	Effect  string `json:"effect,omitempty" yaml:"effect,omitempty"`   // "dynamic", "static" or empty for none
	Invalid bool   `json:"invalid,omitempty" yaml:"invalid,omitempty"` // registered but no longer backed by a live instance
}

// Stage lists the named targets a script expects to find on screen.
type Stage struct {
	Images        []ImageSpec       `json:"images,omitempty" yaml:"images,omitempty"`
	RetainerBoxes []RetainerBoxSpec `json:"retainer_boxes,omitempty" yaml:"retainer_boxes,omitempty"`
}

// Script is an authored sequence of commands together with the stage it runs on.
type Script struct {
	Name     string    `json:"name" yaml:"name"`
	FileName string    `json:"file_name,omitempty" yaml:"file_name,omitempty"`
	Stage    Stage     `json:"stage" yaml:"stage"`
	Commands []Command `json:"commands" yaml:"commands"`
}

// ParseScript decodes a script file. The format is chosen by extension:
// .json, or .yaml/.yml. Unknown fields are rejected.
func ParseScript(filename string, data []byte) (*Script, error) {
	var s Script
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode script %s: %w", filename, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode script %s: %w", filename, err)
		}
	default:
		return nil, fmt.Errorf("unsupported script format: %s", filename)
	}

	if s.FileName == "" {
		s.FileName = filepath.Base(filename)
	}
	for i, c := range s.Commands {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("script %s: command %d has no name", filename, i)
		}
	}
	return &s, nil
}
