package prompts

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ProfilePlaceholder = "INPUT_JSON_HERE"
	SchemaPlaceholder  = "INPUT_JSON_RESPONSE_SCHEMA"
	StageCount         = 3
)

//go:embed prompts.yaml
var defaultYAML []byte

// Set is one immutable prompt configuration. Jobs hold on to the Set they
// started with even if a newer one is loaded mid-run.
type Set struct {
	Version        int      `yaml:"version"`
	System         string   `yaml:"system"`
	ResponseSchema string   `yaml:"response_schema"`
	Stages         []string `yaml:"stages"`
}

// Default returns the embedded prompt set.
func Default() (*Set, error) {
	return Parse(defaultYAML)
}

// LoadFile reads a prompt set from disk.
func LoadFile(path string) (*Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts %s: %w", path, err)
	}
	set, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("prompts %s: %w", path, err)
	}
	return set, nil
}

func Parse(raw []byte) (*Set, error) {
	var s Set
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode prompts: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Set) validate() error {
	if strings.TrimSpace(s.System) == "" {
		return fmt.Errorf("prompts: system message is empty")
	}
	if strings.TrimSpace(s.ResponseSchema) == "" {
		return fmt.Errorf("prompts: response_schema is empty")
	}
	if len(s.Stages) != StageCount {
		return fmt.Errorf("prompts: want %d stages, got %d", StageCount, len(s.Stages))
	}
	for i, tmpl := range s.Stages {
		if strings.TrimSpace(tmpl) == "" {
			return fmt.Errorf("prompts: stage %d is empty", i+1)
		}
	}
	return nil
}

// Stage renders the user message for stage n (1-based).
func (s *Set) Stage(n int, profileText string) (string, error) {
	if n < 1 || n > len(s.Stages) {
		return "", fmt.Errorf("prompts: no stage %d", n)
	}
	out := strings.ReplaceAll(s.Stages[n-1], ProfilePlaceholder, profileText)
	out = strings.ReplaceAll(out, SchemaPlaceholder, strings.TrimSpace(s.ResponseSchema))
	return strings.TrimSpace(out), nil
}

func (s *Set) SystemMessage() string {
	return strings.TrimSpace(s.System)
}

// Fingerprint identifies the prompt text a job ran with.
func (s *Set) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(strconv.Itoa(s.Version)))
	h.Write([]byte{0})
	h.Write([]byte(strings.TrimSpace(s.System)))
	h.Write([]byte{0})
	h.Write([]byte(strings.TrimSpace(s.ResponseSchema)))
	for _, st := range s.Stages {
		h.Write([]byte{0})
		h.Write([]byte(strings.TrimSpace(st)))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
