// Package file loads portfolio facts from a YAML document.
package file

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/vsurfcode/portfolio-voice/core/portfolio"
	"gopkg.in/yaml.v3"
)

// Provider reads the facts file on every call so edits are picked up by the
// next session without a restart.
type Provider struct {
	path string
}

func NewProvider(path string) *Provider {
	return &Provider{path: path}
}

func (p *Provider) Facts(_ context.Context) (portfolio.Facts, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return portfolio.Facts{}, fmt.Errorf("failed to read portfolio file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML facts document. Unknown keys are rejected so typos do
// not silently drop facts.
func Parse(data []byte) (portfolio.Facts, error) {
	var facts portfolio.Facts

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&facts); err != nil {
		return portfolio.Facts{}, fmt.Errorf("failed to parse portfolio file: %w", err)
	}

	return facts, nil
}
