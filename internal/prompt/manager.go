// Package prompt renders model prompts for file reviews from embedded
// templates. Templates are keyed by task and model provider so a provider
// with quirks can carry its own variant while everything else shares the
// default.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed prompts/*.prompt
var promptFiles embed.FS

type ModelProvider string
type Key string

const (
	DefaultProvider ModelProvider = "default"
	FileReviewKey   Key           = "file_review"
)

// Manager holds the parsed prompt templates, loaded once at startup.
type Manager struct {
	prompts map[Key]map[ModelProvider]*template.Template
}

// NewManager parses every embedded *.prompt file. Filenames follow
// "key_provider.prompt", e.g. "file_review_default.prompt".
func NewManager() (*Manager, error) {
	m := &Manager{
		prompts: make(map[Key]map[ModelProvider]*template.Template),
	}

	files, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded prompts directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}

		fileName := file.Name()
		baseName := strings.TrimSuffix(fileName, filepath.Ext(fileName))
		lastUnderscore := strings.LastIndex(baseName, "_")
		if lastUnderscore <= 0 || lastUnderscore == len(baseName)-1 {
			return nil, fmt.Errorf("invalid prompt filename format: %s (expected 'key_provider.prompt')", fileName)
		}

		key := Key(baseName[:lastUnderscore])
		provider := ModelProvider(baseName[lastUnderscore+1:])

		content, err := promptFiles.ReadFile("prompts/" + fileName)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded prompt file %s: %w", fileName, err)
		}

		if err := m.register(key, provider, string(content)); err != nil {
			return nil, fmt.Errorf("failed to register prompt from file %s: %w", fileName, err)
		}
	}

	return m, nil
}

func (m *Manager) register(key Key, provider ModelProvider, content string) error {
	tmpl, err := template.New(string(key) + "_" + string(provider)).Parse(content)
	if err != nil {
		return fmt.Errorf("could not parse template: %w", err)
	}

	if _, ok := m.prompts[key]; !ok {
		m.prompts[key] = make(map[ModelProvider]*template.Template)
	}
	m.prompts[key][provider] = tmpl
	return nil
}

// Get resolves a template for the key and provider, falling back to the
// default provider variant.
func (m *Manager) Get(key Key, provider ModelProvider) (*template.Template, error) {
	taskPrompts, ok := m.prompts[key]
	if !ok {
		return nil, fmt.Errorf("no prompts found for key %q", key)
	}

	if tmpl, ok := taskPrompts[provider]; ok {
		return tmpl, nil
	}
	if tmpl, ok := taskPrompts[DefaultProvider]; ok {
		return tmpl, nil
	}

	return nil, fmt.Errorf("no template found for key %q and provider %q, and no default was available", key, provider)
}

// Render executes the resolved template with the given data.
func (m *Manager) Render(key Key, provider ModelProvider, data any) (string, error) {
	tmpl, err := m.Get(key, provider)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}
