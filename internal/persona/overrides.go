package persona

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// overrideFile is the on-disk shape of a persona override file.
type overrideFile struct {
	Personas []overrideEntry `yaml:"personas"`
}

type overrideEntry struct {
	ID           string `yaml:"id"`
	DisplayName  string `yaml:"display_name"`
	SystemPrompt string `yaml:"system_prompt"`
	Color        string `yaml:"color"`
	Summarizer   *bool  `yaml:"summarizer"`
	// Guardrails appends the shared advisor instructions to SystemPrompt.
	Guardrails bool `yaml:"guardrails"`
}

// LoadOverrides returns a new registry made of base plus the entries in path.
// Entries matching an existing ID replace the fields they set; new IDs are
// appended in file order. Unknown YAML fields are rejected.
func LoadOverrides(base *Registry, path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona overrides failed: %w", err)
	}
	return applyOverrides(base, raw)
}

func applyOverrides(base *Registry, raw []byte) (*Registry, error) {
	var file overrideFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse persona overrides failed: %w", err)
	}
	if base == nil {
		base = Default()
	}
	list := base.All()
	index := make(map[string]int, len(list))
	for i, p := range list {
		index[p.ID] = i
	}
	for _, entry := range file.Personas {
		id := NormalizeID(entry.ID)
		if id == "" {
			return nil, fmt.Errorf("persona override without id")
		}
		prompt := strings.TrimSpace(entry.SystemPrompt)
		if prompt != "" && entry.Guardrails {
			prompt += advisorGuardrails
		}
		if i, ok := index[id]; ok {
			p := list[i]
			if prompt != "" {
				p.SystemPrompt = prompt
			}
			if name := strings.TrimSpace(entry.DisplayName); name != "" {
				p.DisplayName = name
			}
			if c := strings.TrimSpace(entry.Color); c != "" {
				p.Color = c
			}
			if entry.Summarizer != nil {
				p.Summarizer = *entry.Summarizer
			}
			list[i] = p
			continue
		}
		p := Persona{
			ID:           id,
			DisplayName:  strings.TrimSpace(entry.DisplayName),
			SystemPrompt: prompt,
			Color:        strings.TrimSpace(entry.Color),
		}
		if entry.Summarizer != nil {
			p.Summarizer = *entry.Summarizer
		}
		if p.Color == "" {
			p.Color = "blue"
		}
		index[id] = len(list)
		list = append(list, p)
	}
	return newRegistry(list)
}
