// Package exemplar loads the real people each persona cites when advising.
//
// Files live at <dir>/<persona_id>.json and look like
//
//	{"persona": "strategist", "exemplars": ["Reid Hoffman", "Andy Grove"]}
//
// A missing file means no exemplars. A malformed file is reported but is
// never fatal: callers treat it as absent.
package exemplar

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"braintrust/internal/logger"

	"github.com/tidwall/gjson"
)

// Set maps a persona ID to its ordered exemplar names.
type Set map[string][]string

// Names returns the names for id, or nil.
func (s Set) Names(id string) []string {
	if s == nil {
		return nil
	}
	return s[id]
}

// FilePath is where the exemplars for personaID are expected.
func FilePath(dir, personaID string) string {
	return filepath.Join(dir, personaID+".json")
}

// Load reads the exemplar names for one persona. A missing file yields an
// empty list and no error.
func Load(dir, personaID string) ([]string, error) {
	path := FilePath(dir, personaID)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading exemplar file %s: %w", path, err)
	}
	names, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("exemplar file %s: %w", path, err)
	}
	if declared := gjson.GetBytes(raw, "persona").String(); declared != "" && declared != personaID {
		logger.Debugf("exemplar file %s declares persona %q, loaded for %q", path, declared, personaID)
	}
	return names, nil
}

// Parse validates one exemplar document and extracts the names in order.
func Parse(raw []byte) ([]string, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("malformed JSON")
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("malformed JSON: %w", err)
	}
	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("exemplar schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid exemplar document: %w", err)
	}
	var names []string
	gjson.GetBytes(raw, "exemplars").ForEach(func(_, item gjson.Result) bool {
		var name string
		switch {
		case item.Type == gjson.String:
			name = item.String()
		case item.IsObject():
			name = item.Get("name").String()
		}
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
		return true
	})
	return names, nil
}

// LoadAll reads the exemplars for every persona in ids once, for a single
// invocation. Malformed files are logged and treated as having no exemplars.
func LoadAll(dir string, ids []string) Set {
	set := make(Set, len(ids))
	for _, id := range ids {
		names, err := Load(dir, id)
		if err != nil {
			logger.Warnf("ignoring exemplars for %s: %v", id, err)
			continue
		}
		if len(names) > 0 {
			set[id] = names
		}
	}
	return set
}

// FormatBlock renders names as the prompt section advisors are told to cite.
// It returns "" when there are no names.
func FormatBlock(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return `=== EXEMPLARS ===
These are real people with proven track records whose expertise aligns with this
persona. When providing recommendations, research these individuals from your
knowledge base and cite specific actions, decisions, or approaches they took
that support your advice.

Exemplars: ` + strings.Join(names, ", ") + `

=== END EXEMPLARS ===`
}
