package exemplar

import (
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// fileSchema accepts the current list-of-names format and the legacy object
// entries that carried a name next to per-action details.
const fileSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "persona": {"type": "string"},
    "exemplars": {
      "type": "array",
      "items": {
        "anyOf": [
          {"type": "string"},
          {
            "type": "object",
            "required": ["name"],
            "properties": {"name": {"type": "string", "minLength": 1}}
          }
        ]
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("exemplars.json", strings.NewReader(fileSchema)); err != nil {
			schemaErr = err
			return
		}
		schemaCompiled, schemaErr = compiler.Compile("exemplars.json")
	})
	return schemaCompiled, schemaErr
}
