package parser

import (
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// outputSchema is the contract every model response must satisfy: a single
// object carrying a transactions array and an optional summary block.
const outputSchema = `{
  "type": "object",
  "required": ["transactions"],
  "properties": {
    "summary": {"type": "object"},
    "transactions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["description", "amount"],
        "properties": {
          "date": {"type": ["string", "null"]},
          "merchant": {"type": ["string", "null"]},
          "description": {"type": "string"},
          "amount": {"type": "number"},
          "currency": {"type": ["string", "null"]}
        }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
)

func schema() *jsonschema.Schema {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("output.json", strings.NewReader(outputSchema)); err != nil {
			panic(err)
		}
		compiledSchema = compiler.MustCompile("output.json")
	})
	return compiledSchema
}
