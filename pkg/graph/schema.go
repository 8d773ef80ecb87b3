package graph

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/aihub-tools/aihub-export/pkg/logger"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

var schemaLog = logger.New("graph:schema")

//go:embed schemas/snapshot.schema.json
var snapshotSchemaJSON []byte

const snapshotSchemaURL = "https://aihub.local/schemas/snapshot.schema.json"

var compileSnapshotSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	schemaLog.Print("Compiling snapshot schema")
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(snapshotSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(snapshotSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add snapshot schema: %w", err)
	}
	return c.Compile(snapshotSchemaURL)
})

// validateShape checks a JSON graph document against the snapshot schema.
func validateShape(data []byte) error {
	schema, err := compileSnapshotSchema()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := schema.Validate(inst); err != nil {
		schemaLog.Printf("Snapshot failed schema validation: %v", err)
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
