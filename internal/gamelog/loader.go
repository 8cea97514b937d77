package gamelog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidLog is returned when a document is not valid JSON or lacks an
// events array. Nothing is compiled from such a document.
var ErrInvalidLog = errors.New("invalid log")

const documentSchemaURL = "https://mafiareplay.local/schemas/game-log.schema.json"

// documentSchema only checks the envelope. Individual events are never
// rejected: missing or mistyped fields inside them degrade to defaults.
const documentSchema = `{
	"type": "object",
	"required": ["events"],
	"properties": {
		"events": {
			"type": "array",
			"items": {"type": "object"}
		},
		"players": {
			"type": "array",
			"items": {"type": "object"}
		}
	}
}`

var compiledSchema = func() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(documentSchemaURL, strings.NewReader(documentSchema)); err != nil {
		panic(err)
	}
	return c.MustCompile(documentSchemaURL)
}()

// Parse decodes and checks a log document.
func Parse(data []byte) (*Log, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidLog)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLog, err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLog, err)
	}

	var log Log
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLog, err)
	}
	return &log, nil
}

// Decode reads a whole document from r.
func Decode(r io.Reader) (*Log, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	return Parse(data)
}

// LoadFile reads and parses the log at path. It also returns the raw bytes,
// which callers use to derive stable identifiers.
func LoadFile(path string) (*Log, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read log file: %w", err)
	}
	log, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}
	return log, data, nil
}
