package providerconf

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed providers.schema.json
var providerSchemaJSON string

// ProviderSpec describes one translation endpoint. Order in the file is the
// dispatch priority order.
type ProviderSpec struct {
	ID             string  `json:"id"`
	BaseURL        string  `json:"base_url"`
	TimeoutSeconds float64 `json:"timeout_seconds,omitempty"`
}

// Timeout returns the per-call timeout, falling back to def when unset.
func (p ProviderSpec) Timeout(def time.Duration) time.Duration {
	if p.TimeoutSeconds <= 0 {
		return def
	}
	return time.Duration(p.TimeoutSeconds * float64(time.Second))
}

type providerFile struct {
	Providers []ProviderSpec `json:"providers"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// Defaults returns the built-in public LibreTranslate-compatible endpoints.
func Defaults() []ProviderSpec {
	return []ProviderSpec{
		{ID: "libretranslate", BaseURL: "https://libretranslate.com/translate"},
		{ID: "argos", BaseURL: "https://translate.argosopentech.com/translate"},
		{ID: "terraprint", BaseURL: "https://translate.terraprint.co/translate"},
	}
}

// Load reads and validates the provider list at path. An empty path returns
// the built-in defaults.
func Load(path string) ([]ProviderSpec, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return Defaults(), nil
	}

	raw, err := os.ReadFile(trimmed)
	if err != nil {
		return nil, fmt.Errorf("read provider config %s: %w", trimmed, err)
	}
	specs, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("provider config %s: %w", trimmed, err)
	}
	return specs, nil
}

// Parse validates raw JSON against the embedded schema and decodes the
// ordered provider list. Duplicate provider ids are rejected.
func Parse(raw []byte) ([]ProviderSpec, error) {
	value, err := decodeStrictJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("decode provider JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize provider JSON: %w", err)
	}

	var file providerFile
	if err := json.Unmarshal(normalized, &file); err != nil {
		return nil, fmt.Errorf("unmarshal provider list: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Providers))
	for _, spec := range file.Providers {
		if _, exists := seen[spec.ID]; exists {
			return nil, fmt.Errorf("duplicate provider id %q", spec.ID)
		}
		seen[spec.ID] = struct{}{}
	}

	return file.Providers, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if err := ensureSingleDocument(decoder); err != nil {
		return nil, err
	}
	return value, nil
}

func ensureSingleDocument(decoder *json.Decoder) error {
	var extra any
	err := decoder.Decode(&extra)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("unexpected trailing JSON document")
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiledSchema, compiledSchemaErr = jsonschema.CompileString("providers.schema.json", providerSchemaJSON)
	})
	return compiledSchema, compiledSchemaErr
}
