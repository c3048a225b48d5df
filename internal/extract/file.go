package extract

import (
	"encoding/json"
	"fmt"
	"os"

	"jira-cfd/internal/cfd"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/rs/zerolog/log"
)

// itemsFileSchema describes {"KEY-1": {"Status": "YYYY-MM-DD", ...}, ...}.
var itemsFileSchema = &jsonschema.Schema{
	Type: "object",
	AdditionalProperties: &jsonschema.Schema{
		Type: "object",
		AdditionalProperties: &jsonschema.Schema{
			Type:    "string",
			Pattern: `^[0-9]{4}-[0-9]{2}-[0-9]{2}$`,
		},
	},
}

// ParseItems validates and converts a JSON document mapping item keys to
// {status: date} objects.
func ParseItems(data []byte) ([]cfd.Item, error) {
	resolved, err := itemsFileSchema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve items schema: %w", err)
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := resolved.Validate(instance); err != nil {
		return nil, fmt.Errorf("items file does not match the expected shape: %w", err)
	}

	var raw map[string]map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid items document: %w", err)
	}
	return cfd.ItemsFromDateMap(raw)
}

// LoadItemsFile reads an items JSON file from disk.
func LoadItemsFile(path string) ([]cfd.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read items file: %w", err)
	}

	items, err := ParseItems(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Info().Str("path", path).Int("items", len(items)).Msg("Loaded items from file")
	return items, nil
}
