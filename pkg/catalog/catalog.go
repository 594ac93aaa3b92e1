// pkg/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "college-recommender/internal/common/errors"
)

// Load reads and validates a source catalog file. A catalog that fails
// schema validation is a startup error; the pipeline never runs against a
// partially valid catalog.
func Load(path string) (*SourceCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse validates raw catalog JSON against the schema and decodes it.
func Parse(data []byte) (*SourceCatalog, error) {
	schemaLoader := gojsonschema.NewStringLoader(catalogSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("catalog validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, apperrors.NewCatalogInvalidError(strings.Join(errs, "; "))
	}

	var cat SourceCatalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	if err := checkUniqueIDs(&cat); err != nil {
		return nil, err
	}

	return &cat, nil
}

func checkUniqueIDs(cat *SourceCatalog) error {
	seen := make(map[string]bool, len(cat.Sources))
	for _, s := range cat.Sources {
		if seen[s.ID] {
			return apperrors.NewCatalogInvalidError(fmt.Sprintf("duplicate source id %q", s.ID))
		}
		seen[s.ID] = true

		if s.Kind == KindHTTP && s.BaseURL == "" {
			return apperrors.NewCatalogInvalidError(fmt.Sprintf("source %q: http sources require baseUrl", s.ID))
		}
		if s.Kind == KindStatic && s.DataFile == "" {
			return apperrors.NewCatalogInvalidError(fmt.Sprintf("source %q: static sources require dataFile", s.ID))
		}
	}
	return nil
}
