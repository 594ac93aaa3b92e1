// pkg/catalog/schema.go
package catalog

// SourceCatalog lists the authoritative sources the verifier may consult.
type SourceCatalog struct {
	Version     string        `json:"version"`
	LastUpdated string        `json:"lastUpdated"`
	Sources     []SourceEntry `json:"sources"`
}

// Kind values supported by the source registry.
const (
	KindHTTP   = "http"
	KindStatic = "static"
)

// SourceEntry describes one authoritative source. Kind selects the client
// implementation: "http" sources carry a baseUrl, "static" sources carry a
// dataFile relative to the configured data directory.
type SourceEntry struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	BaseURL     string   `json:"baseUrl,omitempty"`
	DataFile    string   `json:"dataFile,omitempty"`
	Reliability float64  `json:"reliability"`
	FieldTypes  []string `json:"fieldTypes"`
	Priority    int      `json:"priority"`
	TimeoutMS   int      `json:"timeoutMs,omitempty"`
}

// catalogSchema is the JSON Schema every catalog file must satisfy before
// the registry is built from it.
const catalogSchema = `{
	"type": "object",
	"required": ["version", "sources"],
	"properties": {
		"version": {"type": "string"},
		"lastUpdated": {"type": "string"},
		"sources": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["id", "name", "kind", "reliability", "fieldTypes", "priority"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"name": {"type": "string", "minLength": 1},
					"kind": {"type": "string", "enum": ["http", "static"]},
					"baseUrl": {"type": "string"},
					"dataFile": {"type": "string"},
					"reliability": {"type": "number", "minimum": 0, "maximum": 1},
					"fieldTypes": {
						"type": "array",
						"minItems": 1,
						"items": {
							"type": "string",
							"enum": ["accreditation", "placement_percentage", "average_salary", "program_seats", "ranking"]
						}
					},
					"priority": {"type": "integer", "minimum": 0},
					"timeoutMs": {"type": "integer", "minimum": 1}
				}
			}
		}
	}
}`
