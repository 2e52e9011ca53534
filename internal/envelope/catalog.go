package envelope

import (
	_ "embed"
	"fmt"

	"ecommerce-api/internal/errs"
	"ecommerce-api/pkg/database"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Documentation keys
const (
	DocValidation     = "validation"
	DocAuthentication = "authentication"
	DocReference      = "reference"
	DocCodes          = "codes"
	DocDatabase       = "database"
	DocSupport        = "support"
)

// Shape keys for failures that are not part of the taxonomy
const (
	ShapeForbidden = "forbidden"
	ShapeNotFound  = "notFound"
	ShapeToken     = "token"
	ShapeInternal  = "internal"
)

// FieldHint is the suggestion shown when a field fails validation
type FieldHint struct {
	Field string `yaml:"field"`
	Hint  string `yaml:"hint"`
}

// Catalog holds the suggestion and documentation tables. It is read-only once loaded.
type Catalog struct {
	Documentation    map[string]string                 `yaml:"documentation"`
	Fallback         []string                          `yaml:"fallback"`
	Codes            map[errs.ErrorCode][]string       `yaml:"codes"`
	Fields           []FieldHint                       `yaml:"fields"`
	Database         map[database.FailureCode][]string `yaml:"database"`
	DatabaseFallback []string                          `yaml:"databaseFallback"`
	Shapes           map[string][]string               `yaml:"shapes"`
}

// LoadCatalog parses a YAML catalog
func LoadCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse error catalog: %w", err)
	}
	if len(c.Fallback) == 0 {
		return nil, fmt.Errorf("error catalog has no fallback suggestions")
	}
	return &c, nil
}

// DefaultCatalog returns the catalog embedded in the binary
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(defaultCatalog)
}

// ForCode returns the suggestions for a wire code, or the fallback
func (c *Catalog) ForCode(code errs.ErrorCode) []string {
	if s, ok := c.Codes[code]; ok {
		return clone(s)
	}
	return clone(c.Fallback)
}

// ForFields returns the hints for the given field names in catalog order
func (c *Catalog) ForFields(fields []string) []string {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		seen[f] = true
	}

	hints := make([]string, 0)
	for _, h := range c.Fields {
		if seen[h.Field] {
			hints = append(hints, h.Hint)
		}
	}
	return hints
}

// ForDatabase returns the suggestions for a classified database failure
func (c *Catalog) ForDatabase(code database.FailureCode) []string {
	if s, ok := c.Database[code]; ok {
		return clone(s)
	}
	return clone(c.DatabaseFallback)
}

// ForShape returns the suggestions for a non-taxonomy failure shape
func (c *Catalog) ForShape(shape string) []string {
	if s, ok := c.Shapes[shape]; ok {
		return clone(s)
	}
	return clone(c.Fallback)
}

// Doc returns the documentation path for key
func (c *Catalog) Doc(key string) string {
	return c.Documentation[key]
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
