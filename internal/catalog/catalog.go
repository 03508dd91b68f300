// Package catalog loads the letter template dictionary and performs
// placeholder substitution over its fixed contract.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"

	"go.uber.org/zap"
)

// ErrMissingReferenceData is returned when the template dictionary is
// absent or not valid JSON. It is fatal at startup.
var ErrMissingReferenceData = errors.New("template catalog unavailable")

// SignatureMarker is the literal marker templates carry at the position
// where the signature is inserted into the rendered document.
const SignatureMarker = "[Student Signature]"

// RenderError reports a placeholder whose value was not supplied. The
// attempt is aborted; no partial output is produced.
type RenderError struct {
	Template string
	Field    string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("template %q: no value for placeholder %q", e.Template, e.Field)
}

// placeholderPattern matches {field_name} tokens, the contract the
// on-disk templates were written against.
var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// Catalog is the immutable template dictionary.
type Catalog struct {
	templates map[string]string
	logger    *zap.Logger
}

// Load reads the template dictionary from a JSON file mapping template
// name to template text.
func Load(path string, logger *zap.Logger) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingReferenceData, err)
	}

	var templates map[string]string
	if err := json.Unmarshal(raw, &templates); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingReferenceData, err)
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("%w: no templates defined", ErrMissingReferenceData)
	}

	logger.Info("Template catalog loaded",
		zap.String("path", path),
		zap.Int("templates", len(templates)))

	return &Catalog{templates: templates, logger: logger}, nil
}

// FromMap builds a catalog from in-memory templates.
func FromMap(templates map[string]string, logger *zap.Logger) *Catalog {
	return &Catalog{templates: templates, logger: logger}
}

// Names returns the available template names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.templates))
	for name := range c.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the named template exists.
func (c *Catalog) Has(name string) bool {
	_, ok := c.templates[name]
	return ok
}

// Render substitutes every placeholder in the named template from values.
// A placeholder with no corresponding value is a hard failure: a
// *RenderError is returned and no text is produced.
func (c *Catalog) Render(name string, values map[string]string) (string, error) {
	text, ok := c.templates[name]
	if !ok {
		return "", &RenderError{Template: name, Field: "template"}
	}

	var missing string
	out := placeholderPattern.ReplaceAllStringFunc(text, func(token string) string {
		field := token[1 : len(token)-1]
		value, ok := values[field]
		if !ok {
			if missing == "" {
				missing = field
			}
			return token
		}
		return value
	})
	if missing != "" {
		return "", &RenderError{Template: name, Field: missing}
	}
	return out, nil
}
