package fileset

import (
	"errors"
	"fmt"
	"strings"
)

const (
	msgJSONRequired  = "a JSON schema file (.json) is required"
	msgJSONTooMany   = "only one JSON schema file (.json) is allowed, got %d"
	msgSchemaBoth    = "either an XSD or an XML schema is allowed, not both"
	msgSchemaMissing = "an XSD or XML schema file is required"
	msgSchemaTooMany = "only one XSD/XML schema file is allowed, got %d"
)

// ErrSchemaConflict rejects a selection that would hold XSD and XML together.
var ErrSchemaConflict = errors.New(msgSchemaBoth)

// Result is the outcome of Validate. Valid is true iff Errors is empty.
type Result struct {
	Valid  bool
	Errors []string
}

// Err returns nil for a valid result and a *ValidationError otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Problems: r.Errors}
}

// ValidationError lists every composition rule a file set breaks.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid file set: " + strings.Join(e.Problems, "; ")
}

type counts struct {
	json, xsd, xml int
}

func count(names []string) counts {
	var c counts
	for _, n := range names {
		switch Extension(n) {
		case "json":
			c.json++
		case "xsd":
			c.xsd++
		case "xml":
			c.xml++
		}
	}
	return c
}

// Validate checks names against the generation rule: exactly one .json file
// and exactly one of .xsd/.xml.
func Validate(names []string) Result {
	c := count(names)
	var problems []string

	switch {
	case c.json == 0:
		problems = append(problems, msgJSONRequired)
	case c.json > 1:
		problems = append(problems, fmt.Sprintf(msgJSONTooMany, c.json))
	}

	switch {
	case c.xsd > 0 && c.xml > 0:
		problems = append(problems, msgSchemaBoth)
	case c.xsd == 0 && c.xml == 0:
		problems = append(problems, msgSchemaMissing)
	case c.xsd > 1 || c.xml > 1:
		problems = append(problems, fmt.Sprintf(msgSchemaTooMany, c.xsd+c.xml))
	}

	return Result{Valid: len(problems) == 0, Errors: problems}
}

// CheckSelection runs before incoming files join the candidate set and
// rejects the whole selection when the union would contain both an .xsd and
// an .xml file.
func CheckSelection(existing, incoming []string) error {
	c := count(existing)
	in := count(incoming)
	if c.xsd+in.xsd > 0 && c.xml+in.xml > 0 {
		return ErrSchemaConflict
	}
	return nil
}
