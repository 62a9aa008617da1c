package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FieldError is a validation failure for a specific field.
type FieldError struct {
	Field   string // e.g. packages["numpy-1.11.0-py27_0.tar.bz2"].build
	Message string
}

func (e *FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors struct {
	Errors []*FieldError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&b, "\n  - %s", err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying errors for errors.Is/As compatibility.
func (e *ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// Add appends a validation error.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &FieldError{Field: field, Message: message})
}

// ToError returns nil if no errors were collected, otherwise e.
func (e *ValidationErrors) ToError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// ValidateRepodata checks that data is a repodata document whose package
// entries carry the fields the index needs. Unknown fields are allowed;
// channels add their own over time.
func ValidateRepodata(data []byte) error {
	var doc struct {
		Packages map[string]map[string]json.RawMessage `json:"packages"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if doc.Packages == nil {
		return &FieldError{Field: "packages", Message: "required field is missing"}
	}

	filenames := make([]string, 0, len(doc.Packages))
	for fn := range doc.Packages {
		filenames = append(filenames, fn)
	}
	sort.Strings(filenames)

	var errs ValidationErrors
	for _, fn := range filenames {
		entry := doc.Packages[fn]
		prefix := fmt.Sprintf("packages[%q]", fn)
		for _, key := range []string{"name", "version", "build"} {
			var s string
			raw, ok := entry[key]
			switch {
			case !ok:
				errs.Add(prefix+"."+key, "required field is missing")
			case json.Unmarshal(raw, &s) != nil:
				errs.Add(prefix+"."+key, "must be a string")
			case s == "":
				errs.Add(prefix+"."+key, "must not be empty")
			}
		}
		if raw, ok := entry["depends"]; ok {
			var deps []string
			if err := json.Unmarshal(raw, &deps); err != nil {
				errs.Add(prefix+".depends", "must be a list of strings")
			}
		}
	}
	return errs.ToError()
}
