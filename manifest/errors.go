package manifest

import (
	"errors"
	"fmt"
)

var ErrEmptyManifest = errors.New("manifest is empty")

type SchemaError struct {
	cause error
	Path  string
}

func (err *SchemaError) Error() string {
	if err.Path == "" {
		return fmt.Sprintf("manifest does not match schema: %s", err.cause)
	}

	return fmt.Sprintf("manifest %s does not match schema: %s", err.Path, err.cause)
}

func (err *SchemaError) Unwrap() error {
	return err.cause
}

type UnknownTypeError struct {
	Name    string
	Context string
}

func (err *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %q used in %s", err.Name, err.Context)
}

type DuplicateTypeError struct {
	Name string
}

func (err *DuplicateTypeError) Error() string {
	return fmt.Sprintf("type %q is declared more than once", err.Name)
}
