// Package contracts validates user-submitted contract ABI documents before
// they are persisted. Validation is all-or-nothing: a document either passes
// fully or is rejected with a reason.
package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

// ErrMalformed marks a document that is not valid JSON at all.
var ErrMalformed = errors.New("malformed abi document")

// SchemaError marks a well-formed JSON document that does not describe an
// ABI. Reason is human-readable and safe to surface to the submitter.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("abi schema violation: %s", e.Reason)
}

// entryTypes is the closed set of entry kinds an ABI document may contain.
var entryTypes = map[string]bool{
	"function":    true,
	"constructor": true,
	"fallback":    true,
	"receive":     true,
	"event":       true,
	"error":       true,
}

// ValidateABI checks a candidate ABI document. It returns ErrMalformed for
// documents that do not parse as JSON and *SchemaError for structurally
// invalid ones; nil means the document may be persisted.
func ValidateABI(text string) error {
	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	entries, ok := doc.([]any)
	if !ok {
		return &SchemaError{Reason: "document must be a JSON array of entries"}
	}

	for i, e := range entries {
		obj, ok := e.(map[string]any)
		if !ok {
			return &SchemaError{Reason: fmt.Sprintf("entry %d is not an object", i)}
		}
		typ, ok := obj["type"].(string)
		if !ok {
			return &SchemaError{Reason: fmt.Sprintf("entry %d is missing a type", i)}
		}
		if !entryTypes[typ] {
			return &SchemaError{Reason: fmt.Sprintf("entry %d has unknown type %q", i, typ)}
		}
		if typ == "function" || typ == "event" || typ == "error" {
			if name, ok := obj["name"].(string); !ok || name == "" {
				return &SchemaError{Reason: fmt.Sprintf("entry %d (%s) is missing a name", i, typ)}
			}
		}
	}

	// Deep validation of parameter types and signatures.
	if _, err := ethabi.JSON(strings.NewReader(text)); err != nil {
		return &SchemaError{Reason: err.Error()}
	}

	return nil
}
