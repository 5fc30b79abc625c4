package locale

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingTranslation matches every MissingTranslationError via errors.Is.
var ErrMissingTranslation = errors.New("missing translation")

// MissingTranslationError reports a key that has no non-empty string in a
// locale, or a locale that is not configured at all.
type MissingTranslationError struct {
	Locale string
	Key    string
}

func (e *MissingTranslationError) Error() string {
	return fmt.Sprintf("missing translation: locale %q key %q", e.Locale, e.Key)
}

func (e *MissingTranslationError) Is(target error) bool {
	return target == ErrMissingTranslation
}

// SchemaError lists the structural problems found in a message file.
type SchemaError struct {
	Locale   string
	Problems []string
}

func (e *SchemaError) Error() string {
	prefix := "invalid messages"
	if e.Locale != "" {
		prefix = fmt.Sprintf("invalid messages for %q", e.Locale)
	}
	return prefix + ": " + strings.Join(e.Problems, "; ")
}
