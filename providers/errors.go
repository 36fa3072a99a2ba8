package providers

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential wird beim Start gemeldet, wenn eine aktivierte Quelle keinen Schlüssel hat.
	ErrMissingCredential = errors.New("missing credential")
	// ErrSourceDisabled meldet eine Quelle, die in ENABLED_SOURCES fehlt.
	ErrSourceDisabled = errors.New("source disabled")
	// ErrUnexpectedStatus steht hinter jeder Nicht-2xx-Antwort.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// SourceError ist der typisierte Fehler einer externen Quelle. Die Meldung enthält
// nie die Request-URL, da dort API-Schlüssel stehen können.
type SourceError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *SourceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream returned status %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Disabled liefert den Fehler für eine nicht aktivierte Quelle.
func Disabled(source string) error {
	return &SourceError{Source: source, Err: ErrSourceDisabled}
}
