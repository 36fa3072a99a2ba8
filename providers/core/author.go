package core

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Author ist ein Autoreneintrag der CORE API. Je nach Datensatz kommt er als String,
// als Objekt mit name/family/given oder in einer unbekannten Form.
type Author interface {
	DisplayName() string
}

// PlainAuthor ist ein als String gelieferter Autor.
type PlainAuthor string

func (a PlainAuthor) DisplayName() string {
	return strings.TrimSpace(string(a))
}

// StructuredAuthor ist ein als Objekt gelieferter Autor.
type StructuredAuthor struct {
	Name   string `json:"name"`
	Family string `json:"family"`
	Given  string `json:"given"`
	raw    string
}

// DisplayName nimmt name, dann family, dann given und zuletzt das rohe JSON.
func (a StructuredAuthor) DisplayName() string {
	for _, s := range []string{a.Name, a.Family, a.Given} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return a.raw
}

// UnknownAuthor hält Einträge, die weder String noch Objekt sind.
type UnknownAuthor struct {
	Raw string
}

func (a UnknownAuthor) DisplayName() string {
	return a.Raw
}

// Authors dekodiert die Autorenliste eintragsweise in die passende Variante.
type Authors []Author

func (as *Authors) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		// Kein Array: Feld ignorieren statt das ganze Paper zu verwerfen.
		*as = nil
		return nil
	}
	out := make(Authors, 0, len(raws))
	for _, raw := range raws {
		out = append(out, decodeAuthor(raw))
	}
	*as = out
	return nil
}

// Names reduziert die Liste auf nicht-leere Anzeigenamen.
func (as Authors) Names() []string {
	names := make([]string, 0, len(as))
	for _, a := range as {
		if n := a.DisplayName(); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func decodeAuthor(raw json.RawMessage) Author {
	trimmed := bytes.TrimSpace(raw)
	var compacted bytes.Buffer
	rawText := string(trimmed)
	if err := json.Compact(&compacted, trimmed); err == nil {
		rawText = compacted.String()
	}

	if len(trimmed) > 0 {
		switch trimmed[0] {
		case '"':
			var s string
			if err := json.Unmarshal(trimmed, &s); err == nil {
				return PlainAuthor(s)
			}
		case '{':
			var a StructuredAuthor
			if err := json.Unmarshal(trimmed, &a); err == nil {
				a.raw = rawText
				return a
			}
		}
	}
	if rawText == "null" {
		rawText = ""
	}
	return UnknownAuthor{Raw: rawText}
}
