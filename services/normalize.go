package services

import (
	"regexp"
	"strings"
	"unicode"

	"learnhub/models"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ligatureReplacer = strings.NewReplacer(
		"ﬁ", "fi",
		"ﬂ", "fl",
		"ﬀ", "ff",
		"ﬃ", "ffi",
		"ﬄ", "ffl",
		"ﬆ", "st",
	)
	hyphenationRE   = regexp.MustCompile(`([\p{L}\p{N}])-(?:\r?\n)([\p{Ll}])`)
	spaceRE         = regexp.MustCompile("[\t\f\v\u00A0 ]+")
	multiNewlinesRE = regexp.MustCompile(`\n{3,}`)
)

// normalizeUnicode ersetzt gängige Ligaturen und führt eine NFKC-Normalisierung durch.
func normalizeUnicode(s string) string {
	s = ligatureReplacer.Replace(s)
	normalized, _, err := transform.String(norm.NFKC, s)
	if err != nil {
		return s
	}
	return normalized
}

// fixHyphenation entfernt Trennstriche am Zeilenende: "ab-\nweichung" -> "abweichung".
func fixHyphenation(s string) string {
	return hyphenationRE.ReplaceAllString(s, "$1$2")
}

// collapseWhitespace fasst Leerzeichen zusammen und begrenzt Leerzeilen auf eine.
func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = spaceRE.ReplaceAllString(s, " ")
	s = multiNewlinesRE.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRightFunc(lines[i], unicode.IsSpace)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// NormalizeText bereinigt Freitext (Titel, Beschreibungen, Abstracts).
func NormalizeText(s string) string {
	return collapseWhitespace(normalizeUnicode(s))
}

// NormalizeLine bereinigt einzeiligen Text; Zeilenumbrüche werden zu Leerzeichen.
func NormalizeLine(s string) string {
	return strings.Join(strings.Fields(normalizeUnicode(s)), " ")
}

// NormalizeKeywords trimmt Keywords, entfernt leere und (ohne Groß-/Kleinschreibung) doppelte.
// Die Reihenfolge bleibt erhalten.
func NormalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		kw = NormalizeLine(kw)
		key := strings.ToLower(kw)
		if kw == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
	}
	return out
}

// normalizeResource bereitet eine Ressource vor dem Speichern auf.
// Abstracts aus CORE stammen oft aus PDF-Extrakten und bekommen zusätzlich eine Silbentrennungs-Korrektur.
func normalizeResource(r models.Resource) {
	fields := r.TextFields()
	for i, f := range fields {
		if i == 0 {
			*f = NormalizeLine(*f)
			continue
		}
		if r.Kind() == models.KindAcademicPaper {
			*f = fixHyphenation(*f)
		}
		*f = NormalizeText(*f)
	}
	r.Normalize()
}
