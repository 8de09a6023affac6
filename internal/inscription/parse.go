// Package inscription extracts the name, dates and epitaph from the text
// recognized on a headstone.
package inscription

import (
	"regexp"
	"strings"
)

// UnknownName is used when the text has no lines at all.
const UnknownName = "Unknown"

// datePattern matches d/m/yy style dates and bare four-digit years.
var datePattern = regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4})\b`)

// Fields is the structured reading of an inscription.
type Fields struct {
	Name    string
	Born    string
	Died    string
	Epitaph string
}

// Parse reads recognized text. The first non-empty line is the name. With two
// or more dates the first two are birth and death; a single date is taken as
// the death date. Lines after the second form the epitaph.
func Parse(text string) Fields {
	lines := Lines(text)

	f := Fields{Name: UnknownName}
	if len(lines) > 0 {
		f.Name = lines[0]
	}

	dates := Dates(text)
	switch {
	case len(dates) >= 2:
		f.Born, f.Died = dates[0], dates[1]
	case len(dates) == 1:
		f.Died = dates[0]
	}

	if len(lines) > 2 {
		f.Epitaph = strings.Join(lines[2:], " ")
	}
	return f
}

// Lines returns the trimmed non-empty lines of text.
func Lines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// Dates returns the date tokens of text in order.
func Dates(text string) []string {
	return datePattern.FindAllString(text, -1)
}
