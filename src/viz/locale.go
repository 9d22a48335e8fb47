package viz

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Tick labels are the only locale-sensitive output of the renderer, so the
// mapping is a fixed table of separators rather than a full CLDR number
// formatter. Tags are canonicalized through x/text's matcher; anything the
// matcher cannot place falls back to English.

// numberFormat holds the two separators used when formatting tick labels.
type numberFormat struct {
	group   string // thousands grouping separator
	decimal string // decimal separator
}

var supportedLocales = []language.Tag{
	language.English, // index 0 is the matcher fallback
	language.German,
	language.French,
	language.Spanish,
	language.Italian,
	language.Portuguese,
	language.Dutch,
}

var localeFormats = []numberFormat{
	{group: ",", decimal: "."}, // en
	{group: ".", decimal: ","}, // de
	{group: " ", decimal: ","}, // fr
	{group: ".", decimal: ","}, // es
	{group: ".", decimal: ","}, // it
	{group: ".", decimal: ","}, // pt
	{group: ".", decimal: ","}, // nl
}

var localeMatcher = language.NewMatcher(supportedLocales)

// localeAliases accepts a few historical spellings that are not BCP 47.
var localeAliases = map[string]string{
	"german": "de",
	"us":     "en-US",
}

// formatForLocale maps a locale tag ("de", "de_DE", "fr-FR", "german", …)
// to its separator pair. Unknown or malformed tags use English.
func formatForLocale(tag string) numberFormat {
	norm := strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
	if alias, ok := localeAliases[strings.ToLower(norm)]; ok {
		norm = alias
	}
	parsed, err := language.Parse(norm)
	if err != nil {
		return localeFormats[0]
	}
	_, idx, conf := localeMatcher.Match(parsed)
	if conf == language.No {
		return localeFormats[0]
	}
	return localeFormats[idx]
}

// formatGrouped renders v with prec decimals, grouping the integer digits
// with the locale's separator.
func formatGrouped(v float64, prec int, nf numberFormat) string {
	s := strconv.FormatFloat(v, 'f', prec, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(nf.group)
		}
		b.WriteRune(d)
	}
	if fracPart != "" {
		b.WriteString(nf.decimal)
		b.WriteString(fracPart)
	}
	return b.String()
}
