package ingest

import "strings"

// The upload format folds German umlauts to their ASCII digraph before
// any other normalization, so "Süddach" and "Sueddach" name the same
// device column.
var diacriticFolds = strings.NewReplacer(
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"Ä", "Ae",
	"Ö", "Oe",
	"Ü", "Ue",
	"ß", "ss",
)

// SanitizeLabel turns a free-text device label into the header fragment
// form: diacritics folded, every character outside [A-Za-z0-9_] replaced
// with an underscore, runs collapsed, edges trimmed. Idempotent.
func SanitizeLabel(label string) string {
	folded := diacriticFolds.Replace(label)

	var b strings.Builder
	b.Grow(len(folded))
	lastUnderscore := false
	for _, r := range folded {
		if isWordRune(r) {
			if r == '_' {
				if lastUnderscore {
					continue
				}
				lastUnderscore = true
			} else {
				lastUnderscore = false
			}
			b.WriteRune(r)
			continue
		}
		if lastUnderscore {
			continue
		}
		b.WriteByte('_')
		lastUnderscore = true
	}
	return strings.Trim(b.String(), "_")
}

// MatchNormalize turns a label into the comparison form: diacritics
// folded, lower-cased, every non-alphanumeric character removed.
// Idempotent.
func MatchNormalize(label string) string {
	folded := strings.ToLower(diacriticFolds.Replace(label))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}
