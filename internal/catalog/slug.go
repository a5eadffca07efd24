package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// cyrillicLatin follows the Bulgarian streamlined system, which also covers
// the Russian letters found in mixed catalogues.
var cyrillicLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ж': "zh",
	'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u", 'ф': "f",
	'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sht", 'ъ': "a", 'ь': "y",
	'ю': "yu", 'я': "ya", 'ё': "yo", 'ы': "y", 'э': "e", 'і': "i", 'ї': "yi",
	'є': "ye", 'ѝ': "i",
}

// Slugify lowercases s, transliterates Cyrillic, drops diacritics and
// collapses every run of characters outside [a-z0-9] into a single "-".
// The result never starts or ends with "-" and Slugify(Slugify(s)) == Slugify(s).
func Slugify(s string) string {
	var latin strings.Builder
	for _, r := range strings.ToLower(s) {
		if t, ok := cyrillicLatin[r]; ok {
			latin.WriteString(t)
			continue
		}
		latin.WriteRune(r)
	}

	folded, _, err := transform.String(foldDiacritics(), latin.String())
	if err != nil {
		folded = latin.String()
	}

	var b strings.Builder
	b.Grow(len(folded))
	dash := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}

func foldDiacritics() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
