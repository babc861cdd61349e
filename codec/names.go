package codec

import (
	"fmt"
	"regexp"
	"unicode"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxNameLen is the longest identifier the vendor CLIs accept.
const MaxNameLen = 32

var nonWordRE = regexp.MustCompile(`\W+`)

// stripMarks decomposes and drops combining marks so that accented Latin
// letters survive transliteration as their base letter.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeName transliterates s to ASCII, replaces every run of non-word
// characters with "_" and truncates to MaxNameLen.
func NormalizeName(s string) string {
	ascii := unidecode.Unidecode(stripMarks(s))
	out := nonWordRE.ReplaceAllString(ascii, "_")
	if len(out) > MaxNameLen {
		out = out[:MaxNameLen]
	}
	return out
}

// VLANName normalises a VLAN title, falling back to "v<vid>".
func VLANName(title string, vid int) string {
	if name := NormalizeName(title); name != "" {
		return name
	}
	return fmt.Sprintf("v%d", vid)
}
