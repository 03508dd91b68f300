package document

import "strings"

// substitutions maps symbols the PDF backend cannot encode to fixed
// ASCII fallbacks. Applied identically to templated and generated text.
var substitutions = map[rune]string{
	'‘': "'",   // left single quote
	'’': "'",   // right single quote
	'“': `"`,   // left double quote
	'”': `"`,   // right double quote
	'–': "-",   // en dash
	'—': "-",   // em dash
	'…': "...", // ellipsis
	' ': " ",   // no-break space
	'•': "*",   // bullet
	'₹': "Rs.", // rupee sign
	'→': "->",  // rightwards arrow
	'°': " deg",
}

// fallbackToken replaces any symbol with no table entry that the
// backend's character set cannot represent.
const fallbackToken = "?"

// Sanitize rewrites text so every rune is representable by the
// rendering backend. Known symbols use the substitution table; anything
// else outside ASCII becomes the fallback token.
func Sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r < 128:
			b.WriteRune(r)
		default:
			if repl, ok := substitutions[r]; ok {
				b.WriteString(repl)
			} else {
				b.WriteString(fallbackToken)
			}
		}
	}
	return b.String()
}
