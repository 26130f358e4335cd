// Package rust holds the small amount of Rust surface syntax the generators
// need: identifier escaping, string literal quoting, and an indenting writer.
package rust

import (
	"strings"
	"unicode"
)

// Keywords that need the raw identifier prefix (r#) when used as names.
var keywords = map[string]bool{
	"as": true, "async": true, "await": true, "break": true, "const": true,
	"continue": true, "crate": true, "dyn": true, "else": true, "enum": true,
	"extern": true, "false": true, "fn": true, "for": true, "if": true,
	"impl": true, "in": true, "let": true, "loop": true, "match": true,
	"mod": true, "move": true, "mut": true, "pub": true, "ref": true,
	"return": true, "static": true, "struct": true, "trait": true,
	"true": true, "type": true, "unsafe": true, "use": true, "where": true,
	"while": true, "yield": true, "abstract": true, "become": true,
	"box": true, "do": true, "final": true, "gen": true, "macro": true,
	"override": true, "priv": true, "try": true, "typeof": true,
	"unsized": true, "virtual": true,
}

// These cannot be raw identifiers at all.
var reserved = map[string]bool{
	"self": true, "Self": true, "super": true, "crate": true, "_": true,
}

// IsKeyword reports whether s is a Rust keyword.
func IsKeyword(s string) bool {
	return keywords[s] || reserved[s]
}

// IsReserved reports whether s can never be used as a name, not even with r#.
func IsReserved(s string) bool {
	return reserved[s]
}

// Ident returns s as a usable identifier, adding r# to keywords.
// Names that are already raw are returned unchanged.
func Ident(s string) string {
	if strings.HasPrefix(s, "r#") {
		return s
	}
	if keywords[s] && !reserved[s] {
		return "r#" + s
	}
	return s
}

// Unraw strips the r# prefix, giving the name as it reads in messages and
// string literals.
func Unraw(s string) string {
	return strings.TrimPrefix(s, "r#")
}

// SnakeCase converts PascalCase or camelCase to snake_case.
// Acronyms stay together ("HTTPSProxy" -> "https_proxy").
func SnakeCase(s string) string {
	var sb strings.Builder
	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if i > 0 && unicode.IsUpper(r) {
			prevUpper := unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if (!prevUpper || nextLower) && runes[i-1] != '_' {
				sb.WriteRune('_')
			}
		}
		sb.WriteRune(r)
	}
	return strings.ToLower(sb.String())
}
