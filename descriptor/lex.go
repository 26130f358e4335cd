package descriptor

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/teranos/derivegen/errors"
)

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokIdent
	TokLifetime
	TokString
	TokNumber
	TokPunct
)

func (k TokenKind) String() string {
	switch k {
	case TokEOF:
		return "end of input"
	case TokIdent:
		return "identifier"
	case TokLifetime:
		return "lifetime"
	case TokString:
		return "string literal"
	case TokNumber:
		return "number"
	case TokPunct:
		return "punctuation"
	}
	return "unknown"
}

// Token is one lexical token. Text is the source spelling; Value holds the
// unescaped contents of string literals.
type Token struct {
	Kind  TokenKind
	Text  string
	Value string
	// Offset is the byte offset of the token in the lexed source.
	Offset int
}

// Is reports whether the token is the given punctuation or keyword.
func (t Token) Is(text string) bool {
	return (t.Kind == TokPunct || t.Kind == TokIdent) && t.Text == text
}

// Lex splits src into tokens. Only "::" and "->" are joined; every other
// punctuation character is its own token so nested generics close one '>'
// at a time.
func Lex(src string) ([]Token, error) {
	var toks []Token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == 'r' && i+1 < len(src) && (src[i+1] == '"' || (src[i+1] == '#' && rawStringAhead(src[i+1:]))):
			tok, n, err := lexRawString(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i += n

		case c == 'r' && i+2 < len(src) && src[i+1] == '#' && isIdentStart(rune(src[i+2])):
			j := i + 2
			for j < len(src) && isIdentContinue(rune(src[j])) {
				j++
			}
			toks = append(toks, Token{Kind: TokIdent, Text: src[i:j], Offset: i})
			i = j

		case isIdentStart(rune(c)) || c >= 0x80:
			j := i
			for j < len(src) {
				r, size := utf8.DecodeRuneInString(src[j:])
				if !isIdentRune(r, j == i) {
					break
				}
				j += size
			}
			if j == i {
				return nil, errors.Newf("unexpected character %q at offset %d", src[i:i+1], i)
			}
			toks = append(toks, Token{Kind: TokIdent, Text: src[i:j], Offset: i})
			i = j

		case c >= '0' && c <= '9':
			j := i
			for j < len(src) && (isIdentContinue(rune(src[j])) || src[j] == '.') {
				j++
			}
			toks = append(toks, Token{Kind: TokNumber, Text: src[i:j], Offset: i})
			i = j

		case c == '"':
			tok, n, err := lexString(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i += n

		case c == '\'':
			j := i + 1
			for j < len(src) && isIdentContinue(rune(src[j])) {
				j++
			}
			if j == i+1 || (j < len(src) && src[j] == '\'') {
				return nil, errors.Newf("character literals are not supported (offset %d)", i)
			}
			toks = append(toks, Token{Kind: TokLifetime, Text: src[i:j], Offset: i})
			i = j

		case c == ':' && i+1 < len(src) && src[i+1] == ':':
			toks = append(toks, Token{Kind: TokPunct, Text: "::", Offset: i})
			i += 2

		case c == '-' && i+1 < len(src) && src[i+1] == '>':
			toks = append(toks, Token{Kind: TokPunct, Text: "->", Offset: i})
			i += 2

		case strings.IndexByte("<>()[]{},;:&*!+?=#.-/|%^@$~", c) >= 0:
			toks = append(toks, Token{Kind: TokPunct, Text: string(c), Offset: i})
			i++

		default:
			return nil, errors.Newf("unexpected character %q at offset %d", string(c), i)
		}
	}
	toks = append(toks, Token{Kind: TokEOF, Offset: len(src)})
	return toks, nil
}

func rawStringAhead(s string) bool {
	return len(strings.TrimLeft(s, "#")) > 0 && strings.TrimLeft(s, "#")[0] == '"'
}

func lexRawString(src string, start int) (Token, int, error) {
	i := start + 1
	hashes := 0
	for i < len(src) && src[i] == '#' {
		hashes++
		i++
	}
	i++ // opening quote
	terminator := "\"" + strings.Repeat("#", hashes)
	end := strings.Index(src[i:], terminator)
	if end < 0 {
		return Token{}, 0, errors.Newf("unterminated raw string literal at offset %d", start)
	}
	value := src[i : i+end]
	n := i + end + len(terminator) - start
	return Token{Kind: TokString, Text: src[start : start+n], Value: value, Offset: start}, n, nil
}

func lexString(src string, start int) (Token, int, error) {
	var sb strings.Builder
	i := start + 1
	for i < len(src) {
		c := src[i]
		switch c {
		case '"':
			return Token{Kind: TokString, Text: src[start : i+1], Value: sb.String(), Offset: start}, i + 1 - start, nil
		case '\\':
			if i+1 >= len(src) {
				return Token{}, 0, errors.Newf("unterminated escape in string literal at offset %d", i)
			}
			n, err := unescape(src, i, &sb)
			if err != nil {
				return Token{}, 0, err
			}
			i += n
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return Token{}, 0, errors.Newf("unterminated string literal at offset %d", start)
}

// unescape decodes one escape sequence starting at src[i] == '\\' and returns
// the number of bytes consumed.
func unescape(src string, i int, sb *strings.Builder) (int, error) {
	switch src[i+1] {
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case '\\':
		sb.WriteByte('\\')
	case '0':
		sb.WriteByte(0)
	case '\'':
		sb.WriteByte('\'')
	case '"':
		sb.WriteByte('"')
	case '\n':
		// Line continuation: skip the newline and leading whitespace.
		j := i + 2
		for j < len(src) && (src[j] == ' ' || src[j] == '\t' || src[j] == '\n' || src[j] == '\r') {
			j++
		}
		return j - i, nil
	case 'x':
		if i+4 > len(src) {
			return 0, errors.Newf("short \\x escape at offset %d", i)
		}
		v, err := strconv.ParseUint(src[i+2:i+4], 16, 8)
		if err != nil || v > 0x7f {
			return 0, errors.Newf("invalid \\x escape at offset %d", i)
		}
		sb.WriteByte(byte(v))
		return 4, nil
	case 'u':
		end := strings.IndexByte(src[i:], '}')
		if i+2 >= len(src) || src[i+2] != '{' || end < 0 {
			return 0, errors.Newf("invalid \\u escape at offset %d", i)
		}
		digits := strings.ReplaceAll(src[i+3:i+end], "_", "")
		v, err := strconv.ParseUint(digits, 16, 32)
		if err != nil || !utf8.ValidRune(rune(v)) {
			return 0, errors.Newf("invalid \\u escape at offset %d", i)
		}
		sb.WriteRune(rune(v))
		return end + 1, nil
	default:
		return 0, errors.Newf("unknown escape \\%c at offset %d", src[i+1], i)
	}
	return 2, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isIdentRune(r rune, first bool) bool {
	if first {
		return isIdentStart(r)
	}
	return isIdentContinue(r)
}
