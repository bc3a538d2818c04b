package shell

import (
	"errors"
	"strings"
	"unicode"
)

// ErrUnterminatedQuote is returned when a quote is opened but not closed.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// Tokenize splits line into words. Whitespace separates words; single and
// double quotes group text and may be empty; a backslash outside single
// quotes escapes the next character. Quoted and unquoted parts that touch
// form one word, so --tags="a, b" is a single token.
func Tokenize(line string) ([]string, error) {
	var (
		tokens  []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	flush := func() {
		if inWord {
			tokens = append(tokens, cur.String())
			cur.Reset()
			inWord = false
		}
	}

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, ErrUnterminatedQuote
	}
	if escaped {
		cur.WriteRune('\\')
	}
	flush()
	return tokens, nil
}
