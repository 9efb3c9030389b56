// Package wkt implements the Well-Known Text codec (C7): a hand-rolled
// tokenizer, a recursive-descent reader driving a geomtype.Consumer, and a
// depth-stack pretty-printing writer.
package wkt

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// TokenKind classifies a lexical token.
type TokenKind uint8

const (
	TokEOF TokenKind = iota
	TokLParen
	TokRParen
	TokComma
	TokNumber
	TokWord
)

// Token is one lexical unit, with its 1-indexed source column for
// diagnostics (spec.md §8: error messages must name the column offset).
type Token struct {
	Kind TokenKind
	Text string
	Num  float64
	Col  int
}

// ErrLex is returned for malformed input the lexer itself rejects
// (unterminated number, unexpected character).
var ErrLex = errors.New("wkt: lexical error")

// lexer tokenizes a WKT string. Numbers are parsed with strconv, which is
// locale-independent (always treats '.' as the decimal separator) —
// spec.md §4.6 explicitly rejects a locale-dependent strtod-equivalent.
type lexer struct {
	src  []rune
	pos  int
	col  int
}

func newLexer(s string) *lexer {
	return &lexer{src: []rune(s), col: 1}
}

func (l *lexer) peekRune() (rune, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

func (l *lexer) advance() (rune, bool) {
	r, ok := l.peekRune()
	if !ok {
		return 0, false
	}
	l.pos++
	l.col++
	return r, true
}

func (l *lexer) skipSpace() {
	for {
		r, ok := l.peekRune()
		if !ok || !unicode.IsSpace(r) {
			return
		}
		l.advance()
	}
}

func isWordStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isNumStart(r rune) bool {
	return unicode.IsDigit(r) || r == '-' || r == '+' || r == '.'
}

// next returns the next token, or a TokEOF token at end of input.
func (l *lexer) next() (Token, error) {
	l.skipSpace()
	startCol := l.col
	r, ok := l.peekRune()
	if !ok {
		return Token{Kind: TokEOF, Col: startCol}, nil
	}

	switch r {
	case '(', '[':
		l.advance()
		return Token{Kind: TokLParen, Text: string(r), Col: startCol}, nil
	case ')', ']':
		l.advance()
		return Token{Kind: TokRParen, Text: string(r), Col: startCol}, nil
	case ',':
		l.advance()
		return Token{Kind: TokComma, Text: ",", Col: startCol}, nil
	}

	if isWordStart(r) {
		var b strings.Builder
		for {
			r, ok := l.peekRune()
			if !ok || !isWordRune(r) {
				break
			}
			b.WriteRune(r)
			l.advance()
		}
		return Token{Kind: TokWord, Text: b.String(), Col: startCol}, nil
	}

	if isNumStart(r) {
		start := l.pos
		// optional sign
		if r == '-' || r == '+' {
			l.advance()
		}
		sawDigitOrDot := false
		for {
			r, ok := l.peekRune()
			if !ok {
				break
			}
			if unicode.IsDigit(r) || r == '.' {
				sawDigitOrDot = true
				l.advance()
				continue
			}
			if (r == 'e' || r == 'E') && sawDigitOrDot {
				l.advance()
				if r2, ok := l.peekRune(); ok && (r2 == '+' || r2 == '-') {
					l.advance()
				}
				continue
			}
			break
		}
		text := string(l.src[start:l.pos])
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Token{}, errors.Wrapf(ErrLex, "column %d: invalid number %q", startCol, text)
		}
		return Token{Kind: TokNumber, Text: text, Num: f, Col: startCol}, nil
	}

	return Token{}, errors.Wrapf(ErrLex, "column %d: unexpected character %q", startCol, string(r))
}
