package sqlguard

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenWord
	TokenQuotedIdent
	TokenNumber
	TokenHex
	TokenString
	TokenParam
	TokenOperator
	TokenPunct
	TokenLineComment
	TokenBlockComment
	TokenIllegal
)

var tokenKindNames = [...]string{
	TokenEOF:          "EOF",
	TokenWord:         "word",
	TokenQuotedIdent:  "quoted identifier",
	TokenNumber:       "number",
	TokenHex:          "hex literal",
	TokenString:       "string",
	TokenParam:        "parameter",
	TokenOperator:     "operator",
	TokenPunct:        "punctuation",
	TokenLineComment:  "line comment",
	TokenBlockComment: "block comment",
	TokenIllegal:      "illegal",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "unknown"
}

// Token is one lexical unit of a candidate query.
//
// Value is normalized: upper case for words, unescaped content for strings
// and quoted identifiers, the raw text for everything else.
type Token struct {
	Kind         TokenKind
	Text         string
	Value        string
	Pos          int
	Prefix       string // string literal prefix: E, X, B, N, U& or $ for dollar quoting
	Unterminated bool
}

func (t Token) IsWord(word string) bool {
	return t.Kind == TokenWord && t.Value == word
}

func (t Token) IsPunct(p string) bool {
	return t.Kind == TokenPunct && t.Value == p
}

func (t Token) IsOperator(op string) bool {
	return t.Kind == TokenOperator && t.Value == op
}

func (t Token) IsComment() bool {
	return t.Kind == TokenLineComment || t.Kind == TokenBlockComment
}

// IsLiteral reports whether the token is a constant value.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case TokenNumber, TokenHex, TokenString:
		return true
	case TokenWord:
		return t.Value == "TRUE" || t.Value == "FALSE" || t.Value == "NULL"
	}
	return false
}

const operatorChars = "+-*/<>=~!@#%^&|`?"

// Tokenize splits text into tokens following PostgreSQL lexical rules closely
// enough to tell words, literals, comments and operators apart. It never
// fails: malformed input yields TokenIllegal or unterminated tokens. The
// result always ends with a TokenEOF.
func Tokenize(text string) []Token {
	l := &lexer{src: text}
	l.run()
	return l.tokens
}

type lexer struct {
	src    string
	pos    int
	tokens []Token
}

func (l *lexer) run() {
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			l.tokens = append(l.tokens, Token{Kind: TokenEOF, Pos: l.pos})
			return
		}
		l.next()
	}
}

func (l *lexer) peekRune(offset int) rune {
	p := l.pos + offset
	if p >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[p:])
	return r
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func (l *lexer) emit(kind TokenKind, start int, value string) {
	l.tokens = append(l.tokens, Token{
		Kind:  kind,
		Text:  l.src[start:l.pos],
		Value: value,
		Pos:   start,
	})
}

func (l *lexer) next() {
	start := l.pos
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])

	switch {
	case r == '-' && l.peekRune(1) == '-':
		l.lineComment()
	case r == '/' && l.peekRune(1) == '*':
		l.blockComment()
	case r == '\'':
		l.stringLiteral(start, "")
	case r == '"':
		l.quotedIdent(start)
	case r == '$':
		l.dollar()
	case isDigit(r) || (r == '.' && isDigit(l.peekRune(1))):
		l.number()
	case isIdentStart(r):
		l.word()
	case r == ':' && l.peekRune(1) == ':':
		l.pos += 2
		l.emit(TokenPunct, start, "::")
	case strings.ContainsRune("(),;[].", r):
		l.pos += size
		l.emit(TokenPunct, start, string(r))
	case strings.ContainsRune(operatorChars, r):
		l.operator()
	default:
		l.pos += size
		l.emit(TokenIllegal, start, string(r))
	}
}

func (l *lexer) lineComment() {
	start := l.pos
	end := strings.IndexByte(l.src[l.pos:], '\n')
	if end < 0 {
		l.pos = len(l.src)
	} else {
		l.pos += end
	}
	l.emit(TokenLineComment, start, l.src[start+2:l.pos])
}

// Block comments nest in PostgreSQL.
func (l *lexer) blockComment() {
	start := l.pos
	l.pos += 2
	depth := 1
	for l.pos < len(l.src) && depth > 0 {
		switch {
		case strings.HasPrefix(l.src[l.pos:], "/*"):
			depth++
			l.pos += 2
		case strings.HasPrefix(l.src[l.pos:], "*/"):
			depth--
			l.pos += 2
		default:
			l.pos++
		}
	}
	l.emit(TokenBlockComment, start, l.src[start:l.pos])
	if depth > 0 {
		l.tokens[len(l.tokens)-1].Unterminated = true
	}
}

// stringLiteral scans a single-quoted literal starting at the quote. Only
// escape strings treat backslash as an escape character.
func (l *lexer) stringLiteral(start int, prefix string) {
	l.pos++ // opening quote
	var sb strings.Builder
	terminated := false
	escapes := prefix == "E"

	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if escapes && c == '\\' && l.pos+1 < len(l.src) {
			sb.WriteByte(c)
			sb.WriteByte(l.src[l.pos+1])
			l.pos += 2
			continue
		}
		if c == '\'' {
			if l.pos+1 < len(l.src) && l.src[l.pos+1] == '\'' {
				sb.WriteByte('\'')
				l.pos += 2
				continue
			}
			l.pos++
			terminated = true
			break
		}
		sb.WriteByte(c)
		l.pos++
	}

	l.emit(TokenString, start, sb.String())
	tok := &l.tokens[len(l.tokens)-1]
	tok.Prefix = prefix
	tok.Unterminated = !terminated
}

func (l *lexer) quotedIdent(start int) {
	l.pos++
	var sb strings.Builder
	terminated := false

	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '"' {
			if l.pos+1 < len(l.src) && l.src[l.pos+1] == '"' {
				sb.WriteByte('"')
				l.pos += 2
				continue
			}
			l.pos++
			terminated = true
			break
		}
		sb.WriteByte(c)
		l.pos++
	}

	l.emit(TokenQuotedIdent, start, sb.String())
	l.tokens[len(l.tokens)-1].Unterminated = !terminated
}

// dollar handles positional parameters ($1) and dollar-quoted strings ($$...$$, $tag$...$tag$).
func (l *lexer) dollar() {
	start := l.pos
	l.pos++

	if isDigit(l.peekRune(0)) {
		for l.pos < len(l.src) && isDigit(rune(l.src[l.pos])) {
			l.pos++
		}
		l.emit(TokenParam, start, l.src[start:l.pos])
		return
	}

	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if r == '$' {
			break
		}
		if !isIdentPart(r) {
			l.emit(TokenIllegal, start, l.src[start:l.pos])
			return
		}
		l.pos += size
	}
	if l.pos >= len(l.src) {
		l.emit(TokenIllegal, start, l.src[start:l.pos])
		return
	}
	l.pos++ // closing $ of the opening tag
	tag := l.src[start:l.pos]

	end := strings.Index(l.src[l.pos:], tag)
	if end < 0 {
		body := l.src[l.pos:]
		l.pos = len(l.src)
		l.emit(TokenString, start, body)
		tok := &l.tokens[len(l.tokens)-1]
		tok.Prefix = "$"
		tok.Unterminated = true
		return
	}

	body := l.src[l.pos : l.pos+end]
	l.pos += end + len(tag)
	l.emit(TokenString, start, body)
	l.tokens[len(l.tokens)-1].Prefix = "$"
}

func (l *lexer) number() {
	start := l.pos

	if l.src[l.pos] == '0' && l.pos+1 < len(l.src) && strings.ContainsRune("xXbBoO", rune(l.src[l.pos+1])) {
		l.pos += 2
		for l.pos < len(l.src) && (isHexDigit(rune(l.src[l.pos])) || l.src[l.pos] == '_') {
			l.pos++
		}
		l.emit(TokenHex, start, l.src[start:l.pos])
		return
	}

	l.digits()
	if l.pos < len(l.src) && l.src[l.pos] == '.' && !strings.HasPrefix(l.src[l.pos:], "..") {
		l.pos++
		l.digits()
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		save := l.pos
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		if l.pos < len(l.src) && isDigit(rune(l.src[l.pos])) {
			l.digits()
		} else {
			l.pos = save
		}
	}

	// Trailing identifier characters ("10abc") are junk, not a number.
	if r := l.peekRune(0); isIdentStart(r) {
		for l.pos < len(l.src) {
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			if !isIdentPart(r) {
				break
			}
			l.pos += size
		}
		l.emit(TokenIllegal, start, l.src[start:l.pos])
		return
	}

	l.emit(TokenNumber, start, l.src[start:l.pos])
}

func (l *lexer) digits() {
	for l.pos < len(l.src) && (isDigit(rune(l.src[l.pos])) || l.src[l.pos] == '_') {
		l.pos++
	}
}

func (l *lexer) word() {
	start := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentPart(r) {
			break
		}
		l.pos += size
	}
	word := strings.ToUpper(l.src[start:l.pos])

	// Prefixed string constants: E'..', X'..', B'..', N'..', U&'..'
	if l.pos < len(l.src) {
		switch {
		case l.src[l.pos] == '\'' && (word == "E" || word == "X" || word == "B" || word == "N"):
			l.stringLiteral(start, word)
			return
		case word == "U" && strings.HasPrefix(l.src[l.pos:], "&'"):
			l.pos++
			l.stringLiteral(start, "U&")
			return
		case word == "U" && strings.HasPrefix(l.src[l.pos:], "&\""):
			l.pos++
			l.quotedIdent(start)
			l.tokens[len(l.tokens)-1].Prefix = "U&"
			return
		}
	}

	l.emit(TokenWord, start, word)
}

// operator scans a run of operator characters. A run never swallows the start
// of a comment, and a multi-character run cannot end in + or - unless it holds
// one of the characters that make that legal in PostgreSQL.
func (l *lexer) operator() {
	start := l.pos
	for l.pos < len(l.src) && strings.IndexByte(operatorChars, l.src[l.pos]) >= 0 {
		if l.pos > start && (strings.HasPrefix(l.src[l.pos:], "--") || strings.HasPrefix(l.src[l.pos:], "/*")) {
			break
		}
		l.pos++
	}

	op := l.src[start:l.pos]
	for len(op) > 1 && strings.ContainsAny(op[len(op)-1:], "+-") && !strings.ContainsAny(op, "~!@#%^&|`?") {
		op = op[:len(op)-1]
	}
	l.pos = start + len(op)
	l.emit(TokenOperator, start, op)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r) || r == '$'
}
