package sqlguard

import (
	"strconv"
)

// Query is a tokenized candidate query shared by all checkers.
type Query struct {
	Text   string
	Tokens []Token // every token, comments included, ending in TokenEOF
	code   []Token // Tokens without comments

	parsed   bool
	stmt     *statement
	parseErr error
}

func NewQuery(text string) *Query {
	tokens := Tokenize(text)
	code := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if !tok.IsComment() {
			code = append(code, tok)
		}
	}
	return &Query{Text: text, Tokens: tokens, code: code}
}

// statement recognizes the query once and caches the outcome for the
// checkers that need its structure.
func (q *Query) statement() (*statement, error) {
	if !q.parsed {
		q.stmt, q.parseErr = recognize(q.code)
		q.parsed = true
	}
	return q.stmt, q.parseErr
}

// Checker is one validation rule. Checkers run in a fixed order and the
// first rejection wins.
type Checker interface {
	Name() string
	Check(q *Query) Verdict
}

// StatementTypeChecker requires the statement to start with SELECT. A leading
// comment counts as something other than SELECT.
type StatementTypeChecker struct{}

func (c *StatementTypeChecker) Name() string { return "statement-type" }

func (c *StatementTypeChecker) Check(q *Query) Verdict {
	if !q.Tokens[0].IsWord("SELECT") {
		return reject(ReasonNotSelect)
	}
	return safe()
}

// KeywordChecker rejects any denylisted verb used as a word. Words inside
// string literals, quoted identifiers and comments are not words, so a filter
// such as type = 'call' or a column like last_updated_at passes.
type KeywordChecker struct{}

func (c *KeywordChecker) Name() string { return "keyword" }

func (c *KeywordChecker) Check(q *Query) Verdict {
	for _, tok := range q.code {
		if tok.Kind == TokenWord && IsForbiddenKeyword(tok.Value) {
			return reject(ReasonForbiddenKeyword)
		}
	}
	return safe()
}

// TenantScopeChecker requires the tenant placeholder or the tenant column to
// appear in code, not in a comment or a literal.
type TenantScopeChecker struct{}

func (c *TenantScopeChecker) Name() string { return "tenant-scope" }

func (c *TenantScopeChecker) Check(q *Query) Verdict {
	for _, tok := range q.code {
		switch tok.Kind {
		case TokenParam:
			if tok.Value == TenantPlaceholder {
				return safe()
			}
		case TokenWord:
			if tok.Value == "ORGANIZATION_ID" {
				return safe()
			}
		case TokenQuotedIdent:
			if tok.Prefix == "" && tok.Value == TenantColumn {
				return safe()
			}
		}
	}
	return reject(ReasonMissingTenant)
}

// TableChecker requires every relation named after FROM or JOIN to be on the
// allowlist, and at least one top-level FROM to exist. Derived tables and
// table functions are rejected because their target is not a relation name.
type TableChecker struct{}

func (c *TableChecker) Name() string { return "table" }

func (c *TableChecker) Check(q *Query) Verdict {
	toks := q.code
	// One entry per open parenthesis: true when it opens a subquery.
	scopes := []bool{true}
	topLevelFrom := false

	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		switch {
		case tok.IsPunct("("):
			scopes = append(scopes, i+1 < len(toks) && toks[i+1].IsWord("SELECT"))
		case tok.IsPunct(")"):
			if len(scopes) > 1 {
				scopes = scopes[:len(scopes)-1]
			}
		case tok.IsWord("FROM") || tok.IsWord("JOIN"):
			// FROM inside EXTRACT(...), SUBSTRING(...) and friends.
			if !scopes[len(scopes)-1] {
				continue
			}
			if tok.IsWord("FROM") && isDistinctFrom(toks, i) {
				continue
			}
			next, ok := relationList(toks, i+1)
			if !ok {
				return reject(ReasonDisallowedTable)
			}
			if tok.IsWord("FROM") && len(scopes) == 1 {
				topLevelFrom = true
			}
			i = next - 1
		}
	}

	if !topLevelFrom {
		return reject(ReasonDisallowedTable)
	}
	return safe()
}

// isDistinctFrom reports whether the FROM at i belongs to IS [NOT] DISTINCT FROM.
func isDistinctFrom(toks []Token, i int) bool {
	if i < 2 || !toks[i-1].IsWord("DISTINCT") {
		return false
	}
	return toks[i-2].IsWord("IS") || toks[i-2].IsWord("NOT")
}

// relationList walks "name [[AS] alias] {, name [[AS] alias]}" starting at i
// and returns the index just past it. It fails on the first target that is
// not an allowlisted relation name.
func relationList(toks []Token, i int) (int, bool) {
	for {
		name, next, ok := relationName(toks, i)
		if !ok || !allowedRelation(name) {
			return i, false
		}
		i = next
		if i < len(toks) && toks[i].IsPunct("(") {
			return i, false
		}

		i = skipAlias(toks, i)
		if i < len(toks) && toks[i].IsPunct(",") {
			i++
			continue
		}
		return i, true
	}
}

type relation struct {
	schema string
	name   string
	quoted bool
}

func relationName(toks []Token, i int) (relation, int, bool) {
	first, ok := identAt(toks, i)
	if !ok {
		return relation{}, i, false
	}
	rel := relation{name: first.Value, quoted: first.Kind == TokenQuotedIdent}
	i++
	if i+1 < len(toks) && toks[i].IsPunct(".") {
		second, ok := identAt(toks, i+1)
		if !ok {
			return relation{}, i, false
		}
		rel.schema = rel.name
		rel.name = second.Value
		rel.quoted = second.Kind == TokenQuotedIdent
		i += 2
	}
	return rel, i, true
}

// Schema-qualified names never match: the allowlist holds bare names only.
func allowedRelation(rel relation) bool {
	if rel.schema != "" {
		return false
	}
	if rel.quoted {
		_, ok := allowedTables[rel.name]
		return ok
	}
	return IsAllowedTable(rel.name)
}

func identAt(toks []Token, i int) (Token, bool) {
	if i >= len(toks) {
		return Token{}, false
	}
	tok := toks[i]
	switch tok.Kind {
	case TokenWord:
		return tok, !isReserved(tok.Value)
	case TokenQuotedIdent:
		return tok, tok.Prefix == "" && !tok.Unterminated
	}
	return Token{}, false
}

func skipAlias(toks []Token, i int) int {
	if i < len(toks) && toks[i].IsWord("AS") {
		if _, ok := identAt(toks, i+1); ok {
			return i + 2
		}
		return i + 1
	}
	if _, ok := identAt(toks, i); ok {
		return i + 1
	}
	return i
}

// LimitChecker requires a top-level LIMIT with an integer literal no larger
// than Max.
type LimitChecker struct {
	Max int
}

func NewLimitChecker(maxLimit int) *LimitChecker {
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	return &LimitChecker{Max: maxLimit}
}

func (c *LimitChecker) Name() string { return "limit" }

func (c *LimitChecker) Check(q *Query) Verdict {
	depth := 0
	found := false

	for i, tok := range q.code {
		switch {
		case tok.IsPunct("("):
			depth++
		case tok.IsPunct(")"):
			depth--
		case depth == 0 && tok.IsWord("LIMIT"):
			if i+1 >= len(q.code) {
				return reject(ReasonLimit)
			}
			n, ok := integerLiteral(q.code[i+1])
			if !ok || n > int64(c.Max) {
				return reject(ReasonLimit)
			}
			found = true
		}
	}

	if !found {
		return reject(ReasonLimit)
	}
	return safe()
}

func integerLiteral(tok Token) (int64, bool) {
	if tok.Kind != TokenNumber {
		return 0, false
	}
	for _, r := range tok.Value {
		if !isDigit(r) {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(tok.Value, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
