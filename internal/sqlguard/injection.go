package sqlguard

import (
	"strings"
)

// MaxQueryLength is the largest candidate, in bytes, the validator accepts.
// Generated queries are a few hundred bytes; anything near this size is padding.
const MaxQueryLength = 8 << 10

// InjectionChecker flags known attack shapes and anything the restricted
// grammar does not recognize. The depth-bounded recognizer runs before the
// token scans, so the scans only ever see shallow input.
type InjectionChecker struct{}

func (c *InjectionChecker) Name() string { return "injection-shape" }

func (c *InjectionChecker) Check(q *Query) Verdict {
	if len(q.Text) > MaxQueryLength {
		return reject(ReasonSuspectInjection)
	}
	if _, err := q.statement(); err != nil {
		return reject(ReasonSuspectInjection)
	}
	if hasSuspectToken(q.Tokens) ||
		hasTrailingStatement(q.Tokens) ||
		hasTautology(q.code) ||
		hasTopLevelOr(q.code) {
		return reject(ReasonSuspectInjection)
	}
	return safe()
}

// hasSuspectToken covers shapes visible in a single token: comments, encoded
// literals, escape and dollar quoting, stray parameters, set operators and
// vendor procedure names.
func hasSuspectToken(toks []Token) bool {
	for _, tok := range toks {
		if tok.Unterminated {
			return true
		}
		switch tok.Kind {
		case TokenIllegal, TokenHex, TokenLineComment, TokenBlockComment:
			return true
		case TokenString:
			if tok.Prefix != "" && tok.Prefix != "N" {
				return true
			}
			if strings.ContainsRune(tok.Value, '\\') {
				return true
			}
		case TokenQuotedIdent:
			if tok.Prefix != "" || hasProcedurePrefix(tok.Value) {
				return true
			}
		case TokenParam:
			if tok.Value != TenantPlaceholder {
				return true
			}
		case TokenWord:
			switch tok.Value {
			case "UNION", "INTERSECT", "EXCEPT":
				return true
			}
			if hasProcedurePrefix(tok.Value) {
				return true
			}
		}
	}
	return false
}

func hasProcedurePrefix(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range procedurePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// hasTrailingStatement reports a terminator followed by anything at all,
// which covers both "; DROP ..." and "; --".
func hasTrailingStatement(toks []Token) bool {
	for i, tok := range toks {
		if tok.IsPunct(";") && toks[i+1].Kind != TokenEOF {
			return true
		}
	}
	return false
}

// Tokens that may directly precede or follow a boolean condition.
var conditionOpeners = map[string]struct{}{
	"WHERE": {}, "AND": {}, "OR": {}, "NOT": {}, "ON": {}, "HAVING": {}, "WHEN": {},
}

var conditionClosers = map[string]struct{}{
	"AND": {}, "OR": {}, "ORDER": {}, "GROUP": {}, "LIMIT": {}, "OFFSET": {},
	"HAVING": {}, "THEN": {}, "JOIN": {}, "INNER": {}, "LEFT": {}, "RIGHT": {},
	"FULL": {}, "CROSS": {}, "WHERE": {},
}

// opensCondition reports whether the token at i starts a boolean condition.
// A parenthesis only counts when it is itself in condition position, so
// count(1) and IN ('hot') are not conditions.
func opensCondition(toks []Token, i int) bool {
	for i >= 0 && toks[i].IsPunct("(") {
		i--
	}
	if i < 0 {
		return false
	}
	tok := toks[i]
	if tok.Kind != TokenWord {
		return false
	}
	if _, ok := conditionOpeners[tok.Value]; !ok {
		return false
	}
	return !(tok.Value == "AND" && isBetweenAnd(toks, i))
}

// isBetweenAnd reports whether the AND at i is the second half of BETWEEN.
func isBetweenAnd(toks []Token, i int) bool {
	depth := 0
	for j := i - 1; j >= 0; j-- {
		tok := toks[j]
		switch {
		case tok.IsPunct(")"):
			depth++
		case tok.IsPunct("("):
			if depth == 0 {
				return false
			}
			depth--
		case depth > 0:
		case tok.IsWord("BETWEEN"):
			return true
		case tok.Kind == TokenWord:
			if _, ok := conditionOpeners[tok.Value]; ok {
				return false
			}
		}
	}
	return false
}

func closesCondition(toks []Token, i int) bool {
	if i >= len(toks) {
		return true
	}
	tok := toks[i]
	if tok.Kind == TokenEOF || tok.IsPunct(")") || tok.IsPunct(";") {
		return true
	}
	_, ok := conditionClosers[tok.Value]
	return tok.Kind == TokenWord && ok
}

// comparison is one "operand op operand" condition found by hasTautology.
type comparison struct {
	left, op, right string
	start, end      int
}

// canonical orders the operands so that a = b and b = a compare equal.
func (c comparison) canonical() comparison {
	if c.op == "!=" {
		c.op = "<>"
	}
	if c.left <= c.right {
		return c
	}
	c.left, c.right = c.right, c.left
	switch c.op {
	case "<":
		c.op = ">"
	case ">":
		c.op = "<"
	case "<=":
		c.op = ">="
	case ">=":
		c.op = "<="
	}
	return c
}

var complementOps = map[string]string{
	"=": "<>", "<>": "=", "<": ">=", ">=": "<", ">": "<=", "<=": ">",
}

// complements reports whether a OR b holds for every row with non-null
// operands, as in x = $1 OR x <> $1.
func (c comparison) complements(other comparison) bool {
	return c.left == other.left && c.right == other.right && complementOps[c.op] == other.op
}

// hasTautology looks for conditions that are true regardless of the row:
// 1=1, 'a'='a', col = col, $1 = $1, OR TRUE, OR 1, and complementary pairs
// such as x = $1 OR x <> $1.
func hasTautology(toks []Token) bool {
	var prev comparison
	havePrev := false

	for i := range toks {
		if !opensCondition(toks, i-1) {
			continue
		}

		// bare constant condition: OR TRUE, OR 1, WHERE 'x'
		if toks[i].IsLiteral() && !toks[i].IsWord("NULL") && closesCondition(toks, i+1) {
			return true
		}

		left, afterLeft := operand(toks, i)
		if left == "" || afterLeft >= len(toks) {
			continue
		}
		op := toks[afterLeft]
		if op.Kind != TokenOperator {
			continue
		}
		if _, ok := comparisonOperators[op.Value]; !ok {
			continue
		}
		right, afterRight := operand(toks, afterLeft+1)
		if right == "" || !closesCondition(toks, afterRight) {
			continue
		}

		leftTok, rightTok := toks[i], toks[afterLeft+1]
		if leftTok.IsLiteral() && rightTok.IsLiteral() {
			return true
		}
		if leftTok.Kind == TokenParam && rightTok.Kind == TokenParam {
			return true
		}
		if left == right && (op.Value == "=" || op.Value == "<=" || op.Value == ">=") {
			return true
		}

		cmp := comparison{left: left, op: op.Value, right: right, start: i, end: afterRight}.canonical()
		if havePrev && prev.end+1 == cmp.start && toks[prev.end].IsWord("OR") && prev.complements(cmp) {
			return true
		}
		prev, havePrev = cmp, true
	}
	return false
}

// operand reads a literal, a parameter or a possibly qualified column name at i and
// returns its normalized text and the index after it.
func operand(toks []Token, i int) (string, int) {
	if i >= len(toks) {
		return "", i
	}
	tok := toks[i]
	if tok.IsLiteral() {
		return tok.Kind.String() + ":" + tok.Value, i + 1
	}
	if tok.Kind == TokenParam {
		return "param:" + tok.Value, i + 1
	}
	if _, ok := identAt(toks, i); !ok {
		return "", i
	}
	parts := []string{strings.ToLower(tok.Value)}
	i++
	for i+1 < len(toks) && toks[i].IsPunct(".") {
		next, ok := identAt(toks, i+1)
		if !ok {
			break
		}
		parts = append(parts, strings.ToLower(next.Value))
		i += 2
	}
	if i < len(toks) && toks[i].IsPunct("(") {
		return "", i
	}
	return "col:" + strings.Join(parts, "."), i
}

// hasTopLevelOr flags an OR at the outermost level of the top-level WHERE
// clause. "tenant AND a OR b" escapes the tenant predicate, so alternatives
// must be parenthesized.
func hasTopLevelOr(toks []Token) bool {
	depth := 0
	inWhere := false
	for _, tok := range toks {
		switch {
		case tok.IsPunct("("):
			depth++
		case tok.IsPunct(")"):
			depth--
		case depth != 0:
		case tok.IsWord("WHERE"):
			inWhere = true
		case tok.IsWord("GROUP"), tok.IsWord("HAVING"), tok.IsWord("ORDER"), tok.IsWord("LIMIT"), tok.IsWord("OFFSET"):
			inWhere = false
		case inWhere && tok.IsWord("OR"):
			return true
		}
	}
	return false
}
