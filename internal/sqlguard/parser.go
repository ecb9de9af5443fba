package sqlguard

import (
	"fmt"
)

// maxNesting bounds parenthesis and subquery depth so hostile input cannot
// exhaust the stack.
const maxNesting = 32

// Words that can never be a bare identifier or alias in the accepted grammar.
var reservedWords = map[string]struct{}{
	"ALL": {}, "AND": {}, "ANY": {}, "ARRAY": {}, "AS": {}, "ASC": {}, "BETWEEN": {},
	"BY": {}, "CASE": {}, "CAST": {}, "CROSS": {}, "DESC": {}, "DISTINCT": {},
	"ELSE": {}, "END": {}, "EXCEPT": {}, "EXISTS": {}, "FALSE": {}, "FETCH": {},
	"FILTER": {}, "FOR": {}, "FROM": {}, "FULL": {}, "GROUP": {}, "HAVING": {},
	"ILIKE": {}, "IN": {}, "INNER": {}, "INTERSECT": {}, "INTERVAL": {}, "INTO": {},
	"IS": {}, "JOIN": {}, "LATERAL": {}, "LEFT": {}, "LIKE": {}, "LIMIT": {},
	"NATURAL": {}, "NOT": {}, "NULL": {}, "NULLS": {}, "OFFSET": {}, "ON": {},
	"ONLY": {}, "OR": {}, "ORDER": {}, "OUTER": {}, "OVER": {}, "RIGHT": {},
	"SELECT": {}, "SIMILAR": {}, "SOME": {}, "THEN": {}, "TRUE": {}, "UNION": {},
	"USING": {}, "WHEN": {}, "WHERE": {}, "WINDOW": {}, "WITH": {},
}

func isReserved(word string) bool {
	_, ok := reservedWords[word]
	return ok
}

var comparisonOperators = map[string]struct{}{
	"=": {}, "<>": {}, "!=": {}, "<": {}, ">": {}, "<=": {}, ">=": {},
	"~": {}, "~*": {}, "!~": {}, "!~*": {}, "~~": {}, "~~*": {}, "!~~": {}, "!~~*": {},
}

var additiveOperators = map[string]struct{}{
	"+": {}, "-": {}, "||": {}, "->": {}, "->>": {},
}

var multiplicativeOperators = map[string]struct{}{
	"*": {}, "/": {}, "%": {},
}

// SyntaxError reports where the recognizer gave up.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

// Parse recognizes a single read-only statement of the form
//
//	SELECT [DISTINCT] items FROM relations [JOIN ...] [WHERE ...]
//	  [GROUP BY ...] [HAVING ...] [ORDER BY ...] [LIMIT n [OFFSET m]] [;]
//
// with subqueries allowed in expressions. Comments are not part of the
// grammar, and only functions on the allowlist may be called. It only answers
// whether the token stream fits.
func Parse(tokens []Token) error {
	_, err := recognize(tokens)
	return err
}

// recognize parses tokens and records the relations each SELECT reads along
// with the tenant conditions that filter them.
func recognize(tokens []Token) (*statement, error) {
	p := &parser{tokens: tokens, stmt: &statement{}}
	if err := p.selectStmt(); err != nil {
		return nil, err
	}
	if p.peek().IsPunct(";") {
		p.advance()
	}
	if p.peek().Kind != TokenEOF {
		return nil, p.errorf("unexpected %s %q after end of statement", p.peek().Kind, p.peek().Text)
	}
	return p.stmt, nil
}

type parser struct {
	tokens []Token
	pos    int
	depth  int
	scope  *selectScope
	stmt   *statement
}

func (p *parser) peek() Token {
	return p.peekAt(0)
}

func (p *parser) peekAt(offset int) Token {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return Token{Kind: TokenEOF}
	}
	return p.tokens[i]
}

func (p *parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) acceptWord(word string) bool {
	if p.peek().IsWord(word) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) acceptPunct(punct string) bool {
	if p.peek().IsPunct(punct) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expectWord(word string) error {
	if !p.acceptWord(word) {
		return p.errorf("expected %s, got %q", word, p.peek().Text)
	}
	return nil
}

func (p *parser) expectPunct(punct string) error {
	if !p.acceptPunct(punct) {
		return p.errorf("expected %q, got %q", punct, p.peek().Text)
	}
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Pos: p.peek().Pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxNesting {
		return p.errorf("nesting deeper than %d", maxNesting)
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) selectStmt() error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()

	scope := &selectScope{parent: p.scope}
	p.scope = scope
	defer func() { p.scope = scope.parent }()

	if err := p.expectWord("SELECT"); err != nil {
		return err
	}

	if p.acceptWord("DISTINCT") {
		if p.acceptWord("ON") {
			if err := p.parenExprList(); err != nil {
				return err
			}
		}
	} else {
		p.acceptWord("ALL")
	}

	if err := p.selectList(); err != nil {
		return err
	}

	if err := p.expectWord("FROM"); err != nil {
		return err
	}
	if err := p.fromList(); err != nil {
		return err
	}

	if p.acceptWord("WHERE") {
		if err := p.condition(nil, true); err != nil {
			return err
		}
	}

	if p.acceptWord("GROUP") {
		if err := p.expectWord("BY"); err != nil {
			return err
		}
		if err := p.exprList(); err != nil {
			return err
		}
	}

	if p.acceptWord("HAVING") {
		if err := p.expr(); err != nil {
			return err
		}
	}

	if p.acceptWord("ORDER") {
		if err := p.orderList(); err != nil {
			return err
		}
	}

	// LIMIT and OFFSET may come in either order, each at most once.
	var limitSeen, offsetSeen bool
	for i := 0; i < 2; i++ {
		switch {
		case !limitSeen && p.acceptWord("LIMIT"):
			limitSeen = true
			if p.advance().Kind != TokenNumber {
				return p.errorf("LIMIT requires an integer literal")
			}
		case !offsetSeen && p.acceptWord("OFFSET"):
			offsetSeen = true
			if p.advance().Kind != TokenNumber {
				return p.errorf("OFFSET requires an integer literal")
			}
			if !p.acceptWord("ROWS") {
				p.acceptWord("ROW")
			}
		}
	}

	return nil
}

func (p *parser) selectList() error {
	for {
		if err := p.selectItem(); err != nil {
			return err
		}
		if !p.acceptPunct(",") {
			return nil
		}
	}
}

func (p *parser) selectItem() error {
	if p.peek().IsOperator("*") {
		p.advance()
		return nil
	}
	// table.*
	if p.isName(p.peek()) && p.peekAt(1).IsPunct(".") && p.peekAt(2).IsOperator("*") {
		p.pos += 3
		return nil
	}
	if err := p.expr(); err != nil {
		return err
	}
	_, err := p.alias()
	return err
}

// alias consumes an optional [AS] name and returns it folded like an
// identifier, or "" when there is none.
func (p *parser) alias() (string, error) {
	if p.acceptWord("AS") {
		tok := p.advance()
		if tok.Kind != TokenWord && tok.Kind != TokenQuotedIdent {
			return "", p.errorf("expected alias after AS")
		}
		return identKey(tok), nil
	}
	if p.isName(p.peek()) {
		return identKey(p.advance()), nil
	}
	return "", nil
}

func (p *parser) isName(tok Token) bool {
	switch tok.Kind {
	case TokenQuotedIdent:
		return tok.Prefix == ""
	case TokenWord:
		return !isReserved(tok.Value)
	}
	return false
}

func (p *parser) fromList() error {
	for {
		if _, err := p.tableRef(); err != nil {
			return err
		}
		for p.isJoinStart() {
			if err := p.join(); err != nil {
				return err
			}
		}
		if !p.acceptPunct(",") {
			return nil
		}
	}
}

// tableRef parses a relation name with an optional alias and records it in
// the current scope.
func (p *parser) tableRef() (*relationRef, error) {
	if !p.isName(p.peek()) {
		return nil, p.errorf("expected table name, got %q", p.peek().Text)
	}
	name := identKey(p.advance())
	if p.acceptPunct(".") {
		if !p.isName(p.peek()) {
			return nil, p.errorf("expected table name after schema")
		}
		name += "." + identKey(p.advance())
	}
	if p.peek().IsPunct("(") {
		return nil, p.errorf("table functions are not allowed")
	}
	alias, err := p.alias()
	if err != nil {
		return nil, err
	}

	ref := &relationRef{name: name, alias: alias, scope: p.scope}
	p.scope.relations = append(p.scope.relations, ref)
	p.stmt.relations = append(p.stmt.relations, ref)
	return ref, nil
}

func (p *parser) isJoinStart() bool {
	tok := p.peek()
	if tok.Kind != TokenWord {
		return false
	}
	switch tok.Value {
	case "JOIN", "INNER", "LEFT", "RIGHT", "FULL", "CROSS":
		return true
	}
	return false
}

// join parses one JOIN. The ON condition of an inner or left join filters
// the joined relation; for right and full joins it filters neither side.
func (p *parser) join() error {
	cross := false
	filters := true
	switch {
	case p.acceptWord("INNER"):
	case p.acceptWord("LEFT"):
		p.acceptWord("OUTER")
	case p.acceptWord("RIGHT"), p.acceptWord("FULL"):
		p.acceptWord("OUTER")
		filters = false
	case p.acceptWord("CROSS"):
		cross = true
	}
	if err := p.expectWord("JOIN"); err != nil {
		return err
	}
	ref, err := p.tableRef()
	if err != nil {
		return err
	}
	if cross {
		return nil
	}

	if p.acceptWord("ON") {
		return p.condition(ref, filters)
	}
	if p.acceptWord("USING") {
		if err := p.expectPunct("("); err != nil {
			return err
		}
		for {
			if !p.isName(p.peek()) {
				return p.errorf("expected column name in USING")
			}
			p.advance()
			if !p.acceptPunct(",") {
				break
			}
		}
		return p.expectPunct(")")
	}
	return p.errorf("expected ON or USING after JOIN")
}

func (p *parser) orderList() error {
	if err := p.expectWord("BY"); err != nil {
		return err
	}
	for {
		if err := p.expr(); err != nil {
			return err
		}
		if !p.acceptWord("ASC") {
			p.acceptWord("DESC")
		}
		if p.acceptWord("NULLS") {
			if !p.acceptWord("FIRST") && !p.acceptWord("LAST") {
				return p.errorf("expected FIRST or LAST after NULLS")
			}
		}
		if !p.acceptPunct(",") {
			return nil
		}
	}
}

func (p *parser) exprList() error {
	for {
		if err := p.expr(); err != nil {
			return err
		}
		if !p.acceptPunct(",") {
			return nil
		}
	}
}

func (p *parser) parenExprList() error {
	if err := p.expectPunct("("); err != nil {
		return err
	}
	if err := p.exprList(); err != nil {
		return err
	}
	return p.expectPunct(")")
}

func (p *parser) expr() error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()
	return p.orExpr()
}

// condition parses a WHERE or ON condition. When collect is set it records
// the tenant terms among the top-level conjuncts; an OR at the top level
// means no single conjunct holds for every row, so none are recorded.
func (p *parser) condition(joined *relationRef, collect bool) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()

	var terms []tenantTerm
	for {
		start := p.pos
		if err := p.notExpr(); err != nil {
			return err
		}
		if term, ok := parseTenantTerm(p.tokens[start:p.pos]); ok {
			terms = append(terms, term)
		}
		if !p.acceptWord("AND") {
			break
		}
	}
	if p.peek().IsWord("OR") {
		terms = nil
		for p.acceptWord("OR") {
			if err := p.andExpr(); err != nil {
				return err
			}
		}
	}

	if !collect {
		return nil
	}
	for _, term := range terms {
		term.scope = p.scope
		term.joined = joined
		p.stmt.terms = append(p.stmt.terms, term)
	}
	return nil
}

func (p *parser) orExpr() error {
	if err := p.andExpr(); err != nil {
		return err
	}
	for p.acceptWord("OR") {
		if err := p.andExpr(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) andExpr() error {
	if err := p.notExpr(); err != nil {
		return err
	}
	for p.acceptWord("AND") {
		if err := p.notExpr(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) notExpr() error {
	if p.acceptWord("NOT") {
		if err := p.enter(); err != nil {
			return err
		}
		defer p.leave()
		return p.notExpr()
	}
	return p.predicate()
}

func (p *parser) predicate() error {
	if err := p.additive(); err != nil {
		return err
	}
	return p.predicateTail()
}

// predicateTail parses what may follow the left operand of a predicate:
// a comparison, IS, IN, BETWEEN or a pattern match.
func (p *parser) predicateTail() error {
	tok := p.peek()
	if tok.Kind == TokenOperator {
		if _, ok := comparisonOperators[tok.Value]; ok {
			p.advance()
			if p.peek().IsWord("ANY") || p.peek().IsWord("ALL") || p.peek().IsWord("SOME") {
				p.advance()
				return p.parenSubqueryOrExpr()
			}
			return p.additive()
		}
	}

	if p.acceptWord("IS") {
		p.acceptWord("NOT")
		switch {
		case p.acceptWord("NULL"), p.acceptWord("TRUE"), p.acceptWord("FALSE"), p.acceptWord("UNKNOWN"):
			return nil
		case p.acceptWord("DISTINCT"):
			if err := p.expectWord("FROM"); err != nil {
				return err
			}
			return p.additive()
		}
		return p.errorf("unexpected %q after IS", p.peek().Text)
	}

	negated := p.peek().IsWord("NOT")
	if negated {
		next := p.peekAt(1)
		if !(next.IsWord("IN") || next.IsWord("BETWEEN") || next.IsWord("LIKE") || next.IsWord("ILIKE") || next.IsWord("SIMILAR")) {
			return nil
		}
		p.advance()
	}

	switch {
	case p.acceptWord("IN"):
		return p.parenSubqueryOrExpr()
	case p.acceptWord("BETWEEN"):
		p.acceptWord("SYMMETRIC")
		if err := p.additive(); err != nil {
			return err
		}
		if err := p.expectWord("AND"); err != nil {
			return err
		}
		return p.additive()
	case p.acceptWord("LIKE"), p.acceptWord("ILIKE"):
		return p.likePattern()
	case p.acceptWord("SIMILAR"):
		if err := p.expectWord("TO"); err != nil {
			return err
		}
		return p.likePattern()
	}

	if negated {
		return p.errorf("dangling NOT")
	}
	return nil
}

func (p *parser) likePattern() error {
	if err := p.additive(); err != nil {
		return err
	}
	if p.acceptWord("ESCAPE") {
		return p.additive()
	}
	return nil
}

// parenSubqueryOrExpr parses "(SELECT ...)" or "(expr, ...)".
func (p *parser) parenSubqueryOrExpr() error {
	if err := p.expectPunct("("); err != nil {
		return err
	}
	if p.peek().IsWord("SELECT") {
		if err := p.selectStmt(); err != nil {
			return err
		}
	} else if err := p.exprList(); err != nil {
		return err
	}
	return p.expectPunct(")")
}

func (p *parser) additive() error {
	if err := p.multiplicative(); err != nil {
		return err
	}
	for {
		tok := p.peek()
		if tok.Kind != TokenOperator {
			return nil
		}
		if _, ok := additiveOperators[tok.Value]; !ok {
			return nil
		}
		p.advance()
		if err := p.multiplicative(); err != nil {
			return err
		}
	}
}

func (p *parser) multiplicative() error {
	if err := p.unary(); err != nil {
		return err
	}
	for {
		tok := p.peek()
		if tok.Kind != TokenOperator {
			return nil
		}
		if _, ok := multiplicativeOperators[tok.Value]; !ok {
			return nil
		}
		p.advance()
		if err := p.unary(); err != nil {
			return err
		}
	}
}

func (p *parser) unary() error {
	if p.peek().IsOperator("-") || p.peek().IsOperator("+") {
		p.advance()
		if err := p.enter(); err != nil {
			return err
		}
		defer p.leave()
		return p.unary()
	}
	return p.postfix()
}

func (p *parser) postfix() error {
	if err := p.primary(); err != nil {
		return err
	}
	for {
		switch {
		case p.acceptPunct("::"):
			if err := p.typeName(); err != nil {
				return err
			}
		case p.peek().IsWord("AT") && p.peekAt(1).IsWord("TIME") && p.peekAt(2).IsWord("ZONE"):
			p.pos += 3
			if err := p.primary(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (p *parser) primary() error {
	tok := p.peek()

	switch tok.Kind {
	case TokenNumber:
		p.advance()
		return nil
	case TokenString:
		if tok.Prefix != "" && tok.Prefix != "N" {
			return p.errorf("unsupported string constant %q", tok.Text)
		}
		p.advance()
		return nil
	case TokenParam:
		if tok.Value != TenantPlaceholder {
			return p.errorf("only %s may be used as a parameter", TenantPlaceholder)
		}
		p.advance()
		return nil
	case TokenQuotedIdent:
		if tok.Prefix != "" {
			return p.errorf("unsupported identifier %q", tok.Text)
		}
		return p.columnOrCall()
	case TokenPunct:
		if tok.Value == "(" {
			return p.parenthesized()
		}
		return p.errorf("unexpected %q", tok.Text)
	case TokenWord:
		return p.wordPrimary(tok)
	}
	return p.errorf("unexpected %s %q", tok.Kind, tok.Text)
}

func (p *parser) parenthesized() error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()

	p.advance()
	if p.peek().IsWord("SELECT") {
		if err := p.selectStmt(); err != nil {
			return err
		}
		return p.expectPunct(")")
	}
	if err := p.exprList(); err != nil {
		return err
	}
	return p.expectPunct(")")
}

func (p *parser) wordPrimary(tok Token) error {
	switch tok.Value {
	case "TRUE", "FALSE", "NULL":
		p.advance()
		return nil
	case "EXISTS":
		p.advance()
		if err := p.expectPunct("("); err != nil {
			return err
		}
		if err := p.selectStmt(); err != nil {
			return err
		}
		return p.expectPunct(")")
	case "CASE":
		return p.caseExpr()
	case "CAST":
		p.advance()
		if err := p.expectPunct("("); err != nil {
			return err
		}
		if err := p.expr(); err != nil {
			return err
		}
		if err := p.expectWord("AS"); err != nil {
			return err
		}
		if err := p.typeName(); err != nil {
			return err
		}
		return p.expectPunct(")")
	case "INTERVAL":
		p.advance()
		if p.peek().Kind != TokenString || p.peek().Prefix != "" {
			return p.errorf("INTERVAL requires a string literal")
		}
		p.advance()
		return nil
	case "DATE", "TIME", "TIMESTAMP", "TIMESTAMPTZ":
		if next := p.peekAt(1); next.Kind == TokenString && next.Prefix == "" {
			p.pos += 2
			return nil
		}
	}

	if isReserved(tok.Value) {
		return p.errorf("unexpected keyword %s", tok.Value)
	}
	return p.columnOrCall()
}

func (p *parser) caseExpr() error {
	p.advance()
	if !p.peek().IsWord("WHEN") {
		if err := p.expr(); err != nil {
			return err
		}
	}
	if !p.peek().IsWord("WHEN") {
		return p.errorf("CASE requires at least one WHEN")
	}
	for p.acceptWord("WHEN") {
		if err := p.expr(); err != nil {
			return err
		}
		if err := p.expectWord("THEN"); err != nil {
			return err
		}
		if err := p.expr(); err != nil {
			return err
		}
	}
	if p.acceptWord("ELSE") {
		if err := p.expr(); err != nil {
			return err
		}
	}
	return p.expectWord("END")
}

// columnOrCall parses a possibly qualified column reference or a function
// call. A call must name an allowlisted function directly: quoted and
// schema-qualified callees are rejected.
func (p *parser) columnOrCall() error {
	first := p.advance()
	qualified := false
	for p.peek().IsPunct(".") {
		p.advance()
		if !p.isName(p.peek()) {
			return p.errorf("expected name after '.'")
		}
		p.advance()
		qualified = true
	}
	if !p.peek().IsPunct("(") {
		return nil
	}
	if first.Kind != TokenWord || qualified || !IsAllowedFunction(first.Value) {
		return p.errorf("function %s is not allowed", first.Text)
	}
	return p.callArgs()
}

// callArgs parses the argument list of a function call including the SQL
// standard forms EXTRACT(f FROM x), SUBSTRING(x FROM a FOR b), TRIM(BOTH x FROM y)
// and POSITION(a IN b), plus FILTER and OVER suffixes.
func (p *parser) callArgs() error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()

	p.advance() // (
	switch {
	case p.acceptPunct(")"):
	case p.peek().IsOperator("*") && p.peekAt(1).IsPunct(")"):
		p.pos += 2
	default:
		if !p.acceptWord("DISTINCT") {
			p.acceptWord("ALL")
		}
		if err := p.callArgList(); err != nil {
			return err
		}
		if err := p.expectPunct(")"); err != nil {
			return err
		}
	}

	if p.acceptWord("FILTER") {
		if err := p.expectPunct("("); err != nil {
			return err
		}
		if err := p.expectWord("WHERE"); err != nil {
			return err
		}
		if err := p.expr(); err != nil {
			return err
		}
		if err := p.expectPunct(")"); err != nil {
			return err
		}
	}

	if p.acceptWord("OVER") {
		return p.windowSpec()
	}
	return nil
}

func (p *parser) callArgList() error {
	if p.acceptWord("BOTH") || p.acceptWord("LEADING") || p.acceptWord("TRAILING") {
		if p.acceptWord("FROM") {
			return p.expr()
		}
	}
	for {
		if err := p.additiveOrExpr(); err != nil {
			return err
		}
		switch {
		case p.acceptPunct(","), p.acceptWord("FROM"), p.acceptWord("FOR"), p.acceptWord("IN"):
			continue
		case p.peek().IsWord("ORDER"):
			p.advance()
			return p.orderList()
		}
		return nil
	}
}

// additiveOrExpr lets POSITION(a IN b) keep IN as a separator rather than a
// predicate. It continues the expression from where the operand ended so no
// input is parsed twice.
func (p *parser) additiveOrExpr() error {
	if p.peek().IsWord("NOT") {
		return p.expr()
	}
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()

	if err := p.additive(); err != nil {
		return err
	}
	if p.peek().IsWord("IN") && !p.peekAt(1).IsPunct("(") {
		return nil
	}
	if err := p.predicateTail(); err != nil {
		return err
	}
	for p.acceptWord("AND") {
		if err := p.notExpr(); err != nil {
			return err
		}
	}
	for p.acceptWord("OR") {
		if err := p.andExpr(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) windowSpec() error {
	if err := p.expectPunct("("); err != nil {
		return err
	}
	if p.acceptWord("PARTITION") {
		if err := p.expectWord("BY"); err != nil {
			return err
		}
		if err := p.exprList(); err != nil {
			return err
		}
	}
	if p.acceptWord("ORDER") {
		if err := p.orderList(); err != nil {
			return err
		}
	}
	return p.expectPunct(")")
}

// typeName accepts the type spellings a read query plausibly casts to.
func (p *parser) typeName() error {
	tok := p.peek()
	if tok.Kind != TokenWord {
		return p.errorf("expected type name, got %q", tok.Text)
	}
	p.advance()

	switch tok.Value {
	case "DOUBLE":
		if err := p.expectWord("PRECISION"); err != nil {
			return err
		}
	case "CHARACTER":
		p.acceptWord("VARYING")
	case "TIMESTAMP", "TIME":
		if p.acceptWord("WITH") || p.acceptWord("WITHOUT") {
			if err := p.expectWord("TIME"); err != nil {
				return err
			}
			if err := p.expectWord("ZONE"); err != nil {
				return err
			}
		}
	}

	if p.acceptPunct("(") {
		for {
			if p.advance().Kind != TokenNumber {
				return p.errorf("expected type modifier")
			}
			if !p.acceptPunct(",") {
				break
			}
		}
		if err := p.expectPunct(")"); err != nil {
			return err
		}
	}
	if p.peek().IsPunct("[") && p.peekAt(1).IsPunct("]") {
		p.pos += 2
	}
	return nil
}
