package sqlguard

import (
	"strings"
)

// relationRef is one relation read by a SELECT. It is referred to by its
// alias when it has one and by its name otherwise.
type relationRef struct {
	name  string
	alias string
	scope *selectScope
	bound bool
}

func (r *relationRef) key() string {
	if r.alias != "" {
		return r.alias
	}
	return r.name
}

// selectScope holds the relations of one SELECT, subqueries included.
type selectScope struct {
	parent    *selectScope
	relations []*relationRef
}

// resolve finds the relation a column qualifier refers to. An unqualified
// column only resolves when its own SELECT reads a single relation; with
// more, every CRM table has the tenant column and the reference is ambiguous.
func (s *selectScope) resolve(qualifier string) *relationRef {
	if qualifier == "" {
		if len(s.relations) == 1 {
			return s.relations[0]
		}
		return nil
	}
	for sc := s; sc != nil; sc = sc.parent {
		for _, r := range sc.relations {
			if r.key() == qualifier {
				return r
			}
		}
	}
	return nil
}

// tenantTerm is a top-level conjunct of a WHERE or ON clause that ties a
// relation to the tenant: q.organization_id = $1, or an equality between the
// tenant columns of two relations.
type tenantTerm struct {
	scope  *selectScope
	joined *relationRef // set for ON clauses: the only relation the term may bind
	left   string
	right  string
	param  bool
}

// binds reports whether the term filters the rows of r. A condition never
// filters the rows of an enclosing SELECT, and an ON condition only filters
// the relation it joins.
func (t tenantTerm) binds(r *relationRef) bool {
	if r == nil || r.bound || r.scope != t.scope {
		return false
	}
	return t.joined == nil || t.joined == r
}

// statement is what the recognizer learned about an accepted query.
type statement struct {
	relations []*relationRef
	terms     []tenantTerm
}

// unboundRelations propagates tenant bindings to a fixed point and returns
// the relations still not filtered by the tenant placeholder.
func (s *statement) unboundRelations() []string {
	for _, r := range s.relations {
		r.bound = false
	}

	for changed := true; changed; {
		changed = false
		for _, t := range s.terms {
			left := t.scope.resolve(t.left)
			if left == nil {
				continue
			}
			if t.param {
				if t.binds(left) {
					left.bound = true
					changed = true
				}
				continue
			}
			right := t.scope.resolve(t.right)
			if right == nil || right == left {
				continue
			}
			if left.bound && t.binds(right) {
				right.bound = true
				changed = true
			}
			if right.bound && t.binds(left) {
				left.bound = true
				changed = true
			}
		}
	}

	var unbound []string
	for _, r := range s.relations {
		if !r.bound {
			unbound = append(unbound, r.key())
		}
	}
	return unbound
}

// parseTenantTerm matches a conjunct of the form
//
//	[q.]organization_id = $1
//	$1 = [q.]organization_id
//	[q.]organization_id = [r.]organization_id
//
// optionally wrapped in parentheses.
func parseTenantTerm(toks []Token) (tenantTerm, bool) {
	for len(toks) >= 2 && toks[0].IsPunct("(") && toks[len(toks)-1].IsPunct(")") {
		toks = toks[1 : len(toks)-1]
	}

	for i, tok := range toks {
		if !tok.IsOperator("=") {
			continue
		}
		lhs, rhs := toks[:i], toks[i+1:]

		lq, lcol := tenantColumnRef(lhs)
		rq, rcol := tenantColumnRef(rhs)
		switch {
		case lcol && isTenantParam(rhs):
			return tenantTerm{left: lq, param: true}, true
		case rcol && isTenantParam(lhs):
			return tenantTerm{left: rq, param: true}, true
		case lcol && rcol:
			return tenantTerm{left: lq, right: rq}, true
		}
		return tenantTerm{}, false
	}
	return tenantTerm{}, false
}

func isTenantParam(toks []Token) bool {
	return len(toks) == 1 && toks[0].Kind == TokenParam && toks[0].Value == TenantPlaceholder
}

// tenantColumnRef matches organization_id or q.organization_id and returns
// the qualifier.
func tenantColumnRef(toks []Token) (string, bool) {
	switch len(toks) {
	case 1:
		return "", isTenantColumn(toks[0])
	case 3:
		if !toks[1].IsPunct(".") || !isTenantColumn(toks[2]) {
			return "", false
		}
		if _, ok := identAt(toks, 0); !ok {
			return "", false
		}
		return identKey(toks[0]), true
	}
	return "", false
}

func isTenantColumn(tok Token) bool {
	switch tok.Kind {
	case TokenWord:
		return tok.Value == strings.ToUpper(TenantColumn)
	case TokenQuotedIdent:
		return tok.Prefix == "" && tok.Value == TenantColumn
	}
	return false
}

// identKey folds an unquoted identifier to lower case the way the database
// does and keeps a quoted one as written.
func identKey(tok Token) string {
	if tok.Kind == TokenWord {
		return strings.ToLower(tok.Value)
	}
	return tok.Value
}

// TenantBindingChecker requires every relation the query reads, in the outer
// SELECT and in every subquery, to be filtered by the tenant placeholder
// through a top-level conjunct of its WHERE clause or of the ON clause that
// joins it. It runs after the grammar is recognized because it needs the
// structure of the statement.
type TenantBindingChecker struct{}

func (c *TenantBindingChecker) Name() string { return "tenant-binding" }

func (c *TenantBindingChecker) Check(q *Query) Verdict {
	stmt, err := q.statement()
	if err != nil {
		return reject(ReasonSuspectInjection)
	}
	if len(stmt.unboundRelations()) > 0 {
		return reject(ReasonMissingTenant)
	}
	return safe()
}
