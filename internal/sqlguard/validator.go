package sqlguard

// Validator runs the checkers in order and stops at the first rejection.
// It holds no mutable state and is safe for concurrent use.
//
// Tenant scope is checked twice: the lexical check rejects text that never
// mentions the tenant, and the binding check, which needs a recognized
// statement, rejects text that mentions it without filtering every relation
// by it. Both report MISSING_TENANT_SCOPE.
type Validator struct {
	checkers []Checker
	maxLimit int
}

// NewValidator builds the standard check pipeline. A maxLimit of zero or
// less falls back to DefaultMaxLimit.
func NewValidator(maxLimit int) *Validator {
	limit := NewLimitChecker(maxLimit)
	return &Validator{
		checkers: []Checker{
			&StatementTypeChecker{},
			&KeywordChecker{},
			&TenantScopeChecker{},
			&TableChecker{},
			limit,
			&InjectionChecker{},
			&TenantBindingChecker{},
		},
		maxLimit: limit.Max,
	}
}

func (v *Validator) MaxLimit() int {
	return v.maxLimit
}

// Validate classifies candidate query text as safe or rejected.
func (v *Validator) Validate(text string) Verdict {
	q := NewQuery(text)
	for _, checker := range v.checkers {
		if verdict := checker.Check(q); !verdict.Safe {
			return verdict
		}
	}
	return safe()
}

// SafeQuery is query text that passed validation. Only Admit can produce a
// non-zero value, so code that accepts a SafeQuery cannot run unvalidated text.
type SafeQuery struct {
	text string
}

func (q SafeQuery) Text() string {
	return q.text
}

func (q SafeQuery) IsZero() bool {
	return q.text == ""
}

// Admit validates text and wraps it as a SafeQuery when the verdict is safe.
// The returned SafeQuery is zero when the verdict is a rejection.
func (v *Validator) Admit(text string) (SafeQuery, Verdict) {
	verdict := v.Validate(text)
	if !verdict.Safe {
		return SafeQuery{}, verdict
	}
	return SafeQuery{text: text}, verdict
}

var defaultValidator = NewValidator(DefaultMaxLimit)

// Validate checks text with the default limit.
func Validate(text string) Verdict {
	return defaultValidator.Validate(text)
}

// HasTenantPlaceholder reports whether text uses the tenant parameter outside
// comments and literals.
func HasTenantPlaceholder(text string) bool {
	for _, tok := range Tokenize(text) {
		if tok.Kind == TokenParam && tok.Value == TenantPlaceholder {
			return true
		}
	}
	return false
}
