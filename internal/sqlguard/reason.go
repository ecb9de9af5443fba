package sqlguard

// ReasonCode identifies which check rejected a candidate query.
type ReasonCode string

const (
	ReasonNotSelect        ReasonCode = "NOT_SELECT"
	ReasonForbiddenKeyword ReasonCode = "FORBIDDEN_KEYWORD"
	ReasonMissingTenant    ReasonCode = "MISSING_TENANT_SCOPE"
	ReasonDisallowedTable  ReasonCode = "DISALLOWED_TABLE"
	ReasonLimit            ReasonCode = "MISSING_OR_EXCESSIVE_LIMIT"
	ReasonSuspectInjection ReasonCode = "SUSPECT_INJECTION_SHAPE"
)

var reasonMessages = map[ReasonCode]string{
	ReasonNotSelect:        "Only read-only SELECT queries are allowed.",
	ReasonForbiddenKeyword: "The query contains a statement that could modify data or the session.",
	ReasonMissingTenant:    "The query is not scoped to your organization.",
	ReasonDisallowedTable:  "The query reads from data the assistant is not allowed to access.",
	ReasonLimit:            "The query must return a bounded number of rows.",
	ReasonSuspectInjection: "The query has a shape that looks like an injection attempt.",
}

// Message is the human readable text for a reason code.
func (r ReasonCode) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return "The query was rejected."
}

func (r ReasonCode) String() string {
	return string(r)
}

// AllReasons lists every reason code in check order.
func AllReasons() []ReasonCode {
	return []ReasonCode{
		ReasonNotSelect,
		ReasonForbiddenKeyword,
		ReasonMissingTenant,
		ReasonDisallowedTable,
		ReasonLimit,
		ReasonSuspectInjection,
	}
}

// Verdict is the outcome of validating one candidate query.
// Reason is empty when Safe is true.
type Verdict struct {
	Safe   bool       `json:"safe" description:"Whether the query may be executed"`
	Reason ReasonCode `json:"reason,omitempty" description:"Reason code when the query was rejected"`
}

func safe() Verdict {
	return Verdict{Safe: true}
}

func reject(reason ReasonCode) Verdict {
	return Verdict{Safe: false, Reason: reason}
}
