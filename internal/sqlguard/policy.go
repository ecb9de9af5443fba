package sqlguard

import (
	"sort"
	"strings"
)

const (
	// TenantColumn is the column every CRM table uses for tenant isolation.
	TenantColumn = "organization_id"

	// TenantPlaceholder is the positional parameter reserved for the tenant id.
	TenantPlaceholder = "$1"

	// DefaultMaxLimit is the largest LIMIT a safe query may carry.
	DefaultMaxLimit = 50
)

// Relations the assistant may read. Keys are lower case.
var allowedTables = map[string]struct{}{
	"crm_prospects":       {},
	"crm_pipeline_stages": {},
	"users":               {},
	"crm_events":          {},
	"crm_activities":      {},
}

// Verbs that disqualify a query when they appear as a standalone word.
var forbiddenKeywords = map[string]struct{}{
	// data mutation
	"INSERT": {}, "UPDATE": {}, "DELETE": {}, "MERGE": {}, "UPSERT": {}, "INTO": {},
	// schema mutation
	"CREATE": {}, "ALTER": {}, "DROP": {}, "TRUNCATE": {}, "RENAME": {},
	"GRANT": {}, "REVOKE": {}, "REINDEX": {}, "CLUSTER": {}, "VACUUM": {}, "REFRESH": {},
	// session and transaction control
	"SET": {}, "RESET": {}, "BEGIN": {}, "COMMIT": {}, "ROLLBACK": {}, "SAVEPOINT": {},
	"RELEASE": {}, "LOCK": {}, "LISTEN": {}, "NOTIFY": {}, "UNLISTEN": {}, "DISCARD": {},
	"PREPARE": {}, "DEALLOCATE": {}, "ANALYZE": {}, "CHECKPOINT": {},
	// procedural execution
	"EXEC": {}, "EXECUTE": {}, "CALL": {}, "COPY": {}, "SHUTDOWN": {},
}

// Functions a candidate query may call. Anything else, including every
// catalog, file, network, timing and XML export function, is not part of the
// accepted grammar. Keys are lower case.
var allowedFunctions = map[string]struct{}{
	// aggregates
	"count": {}, "sum": {}, "avg": {}, "min": {}, "max": {},
	"array_agg": {}, "string_agg": {}, "bool_and": {}, "bool_or": {},
	"stddev": {}, "variance": {},
	// conditional
	"coalesce": {}, "nullif": {}, "greatest": {}, "least": {},
	// text
	"lower": {}, "upper": {}, "initcap": {}, "length": {}, "char_length": {},
	"trim": {}, "btrim": {}, "ltrim": {}, "rtrim": {}, "substring": {}, "substr": {},
	"position": {}, "strpos": {}, "concat": {}, "concat_ws": {}, "replace": {},
	"split_part": {}, "lpad": {}, "rpad": {}, "starts_with": {},
	// numeric
	"abs": {}, "round": {}, "floor": {}, "ceil": {}, "ceiling": {}, "trunc": {},
	"mod": {}, "power": {}, "sqrt": {}, "sign": {},
	// date and time
	"now": {}, "date_trunc": {}, "date_part": {}, "extract": {}, "age": {},
	"make_date": {}, "to_char": {}, "to_date": {}, "to_timestamp": {}, "to_number": {},
	// window
	"row_number": {}, "rank": {}, "dense_rank": {}, "percent_rank": {}, "cume_dist": {},
	"ntile": {}, "lag": {}, "lead": {}, "first_value": {}, "last_value": {}, "nth_value": {},
}

// Vendor stored procedure prefixes used by classic injection payloads.
var procedurePrefixes = []string{"xp_", "sp_"}

// AllowedTables returns the table allowlist in sorted order.
func AllowedTables() []string {
	return sortedKeys(allowedTables)
}

// ForbiddenKeywords returns the keyword denylist in sorted order.
func ForbiddenKeywords() []string {
	return sortedKeys(forbiddenKeywords)
}

// IsAllowedTable reports whether name is an allowlisted relation. Comparison
// is case-insensitive because unquoted identifiers fold to lower case.
func IsAllowedTable(name string) bool {
	_, ok := allowedTables[strings.ToLower(name)]
	return ok
}

// IsForbiddenKeyword reports whether word is in the keyword denylist.
func IsForbiddenKeyword(word string) bool {
	_, ok := forbiddenKeywords[strings.ToUpper(word)]
	return ok
}

// AllowedFunctions returns the function allowlist in sorted order.
func AllowedFunctions() []string {
	return sortedKeys(allowedFunctions)
}

// IsAllowedFunction reports whether name may be called. Only unquoted names
// are ever looked up, so the comparison folds case.
func IsAllowedFunction(name string) bool {
	_, ok := allowedFunctions[strings.ToLower(name)]
	return ok
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
