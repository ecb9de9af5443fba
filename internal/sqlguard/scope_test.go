package sqlguard

import (
	"reflect"
	"testing"
)

func TestParseTenantTerm(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   tenantTerm
		wantOK bool
	}{
		{"unqualified", "organization_id = $1", tenantTerm{param: true}, true},
		{"qualified", "p.organization_id = $1", tenantTerm{left: "p", param: true}, true},
		{"placeholder first", "$1 = P.organization_id", tenantTerm{left: "p", param: true}, true},
		{"quoted qualifier", `"P".organization_id = $1`, tenantTerm{left: "P", param: true}, true},
		{"parenthesized", "((organization_id = $1))", tenantTerm{param: true}, true},
		{"column equality", "a.organization_id = u.organization_id", tenantTerm{left: "a", right: "u"}, true},
		{"literal", "organization_id = 'acme'", tenantTerm{}, false},
		{"other column", "owner_id = $1", tenantTerm{}, false},
		{"other operator", "organization_id <> $1", tenantTerm{}, false},
		{"alternative", "(organization_id = $1 OR TRUE)", tenantTerm{}, false},
		{"second parameter", "organization_id = $2", tenantTerm{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := NewQuery(tt.text).code
			got, ok := parseTenantTerm(toks[:len(toks)-1])
			if ok != tt.wantOK {
				t.Fatalf("Expected ok=%v, got %v", tt.wantOK, ok)
			}
			if ok && got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestUnboundRelations(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "single relation",
			query: "SELECT * FROM crm_prospects WHERE organization_id = $1",
		},
		{
			name:  "alias hides the table name",
			query: "SELECT * FROM crm_prospects p WHERE crm_prospects.organization_id = $1",
			want:  []string{"p"},
		},
		{
			name:  "binding flows through joins",
			query: "SELECT * FROM users u JOIN crm_events e ON e.organization_id = u.organization_id JOIN crm_activities a ON a.organization_id = e.organization_id WHERE u.organization_id = $1",
		},
		{
			name:  "subquery reported by its own name",
			query: "SELECT * FROM crm_prospects WHERE organization_id = $1 AND owner_id IN (SELECT id FROM users)",
			want:  []string{"users"},
		},
		{
			name:  "top-level alternative binds nothing",
			query: "SELECT * FROM crm_prospects WHERE organization_id = $1 AND status = 'hot' OR status = 'won'",
			want:  []string{"crm_prospects"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := recognize(NewQuery(tt.query).code)
			if err != nil {
				t.Fatalf("recognize failed: %v", err)
			}
			if got := stmt.unboundRelations(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected unbound %v, got %v", tt.want, got)
			}
		})
	}
}

func TestIsAllowedFunction(t *testing.T) {
	for _, name := range []string{"count", "COUNT", "date_trunc", "coalesce"} {
		if !IsAllowedFunction(name) {
			t.Errorf("Expected %s to be allowed", name)
		}
	}
	for _, name := range []string{"pg_sleep", "query_to_xml", "set_config", "dblink", "xp_cmdshell", ""} {
		if IsAllowedFunction(name) {
			t.Errorf("Expected %s to be rejected", name)
		}
	}
	if len(AllowedFunctions()) == 0 {
		t.Error("Expected a non-empty allowlist")
	}
}
