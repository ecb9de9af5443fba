package models

import (
	"encoding/json"
	"testing"
)

func TestRow_MarshalJSON_KeepsColumnOrder(t *testing.T) {
	row := Row{
		{Column: "zeta", Value: 1},
		{Column: "alpha", Value: "x"},
		{Column: "mid", Value: nil},
	}

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"zeta":1,"alpha":"x","mid":null}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}
}

func TestRow_MarshalJSON_Empty(t *testing.T) {
	data, err := json.Marshal(Row{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("Expected {}, got %s", data)
	}
}

func TestRow_Get(t *testing.T) {
	row := Row{{Column: "Total", Value: 42}}

	v, ok := row.Get("total")
	if !ok || v != 42 {
		t.Errorf("Expected 42, got %v (found=%v)", v, ok)
	}
	if _, ok := row.Get("missing"); ok {
		t.Error("Expected missing column not to be found")
	}
}

func TestTenantContext_IsZero(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"org-1", false},
	}
	for _, tt := range tests {
		if got := (TenantContext{OrganizationID: tt.id}).IsZero(); got != tt.want {
			t.Errorf("IsZero(%q): expected %v, got %v", tt.id, tt.want, got)
		}
	}
}
