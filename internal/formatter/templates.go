package formatter

import (
	"fmt"
	"strings"
)

type quantityTemplate struct {
	keywords []string
	singular string
	plural   string
}

// First match wins, so more specific fragments come first.
var quantityTemplates = []quantityTemplate{
	{[]string{"meeting", "event"}, "You have %s meeting on record.", "You have %s meetings on record."},
	{[]string{"call"}, "There is %s call on record.", "There are %s calls on record."},
	{[]string{"email"}, "There is %s email on record.", "There are %s emails on record."},
	{[]string{"activit", "task"}, "There is %s activity on record.", "There are %s activities on record."},
	{[]string{"prospect", "lead", "deal", "contact"}, "You have %s matching prospect.", "You have %s matching prospects."},
	{[]string{"stage"}, "Your pipeline has %s matching stage.", "Your pipeline has %s matching stages."},
	{[]string{"user", "member", "owner"}, "There is %s matching user.", "There are %s matching users."},
}

// Fragments that name a measurement rather than a count.
var measureKeywords = []string{"avg", "average", "mean", "median", "score", "rate", "ratio", "percent", "pct", "days", "hours", "duration"}

// quantitySentence picks wording from the column name. value is already
// formatted for display.
func quantitySentence(column, value string, one, integer bool) string {
	name := strings.ToLower(column)
	if !integer || containsAny(name, measureKeywords) {
		return fmt.Sprintf("The %s is %s.", label(column), value)
	}
	for _, tmpl := range quantityTemplates {
		if !containsAny(name, tmpl.keywords) {
			continue
		}
		if one {
			return fmt.Sprintf(tmpl.singular, value)
		}
		return fmt.Sprintf(tmpl.plural, value)
	}
	if one {
		return fmt.Sprintf("There is %s matching record.", value)
	}
	return fmt.Sprintf("There are %s matching records.", value)
}

// label turns a column name such as avg_deal_age into "avg deal age".
func label(column string) string {
	l := strings.Join(strings.Fields(strings.ReplaceAll(strings.ToLower(column), "_", " ")), " ")
	if l == "" {
		return "result"
	}
	return l
}
