// Package masking redacts sensitive values in record trees before they are
// written out. Sensitivity is declared as an ordered rule set: field-name
// rules mask a value outright, content-pattern rules rewrite matching spans
// inside string leaves. A single generic walker evaluates the rules so new
// patterns never touch the traversal.
package masking

import (
	"regexp"
	"strings"

	perr "logvault/internal/platform/errors"
)

// MatchKind selects how a rule recognizes sensitive data
type MatchKind uint8

const (
	// MatchField matches on the (lowercased) field name; value masked outright
	MatchField MatchKind = iota

	// MatchPattern matches on string content; matching spans are rewritten
	MatchPattern
)

// Rule is one entry of the declarative rule set
type Rule struct {
	Kind MatchKind
	// Name identifies the rule in logs and, for MatchField, the field it matches
	Name    string
	Pattern *regexp.Regexp // nil for MatchField
}

// defaultFields are field names always considered sensitive, matched after
// lowercasing and stripping "-"/"_" separators
var defaultFields = []string{
	"password", "passwd", "pwd",
	"secret", "clientsecret",
	"token", "accesstoken", "refreshtoken", "idtoken",
	"apikey", "authorization", "auth",
	"creditcard", "cardnumber", "cvv",
	"ssn", "socialsecurity",
	"privatekey",
	"connectionstring", "dsn",
	"cookie", "sessionid",
}

// builtin content patterns, evaluated in order
var builtinPatterns = []struct {
	name string
	expr string
}{
	{"email", `[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`},
	{"jwt", `\beyJ[A-Za-z0-9_\-]{8,}\.[A-Za-z0-9_\-]{8,}\.[A-Za-z0-9_\-]*`},
	{"connection-string", `(?i)\b(?:postgres(?:ql)?|mysql|mongodb(?:\+srv)?|redis|amqps?|mssql)://[^\s"']+`},
	{"api-key", `\b(?:sk|pk|rk|ak)[_\-](?:live|test|prod)?[_\-]?[A-Za-z0-9]{16,}\b`},
	{"ssn", `\b\d{3}-\d{2}-\d{4}\b`},
	{"credit-card", `\b\d{4}[ \-]?\d{4}[ \-]?\d{4}[ \-]?\d{1,4}\b`},
	{"phone", `\+\d[\d ().\-]{7,14}\d\b`},
}

// normalizeFieldName folds a field name for rule matching
func normalizeFieldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}

// compileRules builds the ordered rule set: built-in field rules, caller
// field rules, built-in patterns, caller patterns
func compileRules(extraFields, extraPatterns []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(defaultFields)+len(extraFields)+len(builtinPatterns)+len(extraPatterns))
	for _, f := range defaultFields {
		rules = append(rules, Rule{Kind: MatchField, Name: f})
	}
	for _, f := range extraFields {
		rules = append(rules, Rule{Kind: MatchField, Name: normalizeFieldName(f)})
	}
	for _, p := range builtinPatterns {
		rules = append(rules, Rule{Kind: MatchPattern, Name: p.name, Pattern: regexp.MustCompile(p.expr)})
	}
	for _, expr := range extraPatterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, perr.Configf("invalid masking pattern %q: %v", expr, err)
		}
		rules = append(rules, Rule{Kind: MatchPattern, Name: "custom", Pattern: re})
	}
	return rules, nil
}
