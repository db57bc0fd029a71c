package masking

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// DefaultPlaceholder replaces masked values when length is not preserved
const DefaultPlaceholder = "[MASKED]"

// Options configures a Masker
type Options struct {
	Enabled        bool
	Placeholder    string // default "[MASKED]"
	MaskChar       string // default "*", used when PreserveLength
	PreserveLength bool
	ShowLast       int // keep the trailing N characters visible

	Fields   []string // additional sensitive field names
	Exempt   []string // field names never masked
	Patterns []string // additional content regexes
}

// Masker applies the rule set to arbitrary record trees
type Masker struct {
	opt    Options
	rules  []Rule
	exempt map[string]struct{}
}

// pool of unicode pre-fold chains so matching sees NFKC/width-folded text
// (fullwidth or decomposed lookalikes of sensitive shapes still match)
var foldPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
			width.Fold,
		)
	},
}

// New compiles the rule set; invalid custom patterns fail construction
func New(opt Options) (*Masker, error) {
	if opt.Placeholder == "" {
		opt.Placeholder = DefaultPlaceholder
	}
	if opt.MaskChar == "" {
		opt.MaskChar = "*"
	}
	if opt.ShowLast < 0 {
		opt.ShowLast = 0
	}
	rules, err := compileRules(opt.Fields, opt.Patterns)
	if err != nil {
		return nil, err
	}
	exempt := make(map[string]struct{}, len(opt.Exempt))
	for _, f := range opt.Exempt {
		exempt[normalizeFieldName(f)] = struct{}{}
	}
	return &Masker{opt: opt, rules: rules, exempt: exempt}, nil
}

// Enabled reports whether masking is active
func (m *Masker) Enabled() bool { return m != nil && m.opt.Enabled }

// Records masks a record collection, returning a new slice
func (m *Masker) Records(in []map[string]any) []map[string]any {
	if !m.Enabled() {
		return in
	}
	out := make([]map[string]any, len(in))
	for i, rec := range in {
		out[i] = m.Mask(rec).(map[string]any)
	}
	return out
}

// Mask walks v and returns a masked copy. Maps and slices are copied,
// scalars pass through unless a rule fires
func (m *Masker) Mask(v any) any {
	if !m.Enabled() {
		return v
	}
	return m.walk("", v)
}

func (m *Masker) walk(field string, v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = m.walk(k, val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = m.walk(field, val)
		}
		return out
	case string:
		return m.maskString(field, x)
	default:
		// non-string scalar under a sensitive name still gets masked outright
		if field != "" && m.fieldSensitive(field) {
			return m.opt.Placeholder
		}
		return v
	}
}

func (m *Masker) fieldSensitive(field string) bool {
	key := normalizeFieldName(field)
	if _, ok := m.exempt[key]; ok {
		return false
	}
	for _, r := range m.rules {
		if r.Kind == MatchField && r.Name == key {
			return true
		}
	}
	return false
}

func (m *Masker) maskString(field, s string) string {
	if field != "" {
		if _, exempt := m.exempt[normalizeFieldName(field)]; exempt {
			return s
		}
	}
	if m.fieldSensitive(field) {
		return m.maskValue(s)
	}

	// scan content patterns over the raw string
	out := s
	for _, r := range m.rules {
		if r.Kind != MatchPattern {
			continue
		}
		out = r.Pattern.ReplaceAllStringFunc(out, m.maskValue)
	}
	if out != s {
		return out
	}

	// unicode pre-fold pass: if the folded form trips a pattern that the raw
	// form hid, mask the whole leaf rather than guess at span positions
	folded := fold(s)
	if folded != s {
		for _, r := range m.rules {
			if r.Kind == MatchPattern && r.Pattern.MatchString(folded) {
				return m.maskValue(s)
			}
		}
	}
	return out
}

// maskValue produces the replacement for one sensitive value
func (m *Masker) maskValue(s string) string {
	runes := []rune(s)
	show := m.opt.ShowLast
	if show > len(runes) {
		show = len(runes)
	}
	if m.opt.PreserveLength {
		return strings.Repeat(m.opt.MaskChar, len(runes)-show) + string(runes[len(runes)-show:])
	}
	if show > 0 {
		return m.opt.Placeholder + string(runes[len(runes)-show:])
	}
	return m.opt.Placeholder
}

func fold(s string) string {
	tr := foldPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	foldPool.Put(tr)
	if err != nil {
		return s
	}
	return out
}
