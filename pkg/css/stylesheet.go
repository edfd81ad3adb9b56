package css

import (
	"fmt"
	"strings"
)

// Selector is a single compound selector made of an optional tag and any
// number of #id / .class conditions. Combinators are not supported; a rule
// whose selector contains one is dropped by the parser.
type Selector struct {
	Raw         string
	Tag         string // "" or "*" matches any element
	ID          string
	Classes     []string
	Specificity int
}

// Rule represents a CSS rule (selector + declarations)
type Rule struct {
	Selector     Selector
	Declarations []declaration
	// Index is the rule's position in its sheet, used as the cascade tiebreak.
	Index int
}

// Stylesheet represents a parsed CSS stylesheet
type Stylesheet struct {
	Rules []Rule
}

// ParseStylesheet parses CSS stylesheet content into rules. Malformed rules
// and at-rules are skipped rather than reported.
func ParseStylesheet(src string) *Stylesheet {
	sheet := &Stylesheet{Rules: make([]Rule, 0)}
	src = stripComments(src)
	for _, ruleStr := range splitRules(src) {
		rules, err := parseRule(ruleStr)
		if err != nil {
			continue
		}
		for _, r := range rules {
			r.Index = len(sheet.Rules)
			sheet.Rules = append(sheet.Rules, r)
		}
	}
	return sheet
}

func stripComments(src string) string {
	var b strings.Builder
	for {
		start := strings.Index(src, "/*")
		if start < 0 {
			b.WriteString(src)
			return b.String()
		}
		b.WriteString(src[:start])
		end := strings.Index(src[start+2:], "*/")
		if end < 0 {
			return b.String()
		}
		src = src[start+2+end+2:]
	}
}

// splitRules splits CSS into individual top-level rules
func splitRules(src string) []string {
	rules := make([]string, 0)
	depth := 0
	start := 0
	for i, ch := range src {
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				if ruleStr := strings.TrimSpace(src[start : i+1]); ruleStr != "" {
					rules = append(rules, ruleStr)
				}
				start = i + 1
			}
			if depth < 0 {
				depth = 0
				start = i + 1
			}
		}
	}
	return rules
}

// parseRule parses one "selector-list { declarations }" block into a rule
// per selector.
func parseRule(ruleStr string) ([]Rule, error) {
	bracePos := strings.Index(ruleStr, "{")
	if bracePos == -1 {
		return nil, fmt.Errorf("no opening brace in %q", ruleStr)
	}
	prelude := strings.TrimSpace(ruleStr[:bracePos])
	if strings.HasPrefix(prelude, "@") {
		return nil, fmt.Errorf("unsupported at-rule %q", prelude)
	}
	declEnd := strings.LastIndex(ruleStr, "}")
	if declEnd < bracePos {
		declEnd = len(ruleStr)
	}
	decls := parseDeclarationList(ruleStr[bracePos+1 : declEnd])

	rules := make([]Rule, 0)
	for _, raw := range strings.Split(prelude, ",") {
		sel, err := parseSelector(raw)
		if err != nil {
			continue
		}
		rules = append(rules, Rule{Selector: sel, Declarations: decls})
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("no usable selector in %q", prelude)
	}
	return rules, nil
}

// ParseSelectorList parses a comma separated selector list as used by
// querySelector. Unsupported selectors are dropped.
func ParseSelectorList(raw string) []Selector {
	out := make([]Selector, 0)
	for _, part := range strings.Split(raw, ",") {
		if sel, err := parseSelector(part); err == nil {
			out = append(out, sel)
		}
	}
	return out
}

// parseSelector parses a compound selector such as div#main.card.
func parseSelector(raw string) (Selector, error) {
	raw = strings.TrimSpace(raw)
	sel := Selector{Raw: raw}
	if raw == "" {
		return sel, fmt.Errorf("empty selector")
	}
	if strings.ContainsAny(raw, " >+~:[") {
		return sel, fmt.Errorf("unsupported selector %q", raw)
	}

	i := 0
	for i < len(raw) && raw[i] != '#' && raw[i] != '.' {
		i++
	}
	sel.Tag = strings.ToLower(raw[:i])
	if sel.Tag != "" && sel.Tag != "*" {
		sel.Specificity++
	}
	for i < len(raw) {
		kind := raw[i]
		j := i + 1
		for j < len(raw) && raw[j] != '#' && raw[j] != '.' {
			j++
		}
		name := raw[i+1 : j]
		if name == "" {
			return sel, fmt.Errorf("dangling %q in %q", kind, raw)
		}
		if kind == '#' {
			sel.ID = name
			sel.Specificity += 100
		} else {
			sel.Classes = append(sel.Classes, name)
			sel.Specificity += 10
		}
		i = j
	}
	return sel, nil
}

// Matches reports whether an element with the given tag, id and classes
// satisfies the selector.
func (s Selector) Matches(tag, id string, classes []string) bool {
	if s.Tag != "" && s.Tag != "*" && !strings.EqualFold(s.Tag, tag) {
		return false
	}
	if s.ID != "" && s.ID != id {
		return false
	}
	for _, want := range s.Classes {
		found := false
		for _, c := range classes {
			if c == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
