// Where: internal/config/expand.go
// What: Generative name expansion and factor-conditional filtering.
// Why: envlist entries like py{38,39}-{unit,lint} declare whole families.
package config

import "strings"

// ExpandBraces expands generative brace groups in a name into the cross
// product of their alternatives: "py{38,39}-lint" -> ["py38-lint",
// "py39-lint"]. Names without braces come back as a single element.
// Unbalanced or empty groups are treated as literal text.
func ExpandBraces(name string) []string {
	open := strings.IndexByte(name, '{')
	if open < 0 {
		return []string{name}
	}
	depth := 0
	for i := open; i < len(name); i++ {
		switch name[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				inner := name[open+1 : i]
				if !strings.Contains(inner, ",") {
					// Literal braces; keep going past them.
					rest := ExpandBraces(name[i+1:])
					out := make([]string, 0, len(rest))
					for _, tail := range rest {
						out = append(out, name[:i+1]+tail)
					}
					return out
				}
				var out []string
				for _, alt := range splitTopLevel(inner) {
					for _, expanded := range ExpandBraces(name[:open] + strings.TrimSpace(alt) + name[i+1:]) {
						out = append(out, expanded)
					}
				}
				return dedupe(out)
			}
		}
	}
	// Unbalanced: literal.
	return []string{name}
}

// ExpandList applies ExpandBraces to every element of a comma or
// newline-separated list value.
func ExpandList(value string) []string {
	var out []string
	for _, entry := range SplitList(value) {
		out = append(out, ExpandBraces(entry)...)
	}
	return dedupe(out)
}

// SplitList splits a config list value on newlines and top-level commas,
// trimming whitespace and dropping empties. Commas inside brace groups do
// not split.
func SplitList(value string) []string {
	var out []string
	for _, line := range strings.Split(value, "\n") {
		for _, entry := range splitTopLevel(line) {
			entry = strings.TrimSpace(entry)
			if entry != "" {
				out = append(out, entry)
			}
		}
	}
	return out
}

// SplitLines splits a block value on newlines only, trimming whitespace
// and dropping empties. Dependency specifiers like "pytest>=6.0,<7.0"
// contain commas, so line-oriented settings must never comma-split.
func SplitLines(value string) []string {
	var out []string
	for _, line := range strings.Split(value, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// splitTopLevel splits on commas that are not nested inside braces.
func splitTopLevel(value string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				out = append(out, value[start:i])
				start = i + 1
			}
		}
	}
	return append(out, value[start:])
}

// FilterFactors applies factor-conditional lines to a multi-line value for
// the environment named envName. A line of the form "factor: text" (or
// "f1-f2: text", "!factor: text") is kept, with the prefix stripped, only
// when the condition matches the environment's factors. Unconditional
// lines always survive.
func FilterFactors(value, envName string) string {
	factors := map[string]bool{}
	for _, factor := range factorsOf(envName) {
		factors[factor] = true
	}

	var kept []string
	for _, line := range strings.Split(value, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		cond, rest, ok := splitFactorCondition(trimmed)
		if !ok {
			kept = append(kept, trimmed)
			continue
		}
		if factorConditionMatches(cond, factors) {
			kept = append(kept, rest)
		}
	}
	return strings.Join(kept, "\n")
}

// splitFactorCondition recognizes a "cond: rest" prefix where cond is a
// hyphen/comma combination of factor names, optionally negated. Colons in
// ordinary text (URLs, drive letters, {env:...}) must not trigger: the
// condition part may only contain factor characters.
func splitFactorCondition(line string) (cond, rest string, ok bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	cond = line[:idx]
	for _, r := range cond {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == ',' || r == '!' || r == '_':
		default:
			return "", "", false
		}
	}
	return cond, strings.TrimSpace(line[idx+1:]), true
}

// factorConditionMatches evaluates a condition against the environment's
// factor set. Comma groups are OR; hyphen groups are AND; "!" negates a
// single factor.
func factorConditionMatches(cond string, factors map[string]bool) bool {
	for _, alternative := range strings.Split(cond, ",") {
		matched := true
		for _, factor := range strings.Split(alternative, "-") {
			factor = strings.TrimSpace(factor)
			if factor == "" {
				continue
			}
			if negated := strings.HasPrefix(factor, "!"); negated {
				if factors[factor[1:]] {
					matched = false
					break
				}
			} else if !factors[factor] {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

func dedupe(values []string) []string {
	seen := map[string]bool{}
	out := values[:0]
	for _, value := range values {
		if !seen[value] {
			seen[value] = true
			out = append(out, value)
		}
	}
	return out
}
