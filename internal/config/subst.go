// Where: internal/config/subst.go
// What: Curly-brace value substitution.
// Why: Config values reference run state ({envname}, {posargs}, {env:VAR}).
package config

import (
	"fmt"
	"os"
	"strings"
)

// SubstContext carries everything a substitution may reference.
type SubstContext struct {
	EnvName   string
	ToxaDir   string // directory of the config file
	EnvDir    string // per-environment work directory
	EnvTmpDir string
	PosArgs   []string
	File      *File

	// LookupEnv defaults to os.LookupEnv; overridable in tests.
	LookupEnv func(string) (string, bool)

	// visiting guards {[section]key} reference cycles.
	visiting map[string]bool
}

func (c *SubstContext) lookupEnv(key string) (string, bool) {
	if c.LookupEnv != nil {
		return c.LookupEnv(key)
	}
	return os.LookupEnv(key)
}

// Substitute replaces every {...} reference in value. \{ and \} escape
// literal braces. Unknown names are errors so misspellings fail loudly
// instead of leaking braces into subprocess argv.
func (c *SubstContext) Substitute(value string) (string, error) {
	var out strings.Builder
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if ch == '\\' && i+1 < len(value) && (value[i+1] == '{' || value[i+1] == '}') {
			out.WriteByte(value[i+1])
			i++
			continue
		}
		if ch != '{' {
			out.WriteByte(ch)
			continue
		}
		end := matchingBrace(value, i)
		if end < 0 {
			return "", fmt.Errorf("unbalanced '{' in %q", value)
		}
		replaced, err := c.resolveRef(value[i+1 : end])
		if err != nil {
			return "", err
		}
		out.WriteString(replaced)
		i = end
	}
	return out.String(), nil
}

// SubstituteList substitutes every element, dropping elements that
// resolve to an empty string (an empty {posargs} must not leave an empty
// argv entry behind).
func (c *SubstContext) SubstituteList(values []string) ([]string, error) {
	var out []string
	for _, value := range values {
		replaced, err := c.Substitute(value)
		if err != nil {
			return nil, err
		}
		if replaced != "" {
			out = append(out, replaced)
		}
	}
	return out, nil
}

func (c *SubstContext) resolveRef(ref string) (string, error) {
	switch ref {
	case "envname":
		return c.EnvName, nil
	case "toxinidir", "toxadir":
		return c.ToxaDir, nil
	case "envdir":
		return c.EnvDir, nil
	case "envtmpdir":
		return c.EnvTmpDir, nil
	case "posargs":
		return strings.Join(c.PosArgs, " "), nil
	case "/":
		return string(os.PathSeparator), nil
	}

	if rest, ok := strings.CutPrefix(ref, "posargs:"); ok {
		if len(c.PosArgs) > 0 {
			return strings.Join(c.PosArgs, " "), nil
		}
		return c.Substitute(rest)
	}

	if rest, ok := strings.CutPrefix(ref, "env:"); ok {
		name, fallback, hasFallback := strings.Cut(rest, ":")
		if value, found := c.lookupEnv(name); found {
			return value, nil
		}
		if hasFallback {
			return c.Substitute(fallback)
		}
		return "", fmt.Errorf("environment variable %q is not set and has no default", name)
	}

	if strings.HasPrefix(ref, "[") {
		return c.resolveSectionRef(ref)
	}

	return "", fmt.Errorf("unknown substitution {%s} in environment %q", ref, c.EnvName)
}

// resolveSectionRef handles {[section]key} cross references, including
// references into other testenv sections. The referenced value is itself
// substituted, with cycle detection.
func (c *SubstContext) resolveSectionRef(ref string) (string, error) {
	closing := strings.IndexByte(ref, ']')
	if closing < 0 {
		return "", fmt.Errorf("malformed section reference {%s}", ref)
	}
	section := ref[1:closing]
	key := ref[closing+1:]
	if key == "" {
		return "", fmt.Errorf("section reference {%s} is missing a key", ref)
	}

	guard := section + "]" + key
	if c.visiting == nil {
		c.visiting = map[string]bool{}
	}
	if c.visiting[guard] {
		return "", fmt.Errorf("substitution cycle through {[%s]%s}", section, key)
	}
	c.visiting[guard] = true
	defer delete(c.visiting, guard)

	raw, ok := c.sectionValue(section, key)
	if !ok {
		return "", fmt.Errorf("no value for {[%s]%s}", section, key)
	}
	return c.Substitute(FilterFactors(raw, c.EnvName))
}

func (c *SubstContext) sectionValue(section, key string) (string, bool) {
	if c.File == nil {
		return "", false
	}
	if section == "testenv" {
		value, ok := c.File.Base[key]
		return value, ok
	}
	if name, ok := strings.CutPrefix(section, "testenv:"); ok {
		if sec, found := c.File.Sections[name]; found {
			if value, ok := sec[key]; ok {
				return value, true
			}
		}
		// Fall through to the base section like inheritance does.
		value, ok := c.File.Base[key]
		return value, ok
	}
	if sec, found := c.File.Extra[section]; found {
		value, ok := sec[key]
		return value, ok
	}
	return "", false
}

func matchingBrace(value string, open int) int {
	depth := 0
	for i := open; i < len(value); i++ {
		switch value[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
