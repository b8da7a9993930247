// Where: internal/config/inifile.go
// What: INI config loader.
// Why: toxa.ini / tox.ini is the primary configuration surface.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
)

const (
	globalSection    = "toxa"
	legacySection    = "tox"
	baseEnvSection   = "testenv"
	envSectionPrefix = "testenv:"
	legacyAllowlist  = "whitelist_externals"
	currentAllowlist = "allowlist_externals"
)

// ini.DefaultSection is a variable in go-ini, not a constant.
var defaultIniSection = ini.DefaultSection

// LoadINI parses an ini-format configuration file into a File.
func LoadINI(path string) (*File, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseINI(path, payload)
}

func parseINI(path string, payload []byte) (*File, error) {
	source, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
		SpaceBeforeInlineComment:   true,
		KeyValueDelimiters:         "=",
	}, payload)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	file := &File{
		Dir:      filepath.Dir(abs),
		Path:     abs,
		Base:     map[string]string{},
		Sections: map[string]map[string]string{},
		Extra:    map[string]map[string]string{},
	}

	for _, section := range source.Sections() {
		name := section.Name()
		switch {
		case name == defaultIniSection:
			if len(section.Keys()) > 0 {
				file.warnf("ignoring %d key(s) outside any section", len(section.Keys()))
			}
		case name == globalSection || name == legacySection:
			loadGlobalSection(file, section)
		case name == baseEnvSection:
			file.Base = sectionMap(file, name, section)
		case strings.HasPrefix(name, envSectionPrefix):
			file.Sections[strings.TrimPrefix(name, envSectionPrefix)] = sectionMap(file, name, section)
		default:
			file.Extra[name] = sectionMap(file, "", section)
		}
	}

	return file, nil
}

func loadGlobalSection(file *File, section *ini.Section) {
	for _, key := range section.Keys() {
		value := key.Value()
		switch key.Name() {
		case "envlist":
			file.EnvList = ExpandList(value)
		case "skipsdist":
			file.SkipSDist = parseBool(value)
		case "isolated_build":
			file.IsolatedBuild = parseBool(value)
		case "requires":
			// Requirement specifiers may contain commas.
			file.Requires = SplitLines(strings.TrimSpace(value))
		case "minversion", "min_version":
			// Accepted for tox compatibility; no constraint to enforce.
		default:
			file.warnf("unknown key %q in [%s]", key.Name(), section.Name())
		}
	}
}

// sectionMap converts an ini section into a raw key/value map. For testenv
// sections (envSection != "") unknown keys warn and the legacy allowlist
// spelling is folded into the current one.
func sectionMap(file *File, envSection string, section *ini.Section) map[string]string {
	out := map[string]string{}
	for _, key := range section.Keys() {
		name := key.Name()
		if envSection != "" {
			if !knownEnvKeys[name] {
				file.warnf("unknown key %q in [%s]", name, envSection)
			}
			if name == legacyAllowlist {
				file.warnf("[%s] uses legacy %q; prefer %q", envSection, legacyAllowlist, currentAllowlist)
				name = currentAllowlist
			}
		}
		// Python-style multiline values keep a leading newline; strip
		// the outer whitespace, inner lines stay intact.
		out[name] = strings.TrimSpace(key.Value())
	}
	return out
}

// parseBool accepts the spellings the ini dialect tolerates.
func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}
