// Where: internal/run/envvars.go
// What: Process environment assembly.
// Why: passenv filters the host environment, setenv layers on top.
package run

import (
	"path"
	"sort"
	"strings"

	"github.com/toxa-dev/toxa/internal/config"
)

// Variables every environment receives regardless of passenv. PATH must
// survive or nothing resolves; the rest keep subprocess tooling sane.
var alwaysPassed = []string{
	"PATH", "HOME", "TMPDIR", "TEMP", "TMP",
	"LANG", "LANGUAGE", "LC_ALL", "LC_CTYPE",
	"PIP_INDEX_URL", "REQUESTS_CA_BUNDLE", "SSL_CERT_FILE",
	"http_proxy", "https_proxy", "no_proxy",
}

// BuildEnviron produces the subprocess environment for env: the host
// variables admitted by the builtin list and passenv globs, then setenv
// overrides, then the runner's own variables. base is os.Environ()-shaped.
func BuildEnviron(env *config.Env, base []string, envDir, workDir string) []string {
	admitted := map[string]string{}
	for _, entry := range base {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if passes(key, env.PassEnv) {
			admitted[key] = value
		}
	}

	for key, value := range env.SetEnv {
		admitted[key] = value
	}

	admitted["TOXA_ENV_NAME"] = env.Name
	admitted["TOXA_ENV_DIR"] = envDir
	admitted["TOXA_WORK_DIR"] = workDir

	keys := make([]string, 0, len(admitted))
	for key := range admitted {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, key+"="+admitted[key])
	}
	return out
}

func passes(key string, globs []string) bool {
	for _, always := range alwaysPassed {
		if key == always {
			return true
		}
	}
	for _, glob := range globs {
		if glob == "*" {
			return true
		}
		if ok, err := path.Match(glob, key); err == nil && ok {
			return true
		}
	}
	return false
}
