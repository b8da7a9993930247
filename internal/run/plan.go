// Where: internal/run/plan.go
// What: Environment selection and ordering.
// Why: depends edges fix execution order; selection stays explicit.
package run

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/toxa-dev/toxa/internal/config"
)

// SelectAll selects every declared environment ("-e ALL").
const SelectAll = "ALL"

// EnvSelectionVar overrides envlist when the -e flag is absent.
const EnvSelectionVar = "TOXAENV"

// Plan is the resolved, ordered set of environments to run.
type Plan struct {
	Envs []*config.Env
	// After maps an environment to the selected environments that must
	// complete before it starts (its selected depends closure, direct
	// edges only).
	After map[string][]string
}

// Select determines the environment names to run: the explicit flag value
// wins, then the TOXAENV variable, then the file's envlist.
func Select(file *config.File, flagValue, envVar string) ([]string, error) {
	source := strings.TrimSpace(flagValue)
	if source == "" {
		source = strings.TrimSpace(envVar)
	}
	if source == SelectAll {
		return file.DeclaredEnvs(), nil
	}
	if source != "" {
		names := config.ExpandList(source)
		for _, name := range names {
			if !file.HasEnv(name) {
				return nil, fmt.Errorf("unknown environment %q (available: %s)",
					name, strings.Join(file.DeclaredEnvs(), ", "))
			}
		}
		return names, nil
	}
	if len(file.EnvList) == 0 {
		return nil, fmt.Errorf("no environments selected: envlist is empty and no -e was given")
	}
	return file.EnvList, nil
}

// BuildPlan resolves every selected environment and orders the set
// topologically over the declared depends edges. Edges to declared but
// unselected environments only order; they never pull targets in. Ties
// keep selection order.
func BuildPlan(file *config.File, names []string, posArgs []string) (*Plan, error) {
	position := map[string]int{}
	envs := map[string]*config.Env{}
	for i, name := range names {
		if _, dup := envs[name]; dup {
			continue
		}
		env, err := file.Resolve(name, posArgs)
		if err != nil {
			return nil, err
		}
		position[name] = i
		envs[name] = env
	}

	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	for name := range envs {
		if err := g.AddVertex(name); err != nil {
			return nil, err
		}
	}

	after := map[string][]string{}
	for name, env := range envs {
		for _, dep := range env.Depends {
			if !file.HasEnv(dep) {
				return nil, fmt.Errorf("environment %q depends on undeclared environment %q", name, dep)
			}
			if _, selected := envs[dep]; !selected {
				continue
			}
			if err := g.AddEdge(dep, name); err != nil {
				if errors.Is(err, graph.ErrEdgeCreatesCycle) {
					return nil, fmt.Errorf("depends cycle between %q and %q", dep, name)
				}
				if !errors.Is(err, graph.ErrEdgeAlreadyExists) {
					return nil, err
				}
			}
			after[name] = append(after[name], dep)
		}
	}

	order, err := graph.StableTopologicalSort(g, func(a, b string) bool {
		return position[a] < position[b]
	})
	if err != nil {
		return nil, fmt.Errorf("order environments: %w", err)
	}

	plan := &Plan{After: after}
	for _, name := range order {
		plan.Envs = append(plan.Envs, envs[name])
	}
	return plan, nil
}
