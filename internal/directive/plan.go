package directive

import (
	"fmt"
)

// Plan is the complete output of one compilation
type Plan struct {
	Directives []ConfigDirective `json:"directives" yaml:"directives"`
	Service    *ServiceState     `json:"service,omitempty" yaml:"service,omitempty"`
	Migration  *Migration        `json:"migration,omitempty" yaml:"migration,omitempty"`
	Validation *Validation       `json:"validation,omitempty" yaml:"validation,omitempty"`
}

// StepKind names what a plan step applies
type StepKind string

const (
	StepConfig     StepKind = "config"
	StepService    StepKind = "service"
	StepMigration  StepKind = "migration"
	StepValidation StepKind = "validation"
)

// Step is one node of the plan's dependency graph
type Step struct {
	ID        string
	Kind      StepKind
	DependsOn []string
}

// Find returns the directive addressing ns/section/key.
func (p Plan) Find(ns Namespace, section, key string) (ConfigDirective, bool) {
	id := ConfigID(ns, section, key)
	for _, d := range p.Directives {
		if d.ID() == id {
			return d, true
		}
	}
	return ConfigDirective{}, false
}

// ConfigIDs returns the IDs of all config directives in emission order.
func (p Plan) ConfigIDs() []string {
	ids := make([]string, 0, len(p.Directives))
	for _, d := range p.Directives {
		ids = append(ids, d.ID())
	}
	return ids
}

// Steps lists every directive of the plan in emission order: config
// directives, then migration, service and validation.
func (p Plan) Steps() []Step {
	steps := make([]Step, 0, len(p.Directives)+3)
	for _, d := range p.Directives {
		steps = append(steps, Step{ID: d.ID(), Kind: StepConfig, DependsOn: d.DependsOn})
	}
	if p.Migration != nil {
		steps = append(steps, Step{ID: p.Migration.ID(), Kind: StepMigration, DependsOn: p.Migration.DependsOn})
	}
	if p.Service != nil {
		steps = append(steps, Step{ID: p.Service.ID(), Kind: StepService, DependsOn: p.Service.DependsOn})
	}
	if p.Validation != nil {
		steps = append(steps, Step{ID: p.Validation.ID(), Kind: StepValidation, DependsOn: p.Validation.DependsOn})
	}
	return steps
}

// Ordered returns the steps in an order where every step comes after all
// of its dependencies. Among steps that are ready at the same time the
// emission order is kept, so the result is deterministic.
func (p Plan) Ordered() ([]Step, error) {
	steps := p.Steps()

	index := make(map[string]int, len(steps))
	for i, s := range steps {
		if _, dup := index[s.ID]; dup {
			return nil, fmt.Errorf("duplicate step '%s'", s.ID)
		}
		index[s.ID] = i
	}

	pending := make([]int, len(steps))
	dependents := make([][]int, len(steps))
	for i, s := range steps {
		for _, dep := range s.DependsOn {
			j, ok := index[dep]
			if !ok {
				return nil, fmt.Errorf("step '%s' depends on unknown step '%s'", s.ID, dep)
			}
			pending[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	ordered := make([]Step, 0, len(steps))
	done := make([]bool, len(steps))
	for len(ordered) < len(steps) {
		// Pick the first ready step in emission order.
		next := -1
		for i := range steps {
			if !done[i] && pending[i] == 0 {
				next = i
				break
			}
		}
		if next == -1 {
			return nil, fmt.Errorf("dependency cycle among %d step(s)", len(steps)-len(ordered))
		}

		done[next] = true
		ordered = append(ordered, steps[next])
		for _, j := range dependents[next] {
			pending[j]--
		}
	}

	return ordered, nil
}

// States maps every step ID to a display form of its desired state.
// Sensitive values are redacted, so the result is safe to log or persist.
func (p Plan) States() map[string]string {
	states := make(map[string]string, len(p.Directives)+3)
	for _, d := range p.Directives {
		states[d.ID()] = d.State()
	}
	if p.Migration != nil {
		states[p.Migration.ID()] = "refresh_only"
		if !p.Migration.RefreshOnly {
			states[p.Migration.ID()] = "always"
		}
	}
	if p.Service != nil {
		states[p.Service.ID()] = p.Service.Ensure()
	}
	if p.Validation != nil {
		states[p.Validation.ID()] = fmt.Sprintf("%s (tries=%d, sleep=%ds)",
			p.Validation.DisplayCommand(), p.Validation.Retries, p.Validation.RetryIntervalSeconds)
	}
	return states
}
