package compiler

import (
	"cinderapi/internal/directive"
	"cinderapi/internal/validator"
)

// emitter collects directives in emission order and refuses a second
// directive for a (namespace, section, key) that already has one.
type emitter struct {
	directives []directive.ConfigDirective
	seen       map[string]bool
	err        error
}

func newEmitter() *emitter {
	return &emitter{seen: make(map[string]bool)}
}

// emit records d. After the first conflict every further call is a no-op and
// the conflict is reported by result.
func (e *emitter) emit(d directive.ConfigDirective) {
	if e.err != nil {
		return
	}
	id := d.ID()
	if e.seen[id] {
		e.err = validator.Conflict(string(d.Namespace), d.Section, d.Key)
		return
	}
	e.seen[id] = true
	e.directives = append(e.directives, d)
}

func (e *emitter) present(ns directive.Namespace, section, key, value string) {
	e.emit(directive.Present(ns, section, key, value))
}

func (e *emitter) absent(ns directive.Namespace, section, key string) {
	e.emit(directive.Absent(ns, section, key))
}

func (e *emitter) result() ([]directive.ConfigDirective, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.directives, nil
}
