// Package compiler turns a validated parameter set into the plan consumed by
// the convergence applier.
package compiler

import (
	"strconv"

	"cinderapi/internal/directive"
	"cinderapi/internal/resolver"
	"cinderapi/internal/schema"
	"cinderapi/internal/service"
	"cinderapi/internal/validation"
	"cinderapi/internal/validator"
)

// Sections addressed by the compiler.
const (
	SectionDefault   = "DEFAULT"
	SectionAuthtoken = "filter:authtoken"
	SectionRatelimit = "filter:ratelimit"
)

// legacyAuthKeys predate identity_uri and are always cleared so a stale
// value can never take precedence over it.
var legacyAuthKeys = []string{"auth_protocol", "auth_host", "auth_port", "auth_admin_prefix"}

// Facts are host properties supplied by the caller.
type Facts struct {
	ProcessorCount int
}

// Compile validates ps against s and compiles the result. Nothing is
// produced when validation fails.
func Compile(s schema.Schema, ps resolver.ParameterSet, facts Facts) (directive.Plan, error) {
	params, err := validator.Validate(s, ps)
	if err != nil {
		return directive.Plan{}, err
	}
	return CompilePlan(params, facts)
}

// CompilePlan builds the full plan: config directives, then the migration
// gate, the service lifecycle and the validation command, each depending on
// everything that must be applied before it.
func CompilePlan(p validator.Params, facts Facts) (directive.Plan, error) {
	directives, err := Directives(p, facts)
	if err != nil {
		return directive.Plan{}, err
	}

	plan := directive.Plan{Directives: directives}
	configIDs := plan.ConfigIDs()
	enabled := p.Bool(schema.ParamEnabled)

	after := configIDs
	plan.Migration = service.MigrationGate(enabled, after)
	if plan.Migration != nil {
		after = append(append([]string(nil), configIDs...), plan.Migration.ID())
	}

	plan.Service = service.Resolve(enabled, p.Bool(schema.ParamManageService), after)
	if plan.Service != nil {
		after = append(append([]string(nil), after...), plan.Service.ID())
	}

	plan.Validation = validation.Build(
		p.Bool(schema.ParamValidate),
		plan.Service,
		p.Map(schema.ParamValidationOptions),
		validation.Credentials{
			AuthURL:  authURI(p),
			Tenant:   p.String(schema.ParamKeystoneTenant),
			User:     p.String(schema.ParamKeystoneUser),
			Password: p.String(schema.ParamKeystonePassword),
		},
		after,
	)

	return plan, nil
}

// Directives compiles the config directives of both namespaces in a fixed
// order. It fails only if two rules target the same key.
func Directives(p validator.Params, facts Facts) ([]directive.ConfigDirective, error) {
	workers, err := workerCount(p, facts)
	if err != nil {
		return nil, err
	}

	e := newEmitter()
	mainNS := directive.NamespaceMain
	authNS := directive.NamespaceAuthFilter
	keystone := p.Bool(schema.ParamKeystoneEnabled)

	if keystone {
		e.present(mainNS, SectionDefault, "auth_strategy", "keystone")
	} else {
		e.present(mainNS, SectionDefault, "auth_strategy", "noauth")
	}
	e.present(mainNS, SectionDefault, "osapi_volume_listen", p.String(schema.ParamBindHost))
	e.present(mainNS, SectionDefault, "osapi_volume_workers", strconv.Itoa(workers))

	if p.IsSet(schema.ParamDefaultVolumeType) {
		e.present(mainNS, SectionDefault, "default_volume_type", p.String(schema.ParamDefaultVolumeType))
	} else {
		e.absent(mainNS, SectionDefault, "default_volume_type")
	}

	// Left alone when unset; the region may be owned by another tool.
	if p.IsSet(schema.ParamOSRegionName) {
		e.present(mainNS, SectionDefault, "os_region_name", p.String(schema.ParamOSRegionName))
	}

	if keystone {
		e.present(authNS, SectionAuthtoken, "service_protocol", p.String(schema.ParamKeystoneAuthProtocol))
		e.present(authNS, SectionAuthtoken, "service_host", p.String(schema.ParamKeystoneAuthHost))
		e.present(authNS, SectionAuthtoken, "service_port", strconv.Itoa(p.Int(schema.ParamServicePort)))
		e.present(authNS, SectionAuthtoken, "identity_uri", identityURI(p))
		e.present(authNS, SectionAuthtoken, "auth_uri", authURI(p))
		e.present(authNS, SectionAuthtoken, "admin_tenant_name", p.String(schema.ParamKeystoneTenant))
		e.present(authNS, SectionAuthtoken, "admin_user", p.String(schema.ParamKeystoneUser))
		e.emit(directive.Present(authNS, SectionAuthtoken, "admin_password", p.String(schema.ParamKeystonePassword)).Secret())
	}

	for _, key := range legacyAuthKeys {
		e.absent(authNS, SectionAuthtoken, key)
	}

	if p.IsSet(schema.ParamRatelimits) {
		e.present(authNS, SectionRatelimit, "paste.filter_factory", p.String(schema.ParamRatelimitsFactory))
		e.present(authNS, SectionRatelimit, "limits", p.String(schema.ParamRatelimits))
	}

	return e.result()
}

// workerCount prefers the explicit parameter over the processor count fact.
func workerCount(p validator.Params, facts Facts) (int, error) {
	if p.IsSet(schema.ParamServiceWorkers) {
		return p.Int(schema.ParamServiceWorkers), nil
	}
	if facts.ProcessorCount < 1 {
		return 0, &validator.ValidationError{
			Kind:    validator.KindPatternMismatch,
			Field:   "processorcount",
			Value:   strconv.Itoa(facts.ProcessorCount),
			Pattern: "a positive integer",
		}
	}
	return facts.ProcessorCount, nil
}

// identityURI is scheme://host:port followed by the admin prefix, which
// validation has already restricted to "" or "/segment" components.
func identityURI(p validator.Params) string {
	return endpoint(p, p.Int(schema.ParamKeystoneAuthPort)) + p.String(schema.ParamKeystoneAuthAdminPrefix)
}

// authURI is the explicit override verbatim, or the public endpoint on the
// identity host.
func authURI(p validator.Params) string {
	if p.IsSet(schema.ParamKeystoneAuthURI) {
		return p.String(schema.ParamKeystoneAuthURI)
	}
	return endpoint(p, p.Int(schema.ParamServicePort)) + "/"
}

func endpoint(p validator.Params, port int) string {
	return p.String(schema.ParamKeystoneAuthProtocol) + "://" + p.String(schema.ParamKeystoneAuthHost) + ":" + strconv.Itoa(port)
}
