package schema

// Parameter names accepted by the volume API compiler.
const (
	ParamKeystonePassword        = "keystone_password"
	ParamKeystoneEnabled         = "keystone_enabled"
	ParamKeystoneTenant          = "keystone_tenant"
	ParamKeystoneUser            = "keystone_user"
	ParamKeystoneAuthHost        = "keystone_auth_host"
	ParamKeystoneAuthPort        = "keystone_auth_port"
	ParamKeystoneAuthProtocol    = "keystone_auth_protocol"
	ParamKeystoneAuthAdminPrefix = "keystone_auth_admin_prefix"
	ParamKeystoneAuthURI         = "keystone_auth_uri"
	ParamServicePort             = "service_port"
	ParamBindHost                = "bind_host"
	ParamServiceWorkers          = "service_workers"
	ParamDefaultVolumeType       = "default_volume_type"
	ParamOSRegionName            = "os_region_name"
	ParamRatelimits              = "ratelimits"
	ParamRatelimitsFactory       = "ratelimits_factory"
	ParamEnabled                 = "enabled"
	ParamManageService           = "manage_service"
	ParamValidate                = "validate"
	ParamValidationOptions       = "validation_options"
)

// AdminPrefixPattern accepts an empty prefix or one or more "/segment"
// components with no trailing slash.
const AdminPrefixPattern = `^(/[a-z0-9_-]+)*$`

const (
	hostPattern = `^[A-Za-z0-9.:\[\]_-]+$`
	uriPattern  = `^https?://\S+$`
)

var (
	portRange = Constraint{Kind: ConstraintRange, Min: 1, Max: 65535}
	nonEmpty  = Constraint{Kind: ConstraintNonEmptyIfPresent}
	free      = Constraint{Kind: Unconstrained}
)

// Default returns the parameter catalog of the volume API service.
func Default() Schema {
	params := []Param{
		{
			Name:        ParamKeystonePassword,
			Type:        TypeString,
			Required:    true,
			Sensitive:   true,
			Constraint:  nonEmpty,
			Description: "password of the service user in the identity service",
		},
		{
			Name:        ParamKeystoneEnabled,
			Type:        TypeBool,
			Default:     true,
			Constraint:  free,
			Description: "authenticate API requests against the identity service",
		},
		{
			Name:        ParamKeystoneTenant,
			Type:        TypeString,
			Default:     "services",
			Constraint:  nonEmpty,
			Description: "tenant of the service user",
		},
		{
			Name:        ParamKeystoneUser,
			Type:        TypeString,
			Default:     "cinder",
			Constraint:  nonEmpty,
			Description: "name of the service user",
		},
		{
			Name:        ParamKeystoneAuthHost,
			Type:        TypeString,
			Default:     "localhost",
			Constraint:  Constraint{Kind: ConstraintRegex, Pattern: hostPattern},
			Description: "identity service host",
		},
		{
			Name:        ParamKeystoneAuthPort,
			Type:        TypeInt,
			Default:     35357,
			Constraint:  portRange,
			Description: "identity service admin port",
		},
		{
			Name:        ParamKeystoneAuthProtocol,
			Type:        TypeEnum,
			Default:     "http",
			Constraint:  Constraint{Kind: ConstraintEnum, Values: []string{"http", "https"}},
			Description: "protocol used to reach the identity service",
		},
		{
			Name:        ParamKeystoneAuthAdminPrefix,
			Type:        TypeString,
			Default:     "",
			Constraint:  Constraint{Kind: ConstraintRegex, Pattern: AdminPrefixPattern},
			Description: "path prefix of the identity admin endpoint",
		},
		{
			Name:        ParamKeystoneAuthURI,
			Type:        TypeString,
			Constraint:  Constraint{Kind: ConstraintRegex, Pattern: uriPattern},
			Description: "public identity endpoint, used verbatim when set",
		},
		{
			Name:        ParamServicePort,
			Type:        TypeInt,
			Default:     5000,
			Constraint:  portRange,
			Description: "identity service public port",
		},
		{
			Name:        ParamBindHost,
			Type:        TypeString,
			Default:     "0.0.0.0",
			Constraint:  Constraint{Kind: ConstraintRegex, Pattern: hostPattern},
			Description: "address the API listens on",
		},
		{
			Name:        ParamServiceWorkers,
			Type:        TypeInt,
			Constraint:  Constraint{Kind: ConstraintRange, Min: 1, Max: 1024},
			Description: "number of API workers; defaults to the processor count",
		},
		{
			Name:        ParamDefaultVolumeType,
			Type:        TypeString,
			Constraint:  nonEmpty,
			Description: "volume type used when a request names none",
		},
		{
			Name:        ParamOSRegionName,
			Type:        TypeString,
			Constraint:  nonEmpty,
			Description: "region used when talking to the compute service",
		},
		{
			Name:        ParamRatelimits,
			Type:        TypeString,
			Constraint:  nonEmpty,
			Description: "rate limit specification passed to the ratelimit filter",
		},
		{
			Name:        ParamRatelimitsFactory,
			Type:        TypeString,
			Default:     "cinder.api.v1.limits:RateLimitingMiddleware.factory",
			Constraint:  nonEmpty,
			Description: "paste factory of the ratelimit filter",
		},
		{
			Name:        ParamEnabled,
			Type:        TypeBool,
			Default:     true,
			Constraint:  free,
			Description: "desired state of the API service is running",
		},
		{
			Name:        ParamManageService,
			Type:        TypeBool,
			Default:     true,
			Constraint:  free,
			Description: "manage the lifecycle of the API service",
		},
		{
			Name:        ParamValidate,
			Type:        TypeBool,
			Default:     false,
			Constraint:  free,
			Description: "validate the service after convergence",
		},
		{
			Name:        ParamValidationOptions,
			Type:        TypeMap,
			Default:     map[string]any{},
			Constraint:  free,
			Description: "per-service validation overrides, e.g. {cinder-api: {command: ...}}; the environment variable takes the same YAML or JSON text",
		},
	}

	s := Schema{
		Params: make(map[string]Param, len(params)),
		Order:  make([]string, 0, len(params)),
	}
	for _, p := range params {
		s.Params[p.Name] = p
		s.Order = append(s.Order, p.Name)
	}
	return s
}
