package schema

import (
	"regexp"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"gopkg.in/yaml.v3"
)

func TestDefault_IsConsistent(t *testing.T) {
	if err := Default().Check(); err != nil {
		t.Fatalf("default catalog is inconsistent: %v", err)
	}
}

func TestDefault_RequiredPasswordIsSensitive(t *testing.T) {
	p, ok := Default().Params[ParamKeystonePassword]
	if !ok {
		t.Fatal("missing keystone_password declaration")
	}
	if !p.Required {
		t.Error("expected keystone_password to be required")
	}
	if !p.Sensitive {
		t.Error("expected keystone_password to be sensitive")
	}
	if p.Default != nil {
		t.Errorf("expected no default for keystone_password, got %v", p.Default)
	}
}

func TestDefault_OptionalParamsHaveNoDefault(t *testing.T) {
	s := Default()
	for _, name := range []string{
		ParamKeystoneAuthURI,
		ParamServiceWorkers,
		ParamDefaultVolumeType,
		ParamOSRegionName,
		ParamRatelimits,
	} {
		p, ok := s.Params[name]
		if !ok {
			t.Fatalf("missing declaration for %s", name)
		}
		if p.Default != nil {
			t.Errorf("%s: expected no default, got %v", name, p.Default)
		}
	}
}

func TestCheck_RejectsBrokenCatalogs(t *testing.T) {
	tests := []struct {
		name   string
		param  Param
		errSub string
	}{
		{
			name:   "unknown type",
			param:  Param{Name: "x", Type: "float", Constraint: Constraint{Kind: Unconstrained}},
			errSub: "unknown type",
		},
		{
			name:   "bad regex",
			param:  Param{Name: "x", Type: TypeString, Constraint: Constraint{Kind: ConstraintRegex, Pattern: "("}},
			errSub: "invalid pattern",
		},
		{
			name:   "enum without values",
			param:  Param{Name: "x", Type: TypeEnum, Constraint: Constraint{Kind: ConstraintEnum}},
			errSub: "requires values",
		},
		{
			name:   "inverted range",
			param:  Param{Name: "x", Type: TypeInt, Constraint: Constraint{Kind: ConstraintRange, Min: 10, Max: 1}},
			errSub: "exceeds max",
		},
		{
			name:   "enum type with regex constraint",
			param:  Param{Name: "x", Type: TypeEnum, Constraint: Constraint{Kind: ConstraintRegex, Pattern: "a"}},
			errSub: "requires an enum constraint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Schema{Params: map[string]Param{"x": tt.param}, Order: []string{"x"}}
			err := s.Check()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("expected error containing %q, got %q", tt.errSub, err.Error())
			}
		})
	}
}

func TestToYAML_PreservesOrderAndHidesSecrets(t *testing.T) {
	s := Default()
	data, err := s.ToYAML()
	if err != nil {
		t.Fatalf("ToYAML failed: %v", err)
	}

	var sf schemaFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		t.Fatalf("dump is not valid YAML: %v", err)
	}

	if len(sf.Parameters) != len(s.Order) {
		t.Fatalf("expected %d parameters, got %d", len(s.Order), len(sf.Parameters))
	}
	for i, entry := range sf.Parameters {
		if entry.Name != s.Order[i] {
			t.Errorf("position %d: expected %s, got %s", i, s.Order[i], entry.Name)
		}
		if entry.Name == ParamKeystonePassword && entry.Default != nil {
			t.Error("sensitive parameter default must not be dumped")
		}
	}
	if !strings.Contains(string(data), AdminPrefixPattern) {
		t.Error("expected admin prefix pattern in dump")
	}
}

func TestToYAML_DumpsFalsyDefaults(t *testing.T) {
	data, err := Default().ToYAML()
	if err != nil {
		t.Fatalf("ToYAML failed: %v", err)
	}

	var sf schemaFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		t.Fatalf("dump is not valid YAML: %v", err)
	}

	defaults := make(map[string]*defaultValue)
	for _, entry := range sf.Parameters {
		defaults[entry.Name] = entry.Default
	}

	tests := []struct {
		name string
		want any
	}{
		{ParamValidate, false},
		{ParamKeystoneAuthAdminPrefix, ""},
		{ParamKeystoneAuthPort, 35357},
	}
	for _, tt := range tests {
		d := defaults[tt.name]
		if d == nil {
			t.Errorf("%s: default missing from dump", tt.name)
			continue
		}
		if d.v != tt.want {
			t.Errorf("%s: expected default %#v, got %#v", tt.name, tt.want, d.v)
		}
	}

	for _, name := range []string{ParamKeystoneAuthURI, ParamServiceWorkers, ParamKeystonePassword} {
		if defaults[name] != nil {
			t.Errorf("%s: expected no default in dump, got %#v", name, defaults[name].v)
		}
	}
}

// The admin prefix pattern accepts exactly the prefixes built from
// "/segment" components.
func TestAdminPrefixPattern_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	re := regexp.MustCompile(AdminPrefixPattern)
	genSegment := gen.RegexMatch(`[a-z0-9_-]{1,8}`)

	properties.Property("joined segments with leading slashes match", prop.ForAll(
		func(segments []string) bool {
			prefix := ""
			for _, seg := range segments {
				prefix += "/" + seg
			}
			return re.MatchString(prefix)
		},
		gen.SliceOfN(3, genSegment),
	))

	properties.Property("trailing slash never matches", prop.ForAll(
		func(segments []string) bool {
			prefix := ""
			for _, seg := range segments {
				prefix += "/" + seg
			}
			return !re.MatchString(prefix + "/")
		},
		gen.SliceOfN(3, genSegment),
	))

	properties.Property("missing leading slash never matches", prop.ForAll(
		func(seg string) bool {
			return !re.MatchString(seg)
		},
		genSegment,
	))

	properties.TestingRun(t)
}
