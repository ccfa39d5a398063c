package resolver

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"cinderapi/internal/schema"
)

func TestResolve_EnvironmentWinsOverFile(t *testing.T) {
	s := schema.Default()

	fileValues := map[string]any{
		"bind_host":         "10.0.0.1",
		"keystone_password": "from-file",
	}
	environ := []string{
		"CINDER_BIND_HOST=192.168.1.3",
		"OTHER_VAR=ignored",
	}

	ps := Resolve(s, fileValues, environ)

	bind, ok := ps.Get("bind_host")
	if !ok {
		t.Fatal("missing bind_host in results")
	}
	if bind.Value != "192.168.1.3" {
		t.Errorf("expected env value 192.168.1.3, got %v", bind.Value)
	}
	if bind.Source != SourceEnv {
		t.Errorf("expected source env, got %q", bind.Source)
	}
	if bind.EnvVar != "CINDER_BIND_HOST" {
		t.Errorf("expected EnvVar CINDER_BIND_HOST, got %s", bind.EnvVar)
	}

	pw, _ := ps.Get("keystone_password")
	if !pw.Present || pw.Value != "from-file" || pw.Source != SourceFile {
		t.Errorf("expected keystone_password from file, got %+v", pw)
	}
}

func TestResolve_EveryDeclaredParameterIsReported(t *testing.T) {
	s := schema.Default()
	ps := Resolve(s, nil, nil)

	if len(ps.Values) != len(s.Order) {
		t.Fatalf("expected %d values, got %d", len(s.Order), len(ps.Values))
	}
	for _, name := range s.Order {
		rv, ok := ps.Get(name)
		if !ok {
			t.Errorf("missing %s", name)
			continue
		}
		if rv.Present {
			t.Errorf("%s: expected not present", name)
		}
	}
}

func TestResolve_EmptyEnvValueIsPresent(t *testing.T) {
	ps := Resolve(schema.Default(), nil, []string{"CINDER_KEYSTONE_AUTH_ADMIN_PREFIX="})

	rv, _ := ps.Get("keystone_auth_admin_prefix")
	if !rv.Present {
		t.Error("expected Present to be true for set but empty env var")
	}
	if rv.Value != "" {
		t.Errorf("expected empty value, got %v", rv.Value)
	}
}

func TestResolve_NilFileValueIsUnset(t *testing.T) {
	ps := Resolve(schema.Default(), map[string]any{"os_region_name": nil}, nil)

	rv, _ := ps.Get("os_region_name")
	if rv.Present {
		t.Error("expected nil file value to be treated as unset")
	}
}

func TestResolve_ValueWithEquals(t *testing.T) {
	ps := Resolve(schema.Default(), nil, []string{"CINDER_KEYSTONE_PASSWORD=pass=word"})

	rv, _ := ps.Get("keystone_password")
	if rv.Value != "pass=word" {
		t.Errorf("expected value with = preserved, got %v", rv.Value)
	}
}

func TestResolve_UnknownFileKeysAreSorted(t *testing.T) {
	fileValues := map[string]any{
		"zeta":      1,
		"alpha":     "x",
		"bind_host": "0.0.0.0",
	}
	ps := Resolve(schema.Default(), fileValues, nil)

	want := []string{"alpha", "zeta"}
	if !reflect.DeepEqual(ps.Unknown, want) {
		t.Errorf("expected unknown %v, got %v", want, ps.Unknown)
	}
}

func TestParseFile_YAMLAndTOMLAgree(t *testing.T) {
	yamlDoc := []byte(`
keystone_password: foo
bind_host: 192.168.1.3
service_workers: 4
validate: true
validation_options:
  cinder-api:
    command: my-script
`)
	tomlDoc := []byte(`
keystone_password = "foo"
bind_host = "192.168.1.3"
service_workers = 4
validate = true

[validation_options.cinder-api]
command = "my-script"
`)

	fromYAML, err := ParseFile(yamlDoc, FormatYAML)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	fromTOML, err := ParseFile(tomlDoc, FormatTOML)
	if err != nil {
		t.Fatalf("toml: %v", err)
	}

	for _, key := range []string{"keystone_password", "bind_host", "validate"} {
		if fromYAML[key] != fromTOML[key] {
			t.Errorf("%s: yaml %v != toml %v", key, fromYAML[key], fromTOML[key])
		}
	}

	// YAML decodes integers as int, TOML as int64.
	if fromYAML["service_workers"] != 4 {
		t.Errorf("yaml service_workers: got %#v", fromYAML["service_workers"])
	}
	if fromTOML["service_workers"] != int64(4) {
		t.Errorf("toml service_workers: got %#v", fromTOML["service_workers"])
	}

	opts, ok := fromTOML["validation_options"].(map[string]any)
	if !ok {
		t.Fatalf("toml validation_options: got %T", fromTOML["validation_options"])
	}
	if _, ok := opts["cinder-api"].(map[string]any); !ok {
		t.Errorf("toml nested table: got %T", opts["cinder-api"])
	}
}

func TestParseFile_InvalidContent(t *testing.T) {
	if _, err := ParseFile([]byte("key: [unclosed"), FormatYAML); err == nil {
		t.Error("expected YAML error")
	}
	if _, err := ParseFile([]byte("key = "), FormatTOML); err == nil {
		t.Error("expected TOML error")
	}
	if _, err := ParseFile([]byte(""), Format("ini")); err == nil {
		t.Error("expected unsupported format error")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "params.toml")
	if err := os.WriteFile(path, []byte(`bind_host = "10.1.1.1"`), 0644); err != nil {
		t.Fatal(err)
	}
	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if values["bind_host"] != "10.1.1.1" {
		t.Errorf("got %v", values["bind_host"])
	}

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestFormatFor(t *testing.T) {
	tests := map[string]Format{
		"params.toml": FormatTOML,
		"PARAMS.TOML": FormatTOML,
		"params.yaml": FormatYAML,
		"params.yml":  FormatYAML,
		"params.json": FormatYAML,
		"params":      FormatYAML,
	}
	for path, want := range tests {
		if got := FormatFor(path); got != want {
			t.Errorf("FormatFor(%q) = %s, want %s", path, got, want)
		}
	}
}
