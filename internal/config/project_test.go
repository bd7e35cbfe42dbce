package config

import (
	"strings"
	"testing"
)

func TestParseProject(t *testing.T) {
	data := []byte(`
name: geometry
target: js
env:
  FEATURE_VEC: "1"
bind:
  - pkg: strconv
    symbol: Itoa
    as: itoa
  - pkg: strings
    symbol: Contains
    shape: infix
`)
	p, err := ParseProject(data, "lume.yaml")
	if err != nil {
		t.Fatalf("ParseProject failed: %v", err)
	}
	if p.Name != "geometry" || p.Target != "js" {
		t.Errorf("header parsed wrong: %+v", p)
	}
	if p.Env["FEATURE_VEC"] != "1" {
		t.Errorf("env overrides missing")
	}
	if len(p.Bind) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(p.Bind))
	}
	if p.Bind[0].As != "itoa" || p.Bind[1].Shape != "infix" {
		t.Errorf("bind fields parsed wrong: %+v", p.Bind)
	}
}

func TestParseProject_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{"bad target", "target: wasm", "unknown target"},
		{"missing pkg", "bind:\n  - symbol: Itoa", "pkg is required"},
		{"missing symbol", "bind:\n  - pkg: strconv", "symbol is required"},
		{"bad shape", "bind:\n  - {pkg: strconv, symbol: Itoa, shape: suffix}", "unknown shape"},
		{"malformed yaml", "target: [", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProject([]byte(tt.yaml), "lume.yaml")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestProjectApply(t *testing.T) {
	ResetEnvForTesting()
	defer ResetEnvForTesting()

	p := &Project{Env: map[string]string{"LUME_PROJECT_FLAG": "yes"}}
	p.Apply()

	v, ok := Env("LUME_PROJECT_FLAG")
	if !ok || v != "yes" {
		t.Errorf("project env override not visible: %q %v", v, ok)
	}
}

func TestEnvSnapshotStable(t *testing.T) {
	ResetEnvForTesting()
	defer ResetEnvForTesting()

	SetEnvOverride("LUME_SNAP", "first")
	if v, _ := Env("LUME_SNAP"); v != "first" {
		t.Fatalf("got %q", v)
	}

	// Once snapshotted, later overrides are invisible: one compilation sees
	// one consistent environment.
	SetEnvOverride("LUME_SNAP", "second")
	if v, _ := Env("LUME_SNAP"); v != "first" {
		t.Errorf("snapshot should be immutable after first read, got %q", v)
	}
}

func TestSourceExtHelpers(t *testing.T) {
	for path, want := range map[string]bool{
		"main.lm":    true,
		"main.lume":  true,
		"main.go":    false,
		"dir/mod.lm": true,
	} {
		if got := HasSourceExt(path); got != want {
			t.Errorf("HasSourceExt(%q) = %v", path, got)
		}
	}
	if got := TrimSourceExt("main.lm"); got != "main" {
		t.Errorf("TrimSourceExt = %q", got)
	}
	if got := TrimSourceExt("main.go"); got != "main.go" {
		t.Errorf("unrecognized extensions pass through, got %q", got)
	}
}
