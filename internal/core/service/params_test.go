package service

import (
	"encoding/json"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParams_DecodedShapes(t *testing.T) {
	var fromJSON Params
	if err := json.Unmarshal([]byte(`{"resultsCount":7,"safeSearch":false,"directories":["/a","/b"]}`), &fromJSON); err != nil {
		t.Fatalf("json: %v", err)
	}

	var fromYAML Params
	if err := yaml.Unmarshal([]byte("resultsCount: 7\nsafeSearch: false\ndirectories: [/a, /b]\n"), &fromYAML); err != nil {
		t.Fatalf("yaml: %v", err)
	}

	for name, p := range map[string]Params{"json": fromJSON, "yaml": fromYAML} {
		if got := p.Int(ParamResultsCount, 0); got != 7 {
			t.Errorf("%s: Int = %d, want 7", name, got)
		}
		if p.Bool(ParamSafeSearch, true) {
			t.Errorf("%s: Bool should be false", name)
		}
		if got := p.Strings(ParamDirectories); !reflect.DeepEqual(got, []string{"/a", "/b"}) {
			t.Errorf("%s: Strings = %v", name, got)
		}
	}
}

func TestParams_Defaults(t *testing.T) {
	p := Params{"n": "not-a-number", "f": 2.5}
	if got := p.Int("n", 3); got != 3 {
		t.Errorf("Int(non-numeric) = %d, want default 3", got)
	}
	if got := p.Int("f", 3); got != 3 {
		t.Errorf("Int(fractional) = %d, want default 3", got)
	}
	if got := p.Int("missing", 9); got != 9 {
		t.Errorf("Int(missing) = %d, want 9", got)
	}
	if got := p.Strings("missing"); got == nil || len(got) != 0 {
		t.Errorf("Strings(missing) = %#v, want empty non-nil", got)
	}
}

func TestParams_CloneIsDeep(t *testing.T) {
	orig := Params{"list": []any{"x"}, "nested": map[string]any{"k": []string{"v"}}}
	cp := orig.Clone()
	cp["list"].([]any)[0] = "changed"
	cp["nested"].(map[string]any)["k"].([]string)[0] = "changed"

	if orig["list"].([]any)[0] != "x" {
		t.Error("Clone aliased []any")
	}
	if orig["nested"].(map[string]any)["k"].([]string)[0] != "v" {
		t.Error("Clone aliased nested map")
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{0.7, "0.7"},
		{float64(100), "100"},
		{100, "100"},
		{true, "true"},
		{"abc", "abc"},
		{[]string{"a", "b"}, "a,b"},
		{json.Number("12"), "12"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseValue(t *testing.T) {
	if v := ParseValue("true"); v != true {
		t.Errorf("ParseValue(true) = %#v", v)
	}
	if v := ParseValue("42"); v != 42 {
		t.Errorf("ParseValue(42) = %#v", v)
	}
	if v := ParseValue("0.5"); v != 0.5 {
		t.Errorf("ParseValue(0.5) = %#v", v)
	}
	if v := ParseValue("hello"); v != "hello" {
		t.Errorf("ParseValue(hello) = %#v", v)
	}
}
