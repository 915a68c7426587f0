package yamlutil_test

// Notes:
// - Marshal error branch: not tested because yaml.Marshal only fails with
//   unmarshalable types (channels, functions) which are compile-time
//   detectable and not realistic in production usage.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"strings"
	"testing"

	"github.com/mdpreview/go-mdpreview/internal/yamlutil"
)

type testConfig struct {
	Name    string `yaml:"name"`
	Count   int    `yaml:"count"`
	Enabled bool   `yaml:"enabled"`
}

// ---------------------------------------------------------------------------
// TestUnmarshal - Parses YAML into Go structs
// ---------------------------------------------------------------------------

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		data         []byte
		dest         any
		wantErr      error
		wantParseErr bool
		check        func(t *testing.T, v any)
	}{
		{
			name: "valid YAML",
			data: []byte("name: test\ncount: 42\nenabled: true"),
			dest: &testConfig{},
			check: func(t *testing.T, v any) {
				cfg := v.(*testConfig)
				if cfg.Name != "test" || cfg.Count != 42 || !cfg.Enabled {
					t.Errorf("unexpected decode result: %+v", cfg)
				}
			},
		},
		{
			name:    "empty data",
			data:    nil,
			dest:    &testConfig{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "nil destination",
			data:    []byte("name: test"),
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
		{
			name:         "invalid YAML",
			data:         []byte("name: [unclosed"),
			dest:         &testConfig{},
			wantParseErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Unmarshal(tt.data, tt.dest)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Unmarshal() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if tt.wantParseErr {
				if err == nil {
					t.Fatal("Unmarshal() expected parse error, got nil")
				}
				if !strings.Contains(err.Error(), "yamlutil:") {
					t.Errorf("parse error should be wrapped: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal() unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, tt.dest)
			}
		})
	}
}

func TestUnmarshalTooLarge(t *testing.T) {
	t.Parallel()

	data := []byte("name: " + strings.Repeat("a", yamlutil.MaxInputSize))
	var cfg testConfig
	err := yamlutil.Unmarshal(data, &cfg)
	if !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Fatalf("Unmarshal() error = %v, want ErrInputTooLarge", err)
	}
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Unknown key rejection
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	var cfg testConfig
	if err := yamlutil.UnmarshalStrict([]byte("name: x\ncount: 1"), &cfg); err != nil {
		t.Fatalf("UnmarshalStrict() unexpected error: %v", err)
	}

	var cfg2 testConfig
	if err := yamlutil.UnmarshalStrict([]byte("name: x\nbogus: 1"), &cfg2); err == nil {
		t.Fatal("UnmarshalStrict() accepted unknown key")
	}
}

// ---------------------------------------------------------------------------
// TestUnmarshalOrdered - Ordered mapping decode
// ---------------------------------------------------------------------------

func TestUnmarshalOrdered(t *testing.T) {
	t.Parallel()

	var v any
	data := []byte("zebra: 1\nalpha: 2\nmiddle: 3")
	if err := yamlutil.UnmarshalOrdered(data, &v); err != nil {
		t.Fatalf("UnmarshalOrdered() unexpected error: %v", err)
	}

	m, ok := v.(yamlutil.MapSlice)
	if !ok {
		t.Fatalf("UnmarshalOrdered() result type = %T, want MapSlice", v)
	}

	wantKeys := []string{"zebra", "alpha", "middle"}
	if len(m) != len(wantKeys) {
		t.Fatalf("MapSlice length = %d, want %d", len(m), len(wantKeys))
	}
	for i, item := range m {
		key, _ := item.Key.(string)
		if key != wantKeys[i] {
			t.Errorf("key[%d] = %q, want %q (document order must be preserved)", i, key, wantKeys[i])
		}
	}
}

func TestUnmarshalOrderedNested(t *testing.T) {
	t.Parallel()

	var v any
	data := []byte("outer:\n  b: 1\n  a: 2")
	if err := yamlutil.UnmarshalOrdered(data, &v); err != nil {
		t.Fatalf("UnmarshalOrdered() unexpected error: %v", err)
	}

	m, ok := v.(yamlutil.MapSlice)
	if !ok || len(m) != 1 {
		t.Fatalf("unexpected top-level decode: %#v", v)
	}
	inner, ok := m[0].Value.(yamlutil.MapSlice)
	if !ok {
		t.Fatalf("nested mapping type = %T, want MapSlice", m[0].Value)
	}
	if key, _ := inner[0].Key.(string); key != "b" {
		t.Errorf("nested first key = %q, want %q", key, "b")
	}
}

// ---------------------------------------------------------------------------
// TestMarshal - Serializes Go values to YAML
// ---------------------------------------------------------------------------

func TestMarshal(t *testing.T) {
	t.Parallel()

	out, err := yamlutil.Marshal(testConfig{Name: "x", Count: 1, Enabled: true})
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	if !strings.Contains(string(out), "name: x") {
		t.Errorf("Marshal() output missing field: %s", out)
	}
}
