package model

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalJSON_SortsKeysAndKeepsUnicode(t *testing.T) {
	got, err := CanonicalJSON(map[string]any{
		"b": 1,
		"a": []any{true, nil, "café"},
		"z": map[string]any{"y": 2, "x": "<&>"},
	})
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":[true,null,\"café\"],\"b\":1,\"z\":{\"x\":\"<&>\",\"y\":2}}\n", string(got))
}

func TestCanonicalJSON_LineSeparatorsAndBigIntegers(t *testing.T) {
	got, err := CanonicalJSON(map[string]any{
		"line":  "a\u2028b\u2029c",
		"quote": "say \"hi\"\n",
		"num":   int64(9007199254740993),
	})
	require.NoError(t, err)
	// U+2028/U+2029 stay literal and the integer above 2^53 survives.
	assert.Equal(t, "{\"line\":\"a\u2028b\u2029c\",\"num\":9007199254740993,\"quote\":\"say \\\"hi\\\"\\n\"}\n", string(got))
}

func TestCanonicalJSON_EmptyContainers(t *testing.T) {
	got, err := CanonicalJSON(map[string]any{
		"empty_obj": map[string]any{},
		"empty_arr": []any{},
		"neg":       -42,
	})
	require.NoError(t, err)
	assert.Equal(t, "{\"empty_arr\":[],\"empty_obj\":{},\"neg\":-42}\n", string(got))
}

func TestSHA256Hex_KnownVectors(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{
			name: "nested",
			in: map[string]any{
				"b": 1,
				"a": []any{true, nil, "café"},
				"z": map[string]any{"y": 2, "x": "<&>"},
			},
			want: "a5bc4d3ada2f8c42cfbe6280062dcb3bd2b2b713b843855a6f0821ad01a78512",
		},
		{
			name: "line separators",
			in: map[string]any{
				"line":  "a\u2028b\u2029c",
				"quote": "say \"hi\"\n",
				"num":   int64(9007199254740993),
			},
			want: "e5f468860481b7034d57c50ed5d67cd05c79a71de90c1c31fcd278b4fc6317a2",
		},
		{
			name: "empty containers",
			in: map[string]any{
				"empty_obj": map[string]any{},
				"empty_arr": []any{},
				"neg":       -42,
			},
			want: "287680e4dad1d8279736b03da75906e6949fa2428a6c1c7c00c46a5ecaac873b",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SHA256Hex(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCanonicalJSON_EscapedBackslashBeforeLineSeparator(t *testing.T) {
	// A literal backslash followed by the text "u2028" must not be
	// rewritten into the line separator character.
	got, err := CanonicalJSON(map[string]any{"s": `\u2028`})
	require.NoError(t, err)
	assert.Equal(t, "{\"s\":\"\\\\u2028\"}\n", string(got))
}

func TestCanonicalJSON_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("deterministic across repeated encoding", prop.ForAll(
		func(m map[string]int64) bool {
			a, err1 := CanonicalJSON(m)
			b, err2 := CanonicalJSON(m)
			return err1 == nil && err2 == nil && string(a) == string(b)
		},
		gen.MapOf(gen.Identifier(), gen.Int64()),
	))

	properties.Property("stable across deep copy", prop.ForAll(
		func(m map[string]string) bool {
			wrapped := map[string]any{}
			for k, v := range m {
				wrapped[k] = v
			}
			copied, err := CopyMap(wrapped)
			if err != nil {
				return false
			}
			a, err1 := CanonicalJSON(wrapped)
			b, err2 := CanonicalJSON(copied)
			return err1 == nil && err2 == nil && string(a) == string(b)
		},
		gen.MapOf(gen.Identifier(), gen.AnyString()),
	))

	properties.TestingRun(t)
}

func TestCopyMap_Isolation(t *testing.T) {
	src := map[string]any{"nested": map[string]any{"k": "v"}}
	copied, err := CopyMap(src)
	require.NoError(t, err)

	copied["nested"].(map[string]any)["k"] = "mutated"
	assert.Equal(t, "v", src["nested"].(map[string]any)["k"])
}
