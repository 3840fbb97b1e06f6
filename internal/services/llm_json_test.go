package services

import (
	"errors"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":[1,2]}\n```", `{"a":[1,2]}`},
		{"prose around array", `Sure! [{"x":1}] hope this helps`, `[{"x":1}]`},
		{"array holding objects", `[{"a":1},{"b":2}]`, `[{"a":1},{"b":2}]`},
		{"object with trailing bracket noise", `{"a":"b"} see [1]`, `{"a":"b"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSON(tc.in)
			if err != nil {
				t.Fatalf("ExtractJSON: %v", err)
			}
			if string(got) != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestExtractJSON_Failures(t *testing.T) {
	for _, in := range []string{
		"",
		"I cannot help with that.",
		"{ not json at all",
		"} backwards {",
	} {
		if _, err := ExtractJSON(in); !errors.Is(err, ErrLLMParse) {
			t.Fatalf("ExtractJSON(%q): expected ErrLLMParse, got %v", in, err)
		}
	}
}

func TestDecodeLLMJSON_TypeMismatch(t *testing.T) {
	var out []int
	if err := decodeLLMJSON(`{"a":1}`, &out); !errors.Is(err, ErrLLMParse) {
		t.Fatalf("expected ErrLLMParse, got %v", err)
	}
}
