// SPDX-License-Identifier: MPL-2.0

package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestExpandTag(t *testing.T) {
	t.Parallel()

	facts, err := ExpandTag(strings.NewReader(`{"values": ["a:b", "a:c"]}`), "ns:mytag", "data/ns/tags/functions/mytag.json")
	if err != nil {
		t.Fatalf("ExpandTag() error: %v", err)
	}
	if len(facts) != 2 {
		t.Fatalf("got %d facts, want 2", len(facts))
	}
	for i, want := range []string{"a:b", "a:c"} {
		f := facts[i]
		if f.Source != "#ns:mytag" {
			t.Errorf("facts[%d].Source = %q, want #ns:mytag", i, f.Source)
		}
		if string(f.Target) != want {
			t.Errorf("facts[%d].Target = %q, want %q", i, f.Target, want)
		}
		if f.Provenance != FromTag || !f.SourceIsVirtual() || f.ScheduleDelay != "" {
			t.Errorf("facts[%d] = %+v, want virtual tag fact without delay", i, f)
		}
	}
}

func TestExpandTag_NestedTagAndReplace(t *testing.T) {
	t.Parallel()

	facts, err := ExpandTag(strings.NewReader(`{"replace": false, "values": ["#other:group"]}`), "ns:outer", "outer.json")
	if err != nil {
		t.Fatalf("ExpandTag() error: %v", err)
	}
	if len(facts) != 1 || !facts[0].TargetIsTag {
		t.Errorf("facts = %+v, want one nested tag reference", facts)
	}
}

func TestExpandTag_BareMembers(t *testing.T) {
	t.Parallel()

	facts, err := ExpandTag(strings.NewReader(`{"values": ["tick", "#load"]}`), "minecraft:tick", "tick.json")
	if err != nil {
		t.Fatalf("ExpandTag() error: %v", err)
	}
	if len(facts) != 2 || facts[0].Target != "minecraft:tick" || facts[1].Target != "#minecraft:load" {
		t.Errorf("facts = %+v, want members in the minecraft namespace", facts)
	}
}

func TestExpandTag_EmptyValues(t *testing.T) {
	t.Parallel()

	facts, err := ExpandTag(strings.NewReader(`{"values": []}`), "ns:empty", "empty.json")
	if err != nil {
		t.Fatalf("ExpandTag() error: %v", err)
	}
	if len(facts) != 0 {
		t.Errorf("got %d facts, want 0", len(facts))
	}
}

func TestExpandTag_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"missing values", `{"replace": false}`},
		{"null values", `{"values": null}`},
		{"values not array", `{"values": "ns:a"}`},
		{"non-string member", `{"values": ["ns:a", 3]}`},
		{"malformed json", `{"values": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ExpandTag(strings.NewReader(tt.doc), "ns:bad", "bad.json")
			if err == nil {
				t.Fatal("ExpandTag() returned nil, want error")
			}
			if !errors.Is(err, ErrInvalidTagFormat) {
				t.Errorf("error should wrap ErrInvalidTagFormat, got: %v", err)
			}
			var tagErr *InvalidTagFormatError
			if !errors.As(err, &tagErr) || tagErr.Path != "bad.json" {
				t.Errorf("error should be *InvalidTagFormatError for bad.json, got: %#v", err)
			}
		})
	}
}
