// SPDX-License-Identifier: MPL-2.0

package extract

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

func TestExtractFunction(t *testing.T) {
	t.Parallel()

	script := strings.Join([]string{
		"# setup, function ns:ignored",
		"scoreboard objectives add t dummy",
		"function ns:a",
		`data merge entity @s {function:"ns:fake"}`,
		"schedule function ns:b 5t",
		"execute as @a run function #ns:tag",
	}, "\n")

	facts, err := ExtractFunction(strings.NewReader(script), "ns:main", "/p/main.mcfunction")
	if err != nil {
		t.Fatalf("ExtractFunction() error: %v", err)
	}
	if len(facts) != 3 {
		t.Fatalf("got %d facts, want 3: %+v", len(facts), facts)
	}

	wantTargets := []string{"ns:a", "ns:b", "#ns:tag"}
	for i, f := range facts {
		if string(f.Target) != wantTargets[i] {
			t.Errorf("facts[%d].Target = %q, want %q", i, f.Target, wantTargets[i])
		}
		if f.Source != "ns:main" || f.Provenance != FromScript || f.Origin != "/p/main.mcfunction" {
			t.Errorf("facts[%d] has wrong source metadata: %+v", i, f)
		}
	}
	if facts[1].ScheduleDelay != "5t" || facts[1].Label() != "5t" {
		t.Errorf("scheduled fact = %+v, label %q", facts[1], facts[1].Label())
	}
	if !facts[2].TargetIsTag || facts[2].Label() != "as @a" {
		t.Errorf("tag fact = %+v, label %q", facts[2], facts[2].Label())
	}
}

func TestExtractFunction_NoCallsDeclaresSource(t *testing.T) {
	t.Parallel()

	facts, err := ExtractFunction(strings.NewReader("say leaf\n"), "ns:leaf", "leaf.mcfunction")
	if err != nil {
		t.Fatalf("ExtractFunction() error: %v", err)
	}
	if len(facts) != 1 {
		t.Fatalf("got %d facts, want 1", len(facts))
	}
	if facts[0].HasTarget() || facts[0].Source != "ns:leaf" {
		t.Errorf("declaration fact = %+v", facts[0])
	}
}

func TestExtractFunction_ReadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk gone")
	_, err := ExtractFunction(iotest.ErrReader(boom), "ns:x", "x.mcfunction")
	if !errors.Is(err, boom) {
		t.Errorf("ExtractFunction() error = %v, want wrapping %v", err, boom)
	}
}

func TestFact_Label(t *testing.T) {
	t.Parallel()

	tests := []struct {
		fact Fact
		want string
	}{
		{Fact{}, ""},
		{Fact{PrecedingLabel: "as @a"}, "as @a"},
		{Fact{ScheduleDelay: "5t"}, "5t"},
		{Fact{PrecedingLabel: "if", ScheduleDelay: "1s"}, "if 1s"},
	}
	for _, tt := range tests {
		if got := tt.fact.Label(); got != tt.want {
			t.Errorf("Label() = %q, want %q", got, tt.want)
		}
	}
}
