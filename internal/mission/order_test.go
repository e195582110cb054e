package mission

import (
	"reflect"
	"testing"
)

func TestExecutionOrder(t *testing.T) {
	b := &Breakdown{Missions: []Mission{
		{MissionID: "m1"},
		{MissionID: "m2", Dependencies: []string{"m4"}},
		{MissionID: "m3", Dependencies: []string{"m1"}},
		{MissionID: "m4", Dependencies: []string{"m1"}},
	}}

	got, err := ExecutionOrder(b)
	if err != nil {
		t.Fatalf("ExecutionOrder() error = %v", err)
	}
	want := []string{"m1", "m3", "m4", "m2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExecutionOrder() = %v, want %v", got, want)
	}

	waves, err := Waves(b)
	if err != nil {
		t.Fatalf("Waves() error = %v", err)
	}
	wantWaves := [][]string{{"m1"}, {"m3", "m4"}, {"m2"}}
	if !reflect.DeepEqual(waves, wantWaves) {
		t.Errorf("Waves() = %v, want %v", waves, wantWaves)
	}
}

func TestExecutionOrderErrors(t *testing.T) {
	cyclic := &Breakdown{Missions: []Mission{
		{MissionID: "a", Dependencies: []string{"b"}},
		{MissionID: "b", Dependencies: []string{"a"}},
	}}
	if _, err := ExecutionOrder(cyclic); err == nil {
		t.Error("ExecutionOrder() on a cycle: error = nil")
	}

	dangling := &Breakdown{Missions: []Mission{{MissionID: "a", Dependencies: []string{"zzz"}}}}
	if _, err := ExecutionOrder(dangling); err == nil {
		t.Error("ExecutionOrder() with unknown dependency: error = nil")
	}
}

func TestExecutionOrderOfGeneratedBreakdown(t *testing.T) {
	b, _ := validBreakdown(t, 20)

	got, err := ExecutionOrder(b)
	if err != nil {
		t.Fatalf("ExecutionOrder() error = %v", err)
	}
	if len(got) != len(b.Missions) {
		t.Fatalf("ExecutionOrder() returned %d ids, want %d", len(got), len(b.Missions))
	}
	for i, m := range b.Missions {
		if got[i] != m.MissionID {
			t.Errorf("order[%d] = %s, want %s", i, got[i], m.MissionID)
		}
	}
}
