package telemetry

import (
	"reflect"
	"testing"
)

func TestMergeZeroPlaceholderNeverClobbers(t *testing.T) {
	// Merging [a] then [a, b] where b only carries zero/null placeholders
	// must equal merging [a] alone.
	a := map[string]any{"field1": "21.0", "field2": "55"}
	b := map[string]any{"field1": "0", "field2": float64(0)}

	only := MergeFeeds([]map[string]any{a})
	both := MergeFeeds([]map[string]any{a, b})

	if !reflect.DeepEqual(only, both) {
		t.Fatalf("zero placeholders clobbered real values: %v vs %v", only, both)
	}
}

func TestMergeRealValueBeatsPlaceholder(t *testing.T) {
	a := map[string]any{"field1": "0", "field3": nil}
	b := map[string]any{"field1": "18.4", "field3": "77"}

	out := MergeFeeds([]map[string]any{a, b})

	if out["field1"] != "18.4" {
		t.Fatalf("field1 = %v, want value from second channel", out["field1"])
	}
	if out["field3"] != "77" {
		t.Fatalf("field3 = %v, want nil slot filled", out["field3"])
	}
}

func TestMergeFirstNonEmptySeeds(t *testing.T) {
	out := MergeFeeds([]map[string]any{
		{},
		{"field2": "46"},
		{"field2": "99"},
	})
	if out["field2"] != "46" {
		t.Fatalf("field2 = %v, earlier real value must win", out["field2"])
	}
}

func TestMergeEmptyInput(t *testing.T) {
	if out := MergeFeeds(nil); len(out) != 0 {
		t.Fatalf("merge of nothing produced %v", out)
	}
	if out := MergeFeeds([]map[string]any{{}, {}}); len(out) != 0 {
		t.Fatalf("merge of empty maps produced %v", out)
	}
}
