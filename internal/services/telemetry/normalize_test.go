package telemetry

import (
	"testing"

	"github.com/evaratech/aquanode/internal/model"
)

func TestNormalizeRoundTripCompleteness(t *testing.T) {
	// Every raw field must survive under its raw name regardless of what
	// the mapping says, so a broken mapping still leaves raw data behind.
	raw := map[string]any{
		"field1": "22.5",
		"field2": "46",
		"field3": "n/a",
	}
	mapping := map[string]string{"field2": "distance"}

	out := Normalize(raw, mapping)

	if v, ok := out["distance"].(int64); !ok || v != 46 {
		t.Fatalf("distance = %v (%T), want int64 46", out["distance"], out["distance"])
	}
	if v, ok := out["field1"].(float64); !ok || v != 22.5 {
		t.Fatalf("field1 = %v (%T), want float64 22.5", out["field1"], out["field1"])
	}
	if v, ok := out["field2"].(int64); !ok || v != 46 {
		t.Fatalf("field2 = %v (%T), want int64 46", out["field2"], out["field2"])
	}
	// Non-numeric values pass through untouched.
	if v, ok := out["field3"].(string); !ok || v != "n/a" {
		t.Fatalf("field3 = %v, want passthrough string", out["field3"])
	}
}

func TestNormalizeMappedKeyMissingFromRaw(t *testing.T) {
	out := Normalize(map[string]any{"field1": "1"}, map[string]string{"field5": "flow_rate"})
	if _, ok := out["flow_rate"]; ok {
		t.Fatal("mapping for an absent raw field must not invent a value")
	}
}

func TestValidateMappingRejectsTankLevelOnTemperatureField(t *testing.T) {
	cases := []map[string]string{
		{"field1": "distance"},
		{"field1": "level", "field2": "distance"},
		{"field1": "depth", "field2": "distance"},
	}
	for _, m := range cases {
		if err := ValidateMapping(model.KindTank, m); err == nil {
			t.Fatalf("mapping %v must be rejected for tank nodes", m)
		}
	}
}

func TestValidateMappingTankRequiresDistanceFromField2(t *testing.T) {
	if err := ValidateMapping(model.KindTank, map[string]string{"field3": "distance"}); err == nil {
		t.Fatal("distance sourced from field3 must be rejected")
	}
	if err := ValidateMapping(model.KindTank, map[string]string{"field2": "temperature"}); err == nil {
		t.Fatal("tank mapping without a distance binding must be rejected")
	}
	if err := ValidateMapping(model.KindTank, map[string]string{
		"field1": "temperature",
		"field2": "distance",
	}); err != nil {
		t.Fatalf("canonical tank mapping rejected: %v", err)
	}
}

func TestValidateMappingNonTankKindsAreUnconstrained(t *testing.T) {
	if err := ValidateMapping(model.KindFlow, map[string]string{"field1": "flow_rate"}); err != nil {
		t.Fatalf("flow mapping rejected: %v", err)
	}
	if err := ValidateMapping(model.KindFlow, map[string]string{"field9": "x"}); err == nil {
		t.Fatal("unknown raw field name must be rejected for any kind")
	}
}
