package telemetry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/evaratech/aquanode/internal/model"
)

// tankSemantics are the semantic names that carry tank-level state. For
// tank-kind nodes these may only be sourced from the distance field; one
// wrong binding here silently reports temperature as a water level.
var tankSemantics = map[string]bool{
	"distance": true,
	"level":    true,
	"depth":    true,
}

const (
	distanceField    = "field2" // historical carrier of ultrasonic distance
	temperatureField = "field1" // reserved for temperature on tank hardware
)

// Normalize converts one raw field map into semantic values. Every mapped
// key is coerced to a number when the raw value is a numeric-looking
// string; every present raw field is ALSO copied under its raw name, so a
// misconfigured mapping degrades to "raw data available" instead of "no
// data".
func Normalize(raw map[string]any, mapping map[string]string) map[string]any {
	out := make(map[string]any, len(raw)+len(mapping))
	for rawKey, semantic := range mapping {
		v, ok := raw[rawKey]
		if !ok {
			continue
		}
		out[semantic] = coerceNumeric(v)
	}
	for k, v := range raw {
		if isRawFieldName(k) {
			out[k] = coerceNumeric(v)
		}
	}
	return out
}

// coerceNumeric turns numeric-looking strings into int64 or float64 and
// passes everything else through unchanged.
func coerceNumeric(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	t := strings.TrimSpace(s)
	if t == "" {
		return v
	}
	if strings.Contains(t, ".") {
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f
		}
		return v
	}
	if n, err := strconv.ParseInt(t, 10, 64); err == nil {
		return n
	}
	return v
}

// ValidateMapping rejects field mappings that would misreport physical
// quantities. Checked at binding creation, never discovered at analytics
// time.
func ValidateMapping(kind model.AnalyticsKind, mapping map[string]string) error {
	for rawKey, semantic := range mapping {
		if !isRawFieldName(rawKey) {
			return fmt.Errorf("unknown raw field %q in mapping", rawKey)
		}
		if semantic == "" {
			return fmt.Errorf("empty semantic name for %q", rawKey)
		}
	}
	if kind != model.KindTank {
		return nil
	}

	distanceSource := ""
	for rawKey, semantic := range mapping {
		if tankSemantics[strings.ToLower(semantic)] && rawKey == temperatureField {
			return fmt.Errorf("tank semantic %q bound to %s, which carries temperature", semantic, temperatureField)
		}
		if strings.EqualFold(semantic, "distance") {
			distanceSource = rawKey
		}
	}
	if distanceSource == "" {
		return fmt.Errorf("tank mapping must bind %q", "distance")
	}
	if distanceSource != distanceField {
		return fmt.Errorf("tank mapping binds distance to %s, expected %s", distanceSource, distanceField)
	}
	return nil
}
