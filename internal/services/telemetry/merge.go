package telemetry

// MergeFeeds combines raw field maps from several channels belonging to one
// device. The first non-empty map seeds the merge; after that a field only
// overwrites the merged slot when the slot is absent, nil, or the 0/"0"
// placeholder redundant channels report for fields they do not measure.
//
// Known accuracy limitation: a genuinely-zero reading is indistinguishable
// from the placeholder, so a non-zero value from a later channel wins over
// it. Resolution is deliberately not timestamp-based.
func MergeFeeds(feeds []map[string]any) map[string]any {
	merged := make(map[string]any)
	for _, f := range feeds {
		if len(f) == 0 {
			continue
		}
		if len(merged) == 0 {
			for k, v := range f {
				merged[k] = v
			}
			continue
		}
		for k, v := range f {
			if cur, ok := merged[k]; !ok || isPlaceholder(cur) {
				merged[k] = v
			}
		}
	}
	return merged
}

func isPlaceholder(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == "0"
	case float64:
		return x == 0
	case int64:
		return x == 0
	case int:
		return x == 0
	}
	return false
}
