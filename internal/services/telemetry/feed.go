package telemetry

import (
	"encoding/json"
	"strconv"
	"time"
)

// Feed is one raw reading from a remote channel. Fields holds whichever of
// field1..field8 the channel actually reported; an absent key means the
// field is not configured, which is different from a present zero.
type Feed struct {
	CreatedAt time.Time
	EntryID   int64
	Fields    map[string]any
}

// feedResponse mirrors the provider payload shape:
// {channel: {...}, feeds: [{created_at, entry_id, field1..field8}, ...]}
type feedResponse struct {
	Feeds []Feed `json:"feeds"`
}

func (f *Feed) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	f.Fields = make(map[string]any, 8)
	for k, v := range m {
		switch k {
		case "created_at":
			if s, ok := v.(string); ok {
				if t, err := time.Parse(time.RFC3339, s); err == nil {
					f.CreatedAt = t
				}
			}
		case "entry_id":
			switch x := v.(type) {
			case float64:
				f.EntryID = int64(x)
			case string:
				if n, err := strconv.ParseInt(x, 10, 64); err == nil {
					f.EntryID = n
				}
			}
		default:
			// field1..field8; the provider sends null for configured but
			// unreported fields, which we keep out of the map entirely.
			if isRawFieldName(k) && v != nil {
				f.Fields[k] = v
			}
		}
	}
	return nil
}

func isRawFieldName(k string) bool {
	if len(k) != 6 || k[:5] != "field" {
		return false
	}
	return k[5] >= '1' && k[5] <= '8'
}
