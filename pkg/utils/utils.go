package utils

import (
	"sort"
	"strconv"
)

type KindCount struct {
	Kind  string
	Count uint64
}

// SortKindsByCount sorts message kinds by count (descending), then by kind (ascending)
func SortKindsByCount(messagesByKind map[string]uint64) []KindCount {
	var kindCounts []KindCount
	for kind, count := range messagesByKind {
		kindCounts = append(kindCounts, KindCount{Kind: kind, Count: count})
	}

	// Sort by count descending, then by kind ascending
	sort.Slice(kindCounts, func(i, j int) bool {
		if kindCounts[i].Count == kindCounts[j].Count {
			return kindCounts[i].Kind < kindCounts[j].Kind
		}
		return kindCounts[i].Count > kindCounts[j].Count
	})

	return kindCounts
}

// FormatNumber formats a number with comma separators for readability
func FormatNumber(n uint64) string {
	str := strconv.FormatUint(n, 10)
	if len(str) <= 3 {
		return str
	}

	result := ""
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}

// KindLabel returns a human-readable name for a channel message kind
func KindLabel(kind string) string {
	switch kind {
	case "coordinate_tracking_update":
		return "Tracking Update"
	case "query_response":
		return "Query Response"
	case "system_alert":
		return "System Alert"
	case "submit_query":
		return "Query"
	case "request_telemetry":
		return "Telemetry Request"
	default:
		return kind
	}
}
