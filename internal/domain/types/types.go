// Package types contains read shapes shared across the application.
package types

// ScaleStatistics is the completion count of one instrument.
type ScaleStatistics struct {
	ID    int    `json:"-"`
	Path  string `json:"-"`
	Name  string `json:"name"`
	Count uint64 `json:"count"`
}

// ByName folds statistics into the name -> count mapping served to clients.
func ByName(stats []ScaleStatistics) map[string]uint64 {
	out := make(map[string]uint64, len(stats))
	for _, s := range stats {
		out[s.Name] = s.Count
	}
	return out
}
