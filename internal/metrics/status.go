package metrics

import "sort"

// StatusBucket is the number of Outcomes observed for one status code.
type StatusBucket struct {
	Code  int
	Count int64
}

// SortedStatuses flattens a status histogram into rows sorted by descending
// count, then ascending code for stability.
func SortedStatuses(statuses map[int]int64) []StatusBucket {
	if len(statuses) == 0 {
		return nil
	}
	rows := make([]StatusBucket, 0, len(statuses))
	for code, count := range statuses {
		rows = append(rows, StatusBucket{Code: code, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			return rows[i].Code < rows[j].Code
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}
