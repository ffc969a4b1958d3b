package metrics

import (
	"reflect"
	"testing"
)

func TestSortedStatuses(t *testing.T) {
	tests := []struct {
		name     string
		statuses map[int]int64
		want     []StatusBucket
	}{
		{
			name:     "nil statuses",
			statuses: nil,
			want:     nil,
		},
		{
			name:     "empty statuses",
			statuses: map[int]int64{},
			want:     nil,
		},
		{
			name:     "single status",
			statuses: map[int]int64{200: 10},
			want:     []StatusBucket{{Code: 200, Count: 10}},
		},
		{
			name:     "sorted by count desc",
			statuses: map[int]int64{200: 10, 500: 5, 0: 20},
			want: []StatusBucket{
				{Code: 0, Count: 20},
				{Code: 200, Count: 10},
				{Code: 500, Count: 5},
			},
		},
		{
			name:     "ties broken by code",
			statuses: map[int]int64{503: 3, 404: 3, 200: 3},
			want: []StatusBucket{
				{Code: 200, Count: 3},
				{Code: 404, Count: 3},
				{Code: 503, Count: 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SortedStatuses(tt.statuses)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SortedStatuses() = %v, want %v", got, tt.want)
			}
		})
	}
}
