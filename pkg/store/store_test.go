package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/liftmap/pkg/catalogs"
	"github.com/agentstation/liftmap/pkg/store"
)

func TestBatches(t *testing.T) {
	records := make([]catalogs.Exercise, 7)
	tests := []struct {
		name  string
		n     int
		size  int
		sizes []int
	}{
		{"even", 6, 3, []int{3, 3}},
		{"remainder", 7, 3, []int{3, 3, 1}},
		{"single batch", 7, 100, []int{7}},
		{"zero size", 7, 0, []int{7}},
		{"empty", 0, 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int
			for _, b := range store.Batches(records[:tt.n], tt.size) {
				got = append(got, len(b))
			}
			assert.Equal(t, tt.sizes, got)
		})
	}
}
