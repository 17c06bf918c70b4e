package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name      string
		req       PageRequest
		total     int64
		wantPages int
		wantLast  bool
	}{
		{"empty", PageRequest{Page: 0, Size: 12}, 0, 0, true},
		{"single partial page", PageRequest{Page: 0, Size: 12}, 5, 1, true},
		{"first of many", PageRequest{Page: 0, Size: 10}, 25, 3, false},
		{"last of many", PageRequest{Page: 2, Size: 10}, 25, 3, true},
		{"exact fit", PageRequest{Page: 1, Size: 10}, 20, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage[int](nil, tt.req, tt.total)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.wantLast, p.Last)
			assert.NotNil(t, p.Content)
		})
	}
}

func TestMapPageKeepsMetadata(t *testing.T) {
	p := NewPage([]int{1, 2}, PageRequest{Page: 0, Size: 2}, 3)
	mapped := MapPage(p, func(v int) string { return string(rune('a' + v)) })

	assert.Equal(t, []string{"b", "c"}, mapped.Content)
	assert.Equal(t, int64(3), mapped.TotalElements)
	assert.Equal(t, 2, mapped.TotalPages)
	assert.False(t, mapped.Last)
}

func TestListingPrimaryImageID(t *testing.T) {
	l := &Listing{}
	assert.Nil(t, l.PrimaryImageID())

	l.Images = []ListingImage{{ID: 7, DisplayOrder: 0}, {ID: 9, DisplayOrder: 1}}
	assert.Equal(t, int64(7), *l.PrimaryImageID())

	l.Images[1].Primary = true
	assert.Equal(t, int64(9), *l.PrimaryImageID())
}
