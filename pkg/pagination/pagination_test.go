package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	cases := []struct {
		name                string
		page, size          int
		wantOffset, wantLim int
	}{
		{"first page", 1, 10, 0, 10},
		{"third page", 3, 10, 20, 10},
		{"page below one", 0, 5, 0, 5},
		{"default size", 2, 0, DefaultPageSize, DefaultPageSize},
		{"capped size", 1, 500, 0, MaxPageSize},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			off, lim := Calculate(tc.page, tc.size)
			assert.Equal(t, tc.wantOffset, off)
			assert.Equal(t, tc.wantLim, lim)
		})
	}
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 4, ParseIntDefault("", 4))
	assert.Equal(t, 4, ParseIntDefault("abc", 4))
	assert.Equal(t, 12, ParseIntDefault("12", 4))
}
