package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestThousands(t *testing.T) {
	cases := []struct {
		in  string
		out int64
	}{
		{"1450000", 1450},
		{"2500", 2},
		{"3500", 4},
		{"499.99", 0},
		{"-1500", -2},
		{"123456789.45", 123457},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.out, Thousands(decimal.RequireFromString(tc.in)), tc.in)
	}
}

func TestGroupDigits(t *testing.T) {
	assert.Equal(t, "0", GroupDigits(0))
	assert.Equal(t, "999", GroupDigits(999))
	assert.Equal(t, "1 000", GroupDigits(1000))
	assert.Equal(t, "1 450 000", GroupDigits(1450000))
	assert.Equal(t, "-12 345", GroupDigits(-12345))
}

func TestOrderedMap(t *testing.T) {
	m := NewOrderedMap[string, int]()
	*m.GetOrInsert("b", nil) += 2
	*m.GetOrInsert("a", func() int { return 10 }) += 1
	*m.GetOrInsert("b", nil) += 3

	assert.Equal(t, []string{"b", "a"}, m.Keys())
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 11, v)
	v, _ = m.Get("b")
	assert.Equal(t, 5, v)
	_, ok = m.Get("missing")
	assert.False(t, ok)
}
