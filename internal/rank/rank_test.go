package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Classify(t *testing.T) {
	table := Default()

	t.Run("threshold boundaries are inclusive lower bounds", func(t *testing.T) {
		cases := []struct {
			total float64
			want  Tier
		}{
			{0, Bronze},
			{9999, Bronze},
			{9999.99, Bronze},
			{10000, Silver},
			{49999, Silver},
			{50000, Gold},
			{99999, Gold},
			{100000, Platinum},
			{100001, Platinum},
			{12345678, Platinum},
		}
		for _, c := range cases {
			assert.Equal(t, c.want, table.Classify(c.total), "total=%v", c.total)
		}
	})

	t.Run("negative totals fall through to bronze", func(t *testing.T) {
		assert.Equal(t, Bronze, table.Classify(-1))
		assert.Equal(t, Bronze, table.Classify(-99999))
	})
}

func TestTable_Next(t *testing.T) {
	table := Default()

	t.Run("each tier promotes to the one above", func(t *testing.T) {
		next, threshold, ok := table.Next(Bronze)
		require.True(t, ok)
		assert.Equal(t, Silver, next)
		assert.Equal(t, 10000.0, threshold)

		next, threshold, ok = table.Next(Silver)
		require.True(t, ok)
		assert.Equal(t, Gold, next)
		assert.Equal(t, 50000.0, threshold)

		next, threshold, ok = table.Next(Gold)
		require.True(t, ok)
		assert.Equal(t, Platinum, next)
		assert.Equal(t, 100000.0, threshold)
	})

	t.Run("platinum is terminal", func(t *testing.T) {
		_, _, ok := table.Next(Platinum)
		assert.False(t, ok)
	})
}

func TestTable_Lookups(t *testing.T) {
	table := Default()

	assert.Equal(t, []Tier{Platinum, Gold, Silver, Bronze}, table.Tiers())
	for _, tier := range table.Tiers() {
		assert.NotEmpty(t, table.Name(tier))
		assert.NotEmpty(t, table.Color(tier))
		assert.True(t, table.Valid(tier))
	}
	assert.False(t, table.Valid(Tier("diamond")))
	assert.Equal(t, "ブロンズ", table.Name(Bronze))
	assert.Equal(t, "#FFD700", table.Color(Gold))
}
