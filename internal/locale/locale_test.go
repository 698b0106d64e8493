package locale

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "0"},
		{"   ", "0"},
		{"100", "100"},
		{"100,50", "100.5"},
		{"100.50", "100.5"},
		{"1 234,56", "1234.56"},
		{"1 234 567,89", "1234567.89"},
		{"-12,3", "-12.3"},
		{"abc", "0"},
		{"12,3,4", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Money(tt.in)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestTryMoney(t *testing.T) {
	_, ok := TryMoney("")
	assert.True(t, ok)
	_, ok = TryMoney("n/a")
	assert.False(t, ok)
}

func TestDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"01.05.2025", "2025-05-01"},
		{"1.5.2025", "2025-05-01"},
		{"15.05.25", "2025-05-15"},
		{"5.6.25", "2025-06-05"},
		{"31.05.2025 0:00:00", "2025-05-31"},
		{"2025-05-20", "2025-05-20"},
		{"45778", "2025-05-01"},
		{"45778,25", "2025-05-01"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Date(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.ISO())
		})
	}
}

func TestDate_Rejects(t *testing.T) {
	for _, in := range []string{"", "май 2025", "100", "19999", "80000", "32.01.2025"} {
		_, ok := Date(in)
		assert.False(t, ok, in)
	}
}

func TestPeriod(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	d, ok := Period("17.05.2025", now)
	assert.True(t, ok)
	assert.Equal(t, "2025-05-01", d.ISO())

	d, ok = Period("45792", now)
	assert.True(t, ok)
	assert.Equal(t, "2025-05-01", d.ISO())

	d, ok = Period("garbage", now)
	assert.False(t, ok)
	assert.Equal(t, "2026-10-01", d.ISO())
}

func TestNullableDate(t *testing.T) {
	assert.Nil(t, NullableDate(""))
	assert.Nil(t, NullableDate("-"))
	d := NullableDate("30.04.2024")
	require.NotNil(t, d)
	assert.Equal(t, "2024-04-30", d.ISO())
}

func TestInt(t *testing.T) {
	assert.Nil(t, Int(""))
	assert.Nil(t, Int("три"))
	assert.Nil(t, Int("2.5"))

	for in, want := range map[string]int{"0": 0, "3": 3, " 12 ": 12, "3.0": 3, "1 200": 1200} {
		got := Int(in)
		require.NotNil(t, got, in)
		assert.Equal(t, want, *got, in)
	}
}
