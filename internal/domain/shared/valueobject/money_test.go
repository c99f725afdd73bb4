package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(decimal.NewFromInt(100), KES)
	require.NoError(t, err)
	assert.Equal(t, KES, m.Currency())
	assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))

	_, err = NewMoney(decimal.NewFromInt(100), "")
	assert.Error(t, err)
}

func TestMoneyArithmetic(t *testing.T) {
	a := NewMoneyKESFromFloat(1500.50)
	b := NewMoneyKESFromFloat(499.50)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromInt(2000)))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.NewFromInt(1001)))

	assert.True(t, a.MultiplyByInt(2).Amount().Equal(decimal.NewFromInt(3001)))
	assert.True(t, b.Negate().IsNegative())
	assert.True(t, b.Negate().Abs().Equals(b))
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	kes := NewMoneyKES(decimal.NewFromInt(100))
	usd, err := NewMoney(decimal.NewFromInt(100), USD)
	require.NoError(t, err)

	_, err = kes.Add(usd)
	assert.Error(t, err)
	_, err = kes.Subtract(usd)
	assert.Error(t, err)
	_, err = kes.GreaterThan(usd)
	assert.Error(t, err)

	assert.Panics(t, func() { kes.MustAdd(usd) })
	assert.False(t, kes.Equals(usd))
}

func TestMoneyComparison(t *testing.T) {
	small := NewMoneyKESFromFloat(10)
	big := NewMoneyKESFromFloat(20)

	gt, err := big.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, gt)

	lt, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, lt)

	assert.True(t, ZeroKES().IsZero())
	assert.True(t, small.IsPositive())
	assert.True(t, small.Negate().IsNegative())
}

func TestMoneyDecimalPrecision(t *testing.T) {
	// classic float trap: 0.1 + 0.2 must equal 0.3 exactly
	a, err := NewMoneyKESFromString("0.1")
	require.NoError(t, err)
	b, err := NewMoneyKESFromString("0.2")
	require.NoError(t, err)

	sum := a.MustAdd(b)
	expected, err := NewMoneyKESFromString("0.3")
	require.NoError(t, err)
	assert.True(t, sum.Equals(expected), "sum = %s", sum)
}

func TestMoneyString(t *testing.T) {
	m := NewMoneyKESFromFloat(1234.5)
	assert.Equal(t, "1234.50 KES", m.String())
	assert.Equal(t, "1234.50", m.StringFixed(2))
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := NewMoneyKESFromFloat(750.25)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))

	t.Run("missing currency defaults to KES", func(t *testing.T) {
		var v Money
		require.NoError(t, json.Unmarshal([]byte(`{"amount":"42"}`), &v))
		assert.Equal(t, KES, v.Currency())
	})

	t.Run("bad amount rejected", func(t *testing.T) {
		var v Money
		assert.Error(t, json.Unmarshal([]byte(`{"amount":"abc"}`), &v))
	})
}
