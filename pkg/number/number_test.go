package number

import (
	"encoding/json"
	"testing"

	"github.com/bmizerany/assert"
	"github.com/shopspring/decimal"
)

func TestMulDivTruncates(t *testing.T) {
	data := map[string][3]string{
		"10/3":       {"10", "1", "3"},
		"1000*2/3":   {"1000", "2", "3"},
		"7*7/2":      {"7", "7", "2"},
		"fee points": {"666000000000000000000", "100", "10000"},
	}
	expected := map[string]string{
		"10/3":       "3",
		"1000*2/3":   "666",
		"7*7/2":      "24",
		"fee points": "6660000000000000000",
	}

	for k, v := range data {
		t.Run(k, func(t *testing.T) {
			a := MustFromString(v[0])
			b := MustFromString(v[1])
			c := MustFromString(v[2])
			assert.Equal(t, expected[k], a.MulDiv(b, c).String())
		})
	}
}

func TestMulDivWideProduct(t *testing.T) {
	// a*b overflows 256 bits, a*b/c does not
	a := MustFromString("100000000000000000000000000000000000000000000000000000000000000000000000000000")
	b := New(1000000)
	c := MustFromString("1000000000000000000000000")

	got := a.MulDiv(b, c)
	assert.Equal(t, "100000000000000000000000000000000000000000000000000000000000", got.String())
}

func TestDecimalBoundary(t *testing.T) {
	d := decimal.RequireFromString("1.5")
	a, err := FromDecimal(d)
	assert.Equal(t, nil, err)
	assert.Equal(t, "1500000000000000000", a.String())
	assert.Equal(t, "1.5", a.Decimal().String())

	// sub exa truncation
	d = decimal.RequireFromString("0.0000000000000000019")
	a, err = FromDecimal(d)
	assert.Equal(t, nil, err)
	assert.Equal(t, "1", a.String())
}

func TestJSONRoundTrip(t *testing.T) {
	a := Exa.Mul(New(42))

	raw, err := json.Marshal(a)
	assert.Equal(t, nil, err)
	assert.Equal(t, `"42000000000000000000"`, string(raw))

	var b Amount
	assert.Equal(t, nil, json.Unmarshal(raw, &b))
	assert.Equal(t, 0, a.Cmp(b))
}

func TestScan(t *testing.T) {
	var a Amount
	assert.Equal(t, nil, a.Scan("12345"))
	assert.Equal(t, "12345", a.String())

	assert.Equal(t, nil, a.Scan([]byte("67890")))
	assert.Equal(t, "67890", a.String())

	assert.Equal(t, nil, a.Scan(nil))
	assert.Equal(t, true, a.IsZero())
}

func TestSubPanicsOnNegative(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	New(1).Sub(New(2))
}
