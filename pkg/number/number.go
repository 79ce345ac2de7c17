package number

import (
	"database/sql/driver"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Amount is an unsigned 256-bit fixed point integer. Monetary amounts are
// scaled by Exa (1e18), ratio and fee parameters by Points (1e4). All
// division truncates toward zero; the order of operations at call sites is
// significant for the last digit and must not be reordered.
type Amount struct {
	u uint256.Int
}

var (
	// Zero zero amount
	Zero Amount
	// Exa 1e18, the scale of monetary amounts
	Exa = MustFromString("1000000000000000000")
	// Points 1e4, the scale of ratio and fee parameters
	Points = New(10000)
)

// New amount from a raw uint64
func New(v uint64) Amount {
	var a Amount
	a.u.SetUint64(v)
	return a
}

// FromBig amount from a big integer, which must be in [0, 2^256)
func FromBig(b *big.Int) (Amount, error) {
	var a Amount
	if b.Sign() < 0 {
		return a, fmt.Errorf("number: negative amount %s", b)
	}
	if overflow := a.u.SetFromBig(b); overflow {
		return a, fmt.Errorf("number: amount overflows 256 bits: %s", b)
	}
	return a, nil
}

// FromString amount from a base 10 string
func FromString(s string) (Amount, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Zero, fmt.Errorf("number: malformed amount %q", s)
	}
	return FromBig(b)
}

// MustFromString like FromString, panics on malformed input
func MustFromString(s string) Amount {
	a, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromDecimal scales a human readable decimal by Exa, truncating
// anything below 1e-18.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	return FromBig(d.Shift(18).Truncate(0).BigInt())
}

// Decimal renders the amount in human readable units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(a.BigInt(), -18)
}

// BigInt copy of the amount as a big integer
func (a Amount) BigInt() *big.Int {
	return a.u.ToBig()
}

func (a Amount) String() string {
	return a.u.ToBig().String()
}

// Add returns a+b and panics on 256-bit overflow.
func (a Amount) Add(b Amount) Amount {
	var r Amount
	if _, carry := r.u.AddOverflow(&a.u, &b.u); carry {
		panic("number: amount overflow on add")
	}
	return r
}

// Sub returns a-b. The caller must have established b <= a; ledger
// amounts are never negative.
func (a Amount) Sub(b Amount) Amount {
	if a.u.Lt(&b.u) {
		panic("number: negative amount on sub")
	}
	var r Amount
	r.u.Sub(&a.u, &b.u)
	return r
}

// Mul returns a*b via an arbitrary precision intermediate, panicking if
// the product does not fit 256 bits.
func (a Amount) Mul(b Amount) Amount {
	p := new(big.Int).Mul(a.BigInt(), b.BigInt())
	r, err := FromBig(p)
	if err != nil {
		panic(err)
	}
	return r
}

// Div returns a/b truncated toward zero.
func (a Amount) Div(b Amount) Amount {
	if b.IsZero() {
		panic("number: division by zero")
	}
	var r Amount
	r.u.Div(&a.u, &b.u)
	return r
}

// MulDiv returns a*b/c with an arbitrary precision product and a
// truncating quotient. The product may exceed 256 bits; the quotient
// must not.
func (a Amount) MulDiv(b, c Amount) Amount {
	if c.IsZero() {
		panic("number: division by zero")
	}
	p := new(big.Int).Mul(a.BigInt(), b.BigInt())
	p.Quo(p, c.BigInt())
	r, err := FromBig(p)
	if err != nil {
		panic(err)
	}
	return r
}

// Cmp returns -1, 0 or 1.
func (a Amount) Cmp(b Amount) int {
	return a.u.Cmp(&b.u)
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.u.IsZero()
}

// LessThan a < b
func (a Amount) LessThan(b Amount) bool {
	return a.u.Lt(&b.u)
}

// GreaterThan a > b
func (a Amount) GreaterThan(b Amount) bool {
	return a.u.Gt(&b.u)
}

// GreaterThanOrEqual a >= b
func (a Amount) GreaterThanOrEqual(b Amount) bool {
	return !a.u.Lt(&b.u)
}

// Min smaller of a and b
func Min(a, b Amount) Amount {
	if a.u.Lt(&b.u) {
		return a
	}
	return b
}

// Value implements driver.Valuer, storing the amount as a base 10 string.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = Zero
		return nil
	case []byte:
		return a.set(string(v))
	case string:
		return a.set(v)
	case int64:
		if v < 0 {
			return fmt.Errorf("number: negative amount %d", v)
		}
		*a = New(uint64(v))
		return nil
	default:
		return fmt.Errorf("number: cannot scan %T", src)
	}
}

func (a *Amount) set(s string) error {
	if s == "" {
		*a = Zero
		return nil
	}
	v, err := FromString(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// MarshalJSON renders the raw integer as a JSON string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted or bare base 10 integer.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return a.set(s)
}
