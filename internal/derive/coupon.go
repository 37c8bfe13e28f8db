package derive

import "strings"

// Discount maps a price to a discounted price. Discounts never drive a
// price below zero.
type Discount func(amount int64) int64

// Flat returns a discount subtracting a fixed amount.
func Flat(off int64) Discount {
	return func(amount int64) int64 {
		out := amount - off
		if out < 0 {
			return 0
		}
		return out
	}
}

// Percent returns a discount subtracting pct percent, rounded down.
func Percent(pct int) Discount {
	return func(amount int64) int64 {
		if pct <= 0 {
			return amount
		}
		if pct >= 100 {
			return 0
		}
		return amount - amount*int64(pct)/100
	}
}

// CouponRegistry maps coupon codes to discount functions. Codes are matched
// case-insensitively. An unknown code is a no-op, not an error.
type CouponRegistry struct {
	codes map[string]Discount
}

// NewCouponRegistry returns an empty registry.
func NewCouponRegistry() *CouponRegistry {
	return &CouponRegistry{codes: make(map[string]Discount)}
}

// Register adds or replaces a coupon code.
func (r *CouponRegistry) Register(code string, d Discount) {
	r.codes[strings.ToUpper(strings.TrimSpace(code))] = d
}

// Apply returns the discounted amount for code, or amount unchanged when
// the code is empty or unknown.
func (r *CouponRegistry) Apply(code string, amount int64) int64 {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return amount
	}
	d, ok := r.codes[code]
	if !ok {
		return amount
	}
	return d(amount)
}

// DefaultCoupons returns the registry seeded with the campaign codes the
// console ships with.
func DefaultCoupons() *CouponRegistry {
	r := NewCouponRegistry()
	r.Register("DIWALI", Flat(1500))
	return r
}
