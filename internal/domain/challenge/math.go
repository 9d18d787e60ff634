package challenge

import (
	"math/bits"

	"github.com/holiman/uint256"
)

var hundred = uint256.NewInt(100)

// percentOf returns floor(amount*percent/100). The product is computed in 256
// bits so it never wraps.
func percentOf(amount, percent uint64) uint64 {
	v := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(percent))
	v.Div(v, hundred)
	return v.Uint64()
}

func add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}

	return sum, nil
}

func validWeek(week uint64) bool {
	return week >= 1 && week <= NumWeeks
}
