package pidgen3

import (
	"math/big"
	"testing"

	"github.com/umskt/umskt-go/pkg/base24"
	"github.com/umskt/umskt-go/pkg/curve"
)

// toyCurveForTests mirrors pkg/curve's own toy fixture: y² = x³ + 2x + 3
// (mod 97), base point (3, 6) of order 5. Small enough to make
// exhaustive rejection-sampling tests instantaneous.
func toyCurveForTests(t *testing.T) *curve.Curve {
	t.Helper()
	c, err := curve.New(
		big.NewInt(97),
		big.NewInt(2),
		big.NewInt(3),
		curve.Point{X: big.NewInt(3), Y: big.NewInt(6)},
		big.NewInt(5),
	)
	if err != nil {
		t.Fatalf("toyCurveForTests: %v", err)
	}
	return c
}

func decodeForTest(key string) [base24.BufferSize]byte {
	return base24.Decode(key)
}
