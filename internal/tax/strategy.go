package tax

import (
	"errors"
	"fmt"
)

// ErrUnknownStrategy is returned by StrategyForName for an unrecognized
// strategy identifier.
var ErrUnknownStrategy = errors.New("unknown lot selection strategy")

// Strategy reports whether lot a should be consumed before lot b. Strategies
// are pure and stateless; the matcher asks the pool for the next lot under
// the active strategy instead of sorting anything itself.
type Strategy func(a, b Transaction) bool

// The closed set of lot selection orderings. Ties keep pool order, which is
// acquisition order.
var (
	// FIFO consumes the earliest acquired lot first.
	FIFO Strategy = func(a, b Transaction) bool { return a.Timestamp.Before(b.Timestamp) }

	// LIFO consumes the latest acquired lot first.
	LIFO Strategy = func(a, b Transaction) bool { return a.Timestamp.After(b.Timestamp) }

	// HIFO consumes the lot with the highest unit cost first.
	HIFO Strategy = func(a, b Transaction) bool { return a.Price().Abs().GreaterThan(b.Price().Abs()) }

	// LOFO consumes the lot with the lowest unit cost first.
	LOFO Strategy = func(a, b Transaction) bool { return a.Price().Abs().LessThan(b.Price().Abs()) }
)

// StrategyForName resolves a strategy by its configuration name.
func StrategyForName(name string) (Strategy, error) {
	switch name {
	case "first-in-first-out", "fifo":
		return FIFO, nil
	case "last-in-first-out", "lifo":
		return LIFO, nil
	case "highest-cost-first-out", "hifo":
		return HIFO, nil
	case "lowest-cost-first-out", "lofo":
		return LOFO, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}
