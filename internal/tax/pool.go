package tax

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrPoolExhausted is returned by Consume when no lot is left. The matcher's
// oversell precheck makes this unreachable on valid input.
var ErrPoolExhausted = errors.New("lot pool exhausted")

// Pool is the working set of not-yet-consumed buy lots. It is owned
// exclusively by the matcher for the duration of a run; the backing slice is
// never handed out for external mutation.
type Pool struct {
	lots []Transaction
	dust decimal.Decimal
}

func newPool(dust decimal.Decimal) *Pool {
	return &Pool{dust: dust}
}

// add appends a lot. An all-zero lot funds nothing and is dropped; a
// zero-quantity lot that still carries usd is rejected so its cost basis is
// never silently discarded.
func (p *Pool) add(lot Transaction) error {
	if lot.BTC.IsZero() {
		if lot.USD.IsZero() {
			return nil
		}
		return fmt.Errorf("lot at %s has no btc but carries %s usd of cost basis",
			lot.Timestamp.Format(time.RFC3339), lot.USD)
	}

	p.lots = append(p.lots, lot)
	return nil
}

// next returns the index of the lot the strategy orders first, or -1 when
// the pool is empty. Ties keep the earliest position.
func (p *Pool) next(s Strategy) int {
	if len(p.lots) == 0 {
		return -1
	}

	best := 0
	for i := 1; i < len(p.lots); i++ {
		if s(p.lots[i], p.lots[best]) {
			best = i
		}
	}
	return best
}

// Next peeks at the lot the strategy would consume next.
func (p *Pool) Next(s Strategy) (Transaction, bool) {
	i := p.next(s)
	if i < 0 {
		return Transaction{}, false
	}
	return p.lots[i], true
}

// Consume removes up to upTo btc from the next lot under the strategy. A lot
// no larger than upTo is consumed whole; a larger lot is split, its remainder
// staying at its original position in the pool. The consumed fragment is
// returned.
func (p *Pool) Consume(s Strategy, upTo decimal.Decimal) (Transaction, error) {
	i := p.next(s)
	if i < 0 {
		return Transaction{}, ErrPoolExhausted
	}

	lot := p.lots[i]
	if lot.BTC.LessThanOrEqual(upTo) {
		p.lots = append(p.lots[:i], p.lots[i+1:]...)
		return lot, nil
	}

	part, rest, err := lot.split(upTo, p.dust)
	if err != nil {
		return Transaction{}, err
	}

	p.lots[i] = rest
	return part, nil
}

// Remaining returns a copy of the unconsumed lots in pool order.
func (p *Pool) Remaining() []Transaction {
	out := make([]Transaction, len(p.lots))
	copy(out, p.lots)
	return out
}

// Total returns the btc volume left in the pool.
func (p *Pool) Total() decimal.Decimal {
	total := decimal.Zero
	for _, lot := range p.lots {
		total = total.Add(lot.BTC)
	}
	return total
}
