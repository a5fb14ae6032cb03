package tax

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// OversellError reports a disposal volume that meets or exceeds the
// acquisition volume accumulated up to the disposal's time. The run produced
// no output.
type OversellError struct {
	Time     time.Time
	Sold     decimal.Decimal
	Acquired decimal.Decimal
}

func (e *OversellError) Error() string {
	return fmt.Sprintf("oversell at %s: %s btc sold against %s btc acquired",
		e.Time.Format(time.RFC3339), e.Sold, e.Acquired)
}

// Matcher consumes disposals against a pool of acquisition lots, producing
// the capital gain pairs that fully account for every disposal. Lots enter
// the pool at their acquisition timestamp, so a disposal only ever consumes
// lots acquired at or before it; within the eligible lots the configured
// strategy picks the consumption order. A single Match call is the sole
// mutator of its pool.
type Matcher struct {
	strategy Strategy
	dust     decimal.Decimal
	log      *slog.Logger
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithDustTolerance overrides DefaultDustTolerance for split remainders.
func WithDustTolerance(tol decimal.Decimal) MatcherOption {
	return func(m *Matcher) { m.dust = tol }
}

// WithLogger attaches a logger for per-disposal matching progress.
func WithLogger(log *slog.Logger) MatcherOption {
	return func(m *Matcher) { m.log = log }
}

func NewMatcher(strategy Strategy, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		strategy: strategy,
		dust:     DefaultDustTolerance,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match pairs every sell against buy lots chosen by the strategy. Only lots
// acquired at or before a disposal are eligible for it. Gains are emitted
// grouped by disposal in chronological disposal order, in lot-consumption
// order within a disposal. The returned pool holds the unconsumed
// acquisition remainder.
//
// All preconditions are validated before any matching state is built, so a
// failed run never leaves partial results: the input slices are not mutated
// on any path.
func (m *Matcher) Match(buys, sells []Transaction) ([]CapitalGain, *Pool, error) {
	for _, b := range buys {
		if b.Side != SideBuy {
			return nil, nil, fmt.Errorf("lot at %s is a %s, not a buy", b.Timestamp.Format(time.RFC3339), b.Side)
		}
	}
	for _, s := range sells {
		if s.Side != SideSell {
			return nil, nil, fmt.Errorf("disposal at %s is a %s, not a sell", s.Timestamp.Format(time.RFC3339), s.Side)
		}
	}

	byTime := func(a, b Transaction) int { return a.Timestamp.Compare(b.Timestamp) }
	sortedBuys := slices.Clone(buys)
	slices.SortStableFunc(sortedBuys, byTime)
	sortedSells := slices.Clone(sells)
	slices.SortStableFunc(sortedSells, byTime)

	if err := checkOversell(sortedBuys, sortedSells); err != nil {
		return nil, nil, err
	}

	pool := newPool(m.dust)
	var gains []CapitalGain
	next := 0
	for _, sell := range sortedSells {
		for next < len(sortedBuys) && !sortedBuys[next].Timestamp.After(sell.Timestamp) {
			if err := pool.add(sortedBuys[next]); err != nil {
				return nil, nil, err
			}
			next++
		}

		matched, err := m.matchSell(pool, sell)
		if err != nil {
			return nil, nil, err
		}
		gains = append(gains, matched...)
	}

	// lots acquired after the last disposal are still holdings
	for ; next < len(sortedBuys); next++ {
		if err := pool.add(sortedBuys[next]); err != nil {
			return nil, nil, err
		}
	}

	return gains, pool, nil
}

// matchSell consumes lots until the disposal is fully funded, splitting the
// disposal itself at each consumed lot's magnitude so every emitted pair
// offsets exactly.
func (m *Matcher) matchSell(pool *Pool, sell Transaction) ([]CapitalGain, error) {
	var gains []CapitalGain

	working := sell
	needed := sell.BTC.Abs()
	for needed.IsPositive() {
		lot, err := pool.Consume(m.strategy, needed)
		if err != nil {
			return nil, err
		}
		needed = needed.Sub(lot.BTC)

		frag := working
		if needed.IsPositive() {
			frag, working, err = working.split(lot.BTC, m.dust)
			if err != nil {
				return nil, err
			}
		}

		gain, err := NewCapitalGain(lot, frag)
		if err != nil {
			return nil, err
		}
		gains = append(gains, gain)
	}

	m.log.Debug("matched disposal",
		slog.Time("sold_at", sell.Timestamp),
		slog.String("btc", sell.BTC.String()),
		slog.Int("lots", len(gains)))

	return gains, nil
}

// checkOversell verifies that at every disposal the volume sold so far,
// including the disposal itself, stays strictly below the volume acquired up
// to and including the disposal's time. Both inputs must be sorted by
// timestamp.
func checkOversell(buys, sells []Transaction) error {
	sold := decimal.Zero
	acquired := decimal.Zero
	next := 0
	for _, s := range sells {
		for next < len(buys) && !buys[next].Timestamp.After(s.Timestamp) {
			acquired = acquired.Add(buys[next].BTC)
			next++
		}

		sold = sold.Add(s.BTC.Abs())
		if sold.GreaterThanOrEqual(acquired) {
			return &OversellError{Time: s.Timestamp, Sold: sold, Acquired: acquired}
		}
	}

	return nil
}
