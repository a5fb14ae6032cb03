// Package tax implements the tax-lot matching engine: BTCUSD transactions
// with validated sign invariants, lot selection strategies, sell-to-buy
// matching and per-year gain tabulation. All monetary arithmetic is done in
// exact decimals; float64 never enters the package.
package tax

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Side tags a transaction as an acquisition or a disposal.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideSell {
		return "sell"
	}
	return "buy"
}

// DefaultDustTolerance is the residual usd magnitude below which a split
// remainder is snapped to exactly zero. Repeated decimal division leaves
// sub-cent dust behind otherwise.
var DefaultDustTolerance = decimal.New(1, -4) // 0.0001

// ValidationError reports a sign invariant violation at construction.
type ValidationError struct {
	Side      Side
	Field     string
	Value     decimal.Decimal
	Timestamp time.Time
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s at %s: %s value %s has the wrong sign",
		e.Side, e.Timestamp.Format(time.RFC3339), e.Field, e.Value)
}

// SplitError reports a split magnitude outside (0, |btc|]. It indicates a
// defect in the caller, not bad input data.
type SplitError struct {
	Magnitude decimal.Decimal
	BTC       decimal.Decimal
}

func (e *SplitError) Error() string {
	return fmt.Sprintf("split magnitude %s outside (0, %s]", e.Magnitude, e.BTC.Abs())
}

// Transaction is a single BTCUSD exchange. A buy holds btc >= 0 and usd <= 0
// (coins acquired, dollars spent); a sell holds btc <= 0 and usd >= 0.
// Transactions are value types and never mutated after construction.
type Transaction struct {
	Timestamp time.Time
	BTC       decimal.Decimal
	USD       decimal.Decimal
	Side      Side
}

// NewBuy returns a buy transaction, failing if btc is negative or usd is
// positive.
func NewBuy(ts time.Time, btc, usd decimal.Decimal) (Transaction, error) {
	if btc.IsNegative() {
		return Transaction{}, &ValidationError{Side: SideBuy, Field: "BTC", Value: btc, Timestamp: ts}
	}
	if usd.IsPositive() {
		return Transaction{}, &ValidationError{Side: SideBuy, Field: "USD", Value: usd, Timestamp: ts}
	}

	return Transaction{Timestamp: ts, BTC: btc, USD: usd, Side: SideBuy}, nil
}

// NewSell returns a sell transaction, failing if btc is positive or usd is
// negative.
func NewSell(ts time.Time, btc, usd decimal.Decimal) (Transaction, error) {
	if btc.IsPositive() {
		return Transaction{}, &ValidationError{Side: SideSell, Field: "BTC", Value: btc, Timestamp: ts}
	}
	if usd.IsNegative() {
		return Transaction{}, &ValidationError{Side: SideSell, Field: "USD", Value: usd, Timestamp: ts}
	}

	return Transaction{Timestamp: ts, BTC: btc, USD: usd, Side: SideSell}, nil
}

// Price returns the signed usd per btc unit of the transaction.
func (t Transaction) Price() decimal.Decimal {
	return t.USD.Div(t.BTC)
}

// Equal reports value equality: same side, timestamp, btc and usd.
func (t Transaction) Equal(o Transaction) bool {
	return t.Side == o.Side &&
		t.Timestamp.Equal(o.Timestamp) &&
		t.BTC.Equal(o.BTC) &&
		t.USD.Equal(o.USD)
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s(%s, btc=%s, usd=%s)", t.Side, t.Timestamp.Format(time.RFC3339), t.BTC, t.USD)
}

// Split divides the transaction at the btc magnitude x, returning a part of
// that magnitude and the remainder. Both carry the transaction's side and
// unit price; their btc and usd each sum back to the original. Residual usd
// below DefaultDustTolerance snaps to zero on the remainder.
func (t Transaction) Split(x decimal.Decimal) (part, rest Transaction, err error) {
	return t.split(x, DefaultDustTolerance)
}

func (t Transaction) split(x, dust decimal.Decimal) (part, rest Transaction, err error) {
	if !x.IsPositive() || x.GreaterThan(t.BTC.Abs()) {
		return Transaction{}, Transaction{}, &SplitError{Magnitude: x, BTC: t.BTC}
	}

	partBTC := x
	if t.Side == SideSell {
		partBTC = x.Neg()
	}

	// part.usd = x_signed * price, computed as a fraction of the original
	// usd so the unit price carries over.
	partUSD := t.USD.Mul(x).Div(t.BTC.Abs())
	restUSD := t.USD.Sub(partUSD)
	if restUSD.Abs().LessThan(dust) {
		restUSD = decimal.Zero
	}

	part = Transaction{Timestamp: t.Timestamp, BTC: partBTC, USD: partUSD, Side: t.Side}
	rest = Transaction{Timestamp: t.Timestamp, BTC: t.BTC.Sub(partBTC), USD: restUSD, Side: t.Side}
	return part, rest, nil
}

// Partition separates a mixed transaction list into buys and sells,
// preserving order.
func Partition(txs []Transaction) (buys, sells []Transaction) {
	for _, t := range txs {
		if t.Side == SideBuy {
			buys = append(buys, t)
		} else {
			sells = append(sells, t)
		}
	}
	return buys, sells
}
