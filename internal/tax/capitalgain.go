package tax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Duration is the holding-period tax bucket of a capital gain.
type Duration int

const (
	Short Duration = iota
	Long
)

func (d Duration) String() string {
	if d == Long {
		return "long"
	}
	return "short"
}

// CapitalGain pairs a buy fragment with the sell fragment that disposed of
// it. The fragments offset exactly: buy.BTC == -sell.BTC. Created by the
// matcher and never mutated afterwards.
type CapitalGain struct {
	Buy  Transaction
	Sell Transaction
}

// NewCapitalGain validates that buy and sell are a matched pair.
func NewCapitalGain(buy, sell Transaction) (CapitalGain, error) {
	if buy.Side != SideBuy {
		return CapitalGain{}, fmt.Errorf("capital gain buy side is a %s", buy.Side)
	}
	if sell.Side != SideSell {
		return CapitalGain{}, fmt.Errorf("capital gain sell side is a %s", sell.Side)
	}
	if !buy.BTC.Equal(sell.BTC.Neg()) {
		return CapitalGain{}, fmt.Errorf("capital gain btc mismatch: bought %s, sold %s", buy.BTC, sell.BTC)
	}

	return CapitalGain{Buy: buy, Sell: sell}, nil
}

// Duration classifies the gain as short or long term. The disposal timestamp
// is shifted back one calendar year; acquisitions strictly before the shifted
// instant are long term. Selling exactly on the anniversary is short term.
func (g CapitalGain) Duration() Duration {
	cutoff := g.Sell.Timestamp.AddDate(-1, 0, 0)
	if g.Buy.Timestamp.Before(cutoff) {
		return Long
	}
	return Short
}

// Gain returns the signed net profit or loss in usd.
func (g CapitalGain) Gain() decimal.Decimal {
	return g.Sell.USD.Add(g.Buy.USD)
}

// Year returns the calendar year of the disposal.
func (g CapitalGain) Year() int {
	return g.Sell.Timestamp.Year()
}

// Equal reports value equality of both fragments.
func (g CapitalGain) Equal(o CapitalGain) bool {
	return g.Buy.Equal(o.Buy) && g.Sell.Equal(o.Sell)
}
