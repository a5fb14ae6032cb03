package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchFixture(t *testing.T) (buys, sells []Transaction) {
	t.Helper()

	buys = []Transaction{
		mustBuy(t, date(2020, 1, 1), "20", "-20"),
		mustBuy(t, date(2021, 1, 1), "10", "-10"),
		mustBuy(t, date(2022, 1, 1), "10", "-10"),
	}
	sells = []Transaction{
		mustSell(t, date(2020, 6, 1), "-5", "50"),
		mustSell(t, date(2021, 6, 1), "-15", "150"),
		mustSell(t, date(2023, 6, 1), "-10", "100"),
	}
	return buys, sells
}

func TestMatchLIFO(t *testing.T) {
	buys, sells := matchFixture(t)

	gains, pool, err := NewMatcher(LIFO).Match(buys, sells)
	require.NoError(t, err)

	// the 2020 disposal predates every other lot, so it can only draw on
	// the 2020 lot regardless of latest-first ordering
	expected := []CapitalGain{
		{Buy: mustBuy(t, date(2020, 1, 1), "5", "-5"), Sell: mustSell(t, date(2020, 6, 1), "-5", "50")},
		{Buy: mustBuy(t, date(2021, 1, 1), "10", "-10"), Sell: mustSell(t, date(2021, 6, 1), "-10", "100")},
		{Buy: mustBuy(t, date(2020, 1, 1), "5", "-5"), Sell: mustSell(t, date(2021, 6, 1), "-5", "50")},
		{Buy: mustBuy(t, date(2022, 1, 1), "10", "-10"), Sell: mustSell(t, date(2023, 6, 1), "-10", "100")},
	}
	require.Len(t, gains, len(expected))
	for i := range expected {
		assert.True(t, gains[i].Equal(expected[i]), "gain %d was buy=%s sell=%s", i, gains[i].Buy, gains[i].Sell)
	}

	rest := pool.Remaining()
	require.Len(t, rest, 1)
	assert.True(t, rest[0].Equal(mustBuy(t, date(2020, 1, 1), "10", "-10")))
}

func TestMatchFIFO(t *testing.T) {
	buys, sells := matchFixture(t)

	gains, pool, err := NewMatcher(FIFO).Match(buys, sells)
	require.NoError(t, err)

	expected := []CapitalGain{
		{Buy: mustBuy(t, date(2020, 1, 1), "5", "-5"), Sell: mustSell(t, date(2020, 6, 1), "-5", "50")},
		{Buy: mustBuy(t, date(2020, 1, 1), "15", "-15"), Sell: mustSell(t, date(2021, 6, 1), "-15", "150")},
		{Buy: mustBuy(t, date(2021, 1, 1), "10", "-10"), Sell: mustSell(t, date(2023, 6, 1), "-10", "100")},
	}
	require.Len(t, gains, len(expected))
	for i := range expected {
		assert.True(t, gains[i].Equal(expected[i]), "gain %d was buy=%s sell=%s", i, gains[i].Buy, gains[i].Sell)
	}

	rest := pool.Remaining()
	require.Len(t, rest, 1)
	assert.True(t, rest[0].Equal(mustBuy(t, date(2022, 1, 1), "10", "-10")))
}

func TestMatchHIFO(t *testing.T) {
	buys := []Transaction{
		mustBuy(t, date(2020, 1, 1), "1", "-100"),
		mustBuy(t, date(2020, 2, 1), "1", "-300"),
		mustBuy(t, date(2020, 3, 1), "1", "-200"),
	}
	sells := []Transaction{
		mustSell(t, date(2020, 6, 1), "-1.5", "600"),
	}

	gains, pool, err := NewMatcher(HIFO).Match(buys, sells)
	require.NoError(t, err)

	expected := []CapitalGain{
		{Buy: mustBuy(t, date(2020, 2, 1), "1", "-300"), Sell: mustSell(t, date(2020, 6, 1), "-1", "400")},
		{Buy: mustBuy(t, date(2020, 3, 1), "0.5", "-100"), Sell: mustSell(t, date(2020, 6, 1), "-0.5", "200")},
	}
	require.Len(t, gains, len(expected))
	for i := range expected {
		assert.True(t, gains[i].Equal(expected[i]), "gain %d was buy=%s sell=%s", i, gains[i].Buy, gains[i].Sell)
	}

	rest := pool.Remaining()
	require.Len(t, rest, 2)
	assert.True(t, rest[0].Equal(mustBuy(t, date(2020, 1, 1), "1", "-100")))
	assert.True(t, rest[1].Equal(mustBuy(t, date(2020, 3, 1), "0.5", "-100")))
}

func TestMatchLotPrecedesDisposal(t *testing.T) {
	// no strategy may fund a disposal with a lot acquired after it
	buys, sells := matchFixture(t)

	for _, s := range []Strategy{FIFO, LIFO, HIFO, LOFO} {
		gains, _, err := NewMatcher(s).Match(buys, sells)
		require.NoError(t, err)

		for i, g := range gains {
			assert.False(t, g.Buy.Timestamp.After(g.Sell.Timestamp),
				"gain %d consumed a lot acquired after the disposal: buy=%s sell=%s", i, g.Buy, g.Sell)
		}
	}
}

func TestMatchRemainderIncludesLaterLots(t *testing.T) {
	// a lot acquired after the last disposal is untouched but still held
	buys := []Transaction{
		mustBuy(t, date(2020, 1, 1), "10", "-10"),
		mustBuy(t, date(2024, 1, 1), "5", "-5"),
	}
	sells := []Transaction{
		mustSell(t, date(2020, 6, 1), "-5", "50"),
	}

	gains, pool, err := NewMatcher(FIFO).Match(buys, sells)
	require.NoError(t, err)
	require.Len(t, gains, 1)
	assert.True(t, gains[0].Buy.Timestamp.Equal(date(2020, 1, 1)))

	assert.True(t, pool.Total().Equal(dec("10")), "holdings were %s", pool.Total())
	rest := pool.Remaining()
	require.Len(t, rest, 2)
	assert.True(t, rest[1].Equal(mustBuy(t, date(2024, 1, 1), "5", "-5")))
}

func TestMatchFragmentsSumPerDisposal(t *testing.T) {
	buys, sells := matchFixture(t)

	for _, s := range []Strategy{FIFO, LIFO, HIFO, LOFO} {
		gains, _, err := NewMatcher(s).Match(buys, sells)
		require.NoError(t, err)

		for _, sell := range sells {
			btc := decimal.Zero
			usd := decimal.Zero
			for _, g := range gains {
				if g.Sell.Timestamp.Equal(sell.Timestamp) {
					btc = btc.Add(g.Sell.BTC)
					usd = usd.Add(g.Sell.USD)
					assert.True(t, g.Buy.BTC.Equal(g.Sell.BTC.Neg()))
				}
			}
			assert.True(t, btc.Equal(sell.BTC), "disposal %s btc fragments sum to %s", sell, btc)
			assert.True(t, usd.Sub(sell.USD).Abs().LessThan(DefaultDustTolerance), "disposal %s usd fragments sum to %s", sell, usd)
		}
	}
}

func TestMatchDoesNotMutateInputs(t *testing.T) {
	buys, sells := matchFixture(t)
	buysBefore := append([]Transaction(nil), buys...)
	sellsBefore := append([]Transaction(nil), sells...)

	_, _, err := NewMatcher(LIFO).Match(buys, sells)
	require.NoError(t, err)

	for i := range buysBefore {
		assert.True(t, buys[i].Equal(buysBefore[i]))
	}
	for i := range sellsBefore {
		assert.True(t, sells[i].Equal(sellsBefore[i]))
	}
}

func TestMatchOversellTotalVolume(t *testing.T) {
	buys := []Transaction{mustBuy(t, date(2020, 1, 1), "1", "-1")}
	sells := []Transaction{mustSell(t, date(2020, 6, 1), "-1", "10")}

	gains, pool, err := NewMatcher(FIFO).Match(buys, sells)
	var oerr *OversellError
	require.ErrorAs(t, err, &oerr)
	assert.True(t, oerr.Sold.Equal(dec("1")))
	assert.True(t, oerr.Acquired.Equal(dec("1")))
	assert.Nil(t, gains)
	assert.Nil(t, pool)
}

func TestMatchOversellBeforeAcquisition(t *testing.T) {
	// total volume is fine, but the disposal predates the acquisitions
	buys := []Transaction{mustBuy(t, date(2021, 1, 1), "10", "-10")}
	sells := []Transaction{mustSell(t, date(2020, 6, 1), "-5", "50")}

	_, _, err := NewMatcher(FIFO).Match(buys, sells)
	var oerr *OversellError
	require.ErrorAs(t, err, &oerr)
	assert.True(t, oerr.Time.Equal(date(2020, 6, 1)))
}

func TestMatchRejectsMisplacedSides(t *testing.T) {
	buy := mustBuy(t, date(2020, 1, 1), "1", "-1")
	sell := mustSell(t, date(2020, 6, 1), "-1", "10")

	_, _, err := NewMatcher(FIFO).Match([]Transaction{sell}, []Transaction{sell})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a buy")

	_, _, err = NewMatcher(FIFO).Match([]Transaction{buy, buy}, []Transaction{buy})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a sell")
}

func TestMatchUnsortedInput(t *testing.T) {
	// the matcher orders disposals chronologically itself
	buys := []Transaction{
		mustBuy(t, date(2021, 1, 1), "10", "-10"),
		mustBuy(t, date(2020, 1, 1), "20", "-20"),
	}
	sells := []Transaction{
		mustSell(t, date(2021, 6, 1), "-15", "150"),
		mustSell(t, date(2020, 6, 1), "-5", "50"),
	}

	gains, pool, err := NewMatcher(FIFO).Match(buys, sells)
	require.NoError(t, err)
	require.Len(t, gains, 2)

	assert.True(t, gains[0].Sell.Timestamp.Equal(date(2020, 6, 1)))
	assert.True(t, gains[1].Sell.Timestamp.Equal(date(2021, 6, 1)))
	assert.True(t, pool.Total().Equal(dec("10")))
}

func TestMatchWithDustTolerance(t *testing.T) {
	// a coarse tolerance snaps the remainder usd of every split to zero
	buys := []Transaction{mustBuy(t, date(2020, 1, 1), "2", "-0.5")}
	sells := []Transaction{mustSell(t, date(2020, 6, 1), "-1", "0.3")}

	m := NewMatcher(FIFO, WithDustTolerance(decimal.New(1, 0)))
	_, pool, err := m.Match(buys, sells)
	require.NoError(t, err)

	rest := pool.Remaining()
	require.Len(t, rest, 1)
	assert.True(t, rest[0].USD.IsZero())
}
