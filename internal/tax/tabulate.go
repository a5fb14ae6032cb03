package tax

// Report row formats, fixed by the downstream tax form.
const (
	dateFormat = "01/02/2006"
	btcPlaces  = 8
	usdPlaces  = 2
)

// Row is one formatted report line for a matched gain.
type Row struct {
	Description  string // acquired btc magnitude, 8 decimal places
	DateAcquired string
	DateSold     string
	Proceeds     string
	CostBasis    string
	Gain         string
}

// Fields returns the row's columns in report order.
func (r Row) Fields() []string {
	return []string{r.Description, r.DateAcquired, r.DateSold, r.Proceeds, r.CostBasis, r.Gain}
}

// Tabulate groups capital gains by duration bucket and disposal year. Within
// a year the matcher's emission order is kept. Years without entries are
// absent from the maps. Tabulate reads its input without mutating it, so
// repeated calls yield identical results.
func Tabulate(gains []CapitalGain) (short, long map[int][]Row) {
	short = make(map[int][]Row)
	long = make(map[int][]Row)

	for _, g := range gains {
		row := Row{
			Description:  g.Buy.BTC.Abs().StringFixed(btcPlaces) + " BTC",
			DateAcquired: g.Buy.Timestamp.Format(dateFormat),
			DateSold:     g.Sell.Timestamp.Format(dateFormat),
			Proceeds:     g.Sell.USD.StringFixed(usdPlaces),
			CostBasis:    g.Buy.USD.Abs().StringFixed(usdPlaces),
			Gain:         g.Gain().StringFixed(usdPlaces),
		}

		year := g.Year()
		if g.Duration() == Long {
			long[year] = append(long[year], row)
		} else {
			short[year] = append(short[year], row)
		}
	}

	return short, long
}
