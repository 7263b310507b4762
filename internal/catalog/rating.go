package catalog

import "math/big"

// Rating is the aggregate of a book's review ratings, kept as the exact
// sum/count terms. No rounding happens during accumulation; callers round
// once when formatting for a response.
type Rating struct {
	Sum   int64 `json:"sum"`
	Count int64 `json:"count"`
}

// Rat returns the mean rating as an exact rational. A book with no reviews
// rates exactly 0.
func (r Rating) Rat() *big.Rat {
	if r.Count == 0 {
		return new(big.Rat)
	}
	return big.NewRat(r.Sum, r.Count)
}

// Decimal renders the mean with the given number of fractional digits,
// rounding half away from zero at this presentation boundary only.
func (r Rating) Decimal(places int) string {
	return r.Rat().FloatString(places)
}
