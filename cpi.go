package lotfolio

import "github.com/shopspring/decimal"

// CPIIndex is the consumer-price-index series used by the real-gain tax
// rule. Values are the published index level; the ratio between two dates is
// the inflation over the period.
type CPIIndex struct {
	series History
}

// NewCPIIndex returns an empty index.
func NewCPIIndex() *CPIIndex { return &CPIIndex{} }

// Append records the index level published for a date.
func (c *CPIIndex) Append(on Date, level float64) { c.series.Append(on, level) }

// Len returns the number of recorded levels.
func (c *CPIIndex) Len() int { return c.series.Len() }

// At returns the index level in effect on a date: the latest level published
// on or before it. A date before the first publication, or a nil index,
// yields zero; the tax evaluator treats a zero level as "no CPI context" and
// skips the inflation adjustment.
func (c *CPIIndex) At(on Date) decimal.Decimal {
	if c == nil {
		return decimal.Zero
	}
	v, ok := c.series.AsOf(on)
	if !ok {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}
