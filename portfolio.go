package lotfolio

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// TaxPolicy selects how a portfolio's taxable gains are computed. The enum
// is closed: adding a policy means extending the switch in TaxableGain, a
// compile-visible decision rather than a silently accepted string.
type TaxPolicy int

const (
	// TaxFree never produces a taxable gain (e.g. Keren Hishtalmut funds).
	TaxFree TaxPolicy = iota
	// ILRealGain taxes the real gain under the Israeli closer-to-zero rule.
	ILRealGain
	// Nominal taxes the raw nominal gain with no inflation or FX relief.
	Nominal
)

func (p TaxPolicy) String() string {
	switch p {
	case TaxFree:
		return "tax-free"
	case ILRealGain:
		return "il-real-gain"
	case Nominal:
		return "nominal"
	default:
		return "unknown"
	}
}

func (p TaxPolicy) MarshalJSON() ([]byte, error) { return json.Marshal(p.String()) }

func (p *TaxPolicy) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTaxPolicy(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParseTaxPolicy parses a string into a TaxPolicy.
func ParseTaxPolicy(s string) (TaxPolicy, error) {
	switch s {
	case "tax-free":
		return TaxFree, nil
	case "il-real-gain":
		return ILRealGain, nil
	case "nominal":
		return Nominal, nil
	default:
		return 0, fmt.Errorf("unknown tax policy: %q", s)
	}
}

// RateSchedule is a date-varying tax rate: each change applies from its date
// until the next one. Statutory CGT rates move over the years, and the rate
// that matters is the one in force on the sale date.
type RateSchedule []RateChange

// RateChange sets a new rate starting on From.
type RateChange struct {
	From Date            `json:"from"`
	Rate decimal.Decimal `json:"rate"`
}

// FixedRate returns a schedule holding a single rate since forever.
func FixedRate(rate decimal.Decimal) RateSchedule {
	return RateSchedule{{Rate: rate}}
}

// At returns the rate in force on a date, zero when the schedule is empty or
// starts after the date.
func (s RateSchedule) At(on Date) decimal.Decimal {
	rate := decimal.Zero
	for _, c := range s {
		if c.From.After(on) {
			break
		}
		rate = c.Rate
	}
	return rate
}

// FeeKind selects how a recurring management fee is charged.
type FeeKind int

const (
	NoFee FeeKind = iota
	// PercentFee charges Value as an annual fraction of the holding value,
	// prorated by the charge frequency.
	PercentFee
	// FixedFee charges Value as a flat amount per period.
	FixedFee
)

func (k FeeKind) String() string {
	switch k {
	case PercentFee:
		return "percent"
	case FixedFee:
		return "fixed"
	default:
		return "none"
	}
}

func (k FeeKind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

func (k *FeeKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "none", "":
		*k = NoFee
	case "percent":
		*k = PercentFee
	case "fixed":
		*k = FixedFee
	default:
		return fmt.Errorf("unknown fee kind: %q", s)
	}
	return nil
}

// FeeFreq is the charge frequency of a recurring management fee.
type FeeFreq int

const (
	Monthly FeeFreq = iota
	Quarterly
	Annually
)

func (f FeeFreq) String() string {
	switch f {
	case Quarterly:
		return "quarterly"
	case Annually:
		return "annually"
	default:
		return "monthly"
	}
}

func (f FeeFreq) MarshalJSON() ([]byte, error) { return json.Marshal(f.String()) }

func (f *FeeFreq) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "monthly", "":
		*f = Monthly
	case "quarterly":
		*f = Quarterly
	case "annually":
		*f = Annually
	default:
		return fmt.Errorf("unknown fee frequency: %q", s)
	}
	return nil
}

// Months returns the schedule step in months.
func (f FeeFreq) Months() int {
	switch f {
	case Monthly:
		return 1
	case Quarterly:
		return 3
	case Annually:
		return 12
	default:
		return 1
	}
}

// FeeSchedule describes a portfolio's recurring management fee.
type FeeSchedule struct {
	Kind  FeeKind         `json:"kind,omitempty"`
	Value decimal.Decimal `json:"value,omitempty"` // annual fraction for PercentFee, flat amount for FixedFee
	Every FeeFreq         `json:"every,omitempty"`
}

// Portfolio is the declared configuration of one portfolio: its reporting
// currency and its tax and fee regime. It carries no state; holdings do.
type Portfolio struct {
	ID       string    `json:"id"`
	Currency string    `json:"currency"`
	Policy   TaxPolicy `json:"policy"`

	// CGT is the capital-gains tax schedule, looked up at the sale date.
	CGT RateSchedule `json:"cgt,omitempty"`
	// IncomeTax applies to the cost basis of vesting-type instruments when
	// sold, on top of capital gains tax.
	IncomeTax decimal.Decimal `json:"incomeTax,omitempty"`

	// DividendTax and DividendFee apply to gross dividend amounts.
	DividendTax decimal.Decimal `json:"dividendTax,omitempty"`
	DividendFee decimal.Decimal `json:"dividendFee,omitempty"`

	Mgmt FeeSchedule `json:"mgmt,omitempty"`
}

// DefaultPortfolio is the configuration a fresh data directory starts with:
// an ILS portfolio under the Israeli real-gain regime at the current 25%
// statutory rate.
func DefaultPortfolio() *Portfolio {
	return &Portfolio{
		ID:          "main",
		Currency:    ILS,
		Policy:      ILRealGain,
		CGT:         FixedRate(decimal.NewFromFloat(0.25)),
		DividendTax: decimal.NewFromFloat(0.25),
	}
}
