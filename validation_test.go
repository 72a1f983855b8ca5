package lotfolio

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	portfolios := map[string]*Portfolio{"main": nominalPortfolio()}
	on := NewDate(2025, time.January, 10)

	testCases := []struct {
		name    string
		tx      Transaction
		wantErr string // empty means valid
	}{
		{
			name: "valid buy",
			tx:   buy(on, "main", "TEVA", 10, 100, ILS),
		},
		{
			name:    "undeclared portfolio",
			tx:      buy(on, "nobody", "TEVA", 10, 100, ILS),
			wantErr: "undeclared portfolio",
		},
		{
			name:    "missing ticker",
			tx:      buy(on, "main", "", 10, 100, ILS),
			wantErr: "no ticker",
		},
		{
			name:    "missing date",
			tx:      buy(Date{}, "main", "TEVA", 10, 100, ILS),
			wantErr: "no date",
		},
		{
			name:    "zero quantity buy",
			tx:      buy(on, "main", "TEVA", 0, 100, ILS),
			wantErr: "non-positive quantity",
		},
		{
			name:    "negative quantity sell",
			tx:      sell(on, "main", "TEVA", -5, 100, ILS),
			wantErr: "non-positive quantity",
		},
		{
			name:    "fee without amount",
			tx:      Transaction{Date: on, Portfolio: "main", Ticker: "TEVA", Type: TxnFee},
			wantErr: "no fee amount",
		},
		{
			name: "fee with amount",
			tx: Transaction{
				Date: on, Portfolio: "main", Ticker: "TEVA", Type: TxnFee,
				Fee: M(10, ILS),
			},
		},
		{
			name: "dividend with per-share amount",
			tx: Transaction{
				Date: on, Portfolio: "main", Ticker: "TEVA", Type: TxnDividend,
				Price: M(2, ILS),
			},
		},
		{
			name:    "dividend without per-share amount",
			tx:      Transaction{Date: on, Portfolio: "main", Ticker: "TEVA", Type: TxnDividend},
			wantErr: "no per-share amount",
		},
		{
			name:    "unknown type",
			tx:      Transaction{Date: on, Portfolio: "main", Ticker: "TEVA", Type: "split"},
			wantErr: "unknown type",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.tx, portfolios)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate() = %q, want it to mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestValidateCollectsAllFailures(t *testing.T) {
	// one broken transaction, three distinct problems, all reported at once
	err := Validate(Transaction{Type: TxnBuy}, map[string]*Portfolio{})
	if err == nil {
		t.Fatal("Validate() accepted an empty transaction")
	}
	for _, want := range []string{"undeclared portfolio", "no ticker", "no date", "non-positive quantity"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %q: %q", want, err)
		}
	}
}

func TestFormatTransactions(t *testing.T) {
	portfolios := []*Portfolio{nominalPortfolio()}

	in := buy(NewDate(2025, time.March, 1), "main", "VTI", 10, 150, USD)
	in.Type = TxnBuyTransfer
	in.TransferID = "t1"
	out := sell(NewDate(2025, time.March, 1), "main", "TEVA", 10, 150, USD)
	out.Type = TxnSellTransfer
	out.TransferID = "t1"

	txs := []Transaction{
		sell(NewDate(2025, time.February, 10), "main", "TEVA", 5, 120, ILS),
		in, // arrives before its matching sell-transfer
		out,
		buy(NewDate(2025, time.January, 10), "main", "TEVA", 10, 100, ILS),
	}

	formatted, err := FormatTransactions(txs, portfolios)
	if err != nil {
		t.Fatalf("FormatTransactions() failed: %v", err)
	}

	// sorted by date, and on the transfer day the sell leg comes first
	wantOrder := []TxnType{TxnBuy, TxnSell, TxnSellTransfer, TxnBuyTransfer}
	for i, want := range wantOrder {
		if formatted[i].Type != want {
			t.Errorf("position %d = %s, want %s", i, formatted[i].Type, want)
		}
	}
	// every transaction got an id
	for _, tx := range formatted {
		if tx.ID == "" {
			t.Errorf("transaction %s has no id", tx)
		}
	}
	// the input slice is left untouched
	if txs[0].ID != "" {
		t.Error("FormatTransactions() mutated its input")
	}
}

func TestFormatTransactionsReordersAroundUnrelated(t *testing.T) {
	portfolios := []*Portfolio{nominalPortfolio()}
	day := NewDate(2025, time.March, 1)

	in := buy(day, "main", "VTI", 10, 150, USD)
	in.Type = TxnBuyTransfer
	in.TransferID = "t1"
	out := sell(day, "main", "TEVA", 10, 150, USD)
	out.Type = TxnSellTransfer
	out.TransferID = "t1"

	// an unrelated same-day purchase between the legs must not keep the
	// pair in input order
	formatted, err := FormatTransactions([]Transaction{
		in,
		buy(day, "main", "POLI", 5, 100, ILS),
		out,
	}, portfolios)
	if err != nil {
		t.Fatalf("FormatTransactions() failed: %v", err)
	}

	wantOrder := []TxnType{TxnSellTransfer, TxnBuy, TxnBuyTransfer}
	for i, want := range wantOrder {
		if formatted[i].Type != want {
			t.Errorf("position %d = %s, want %s", i, formatted[i].Type, want)
		}
	}
}

func TestFormatTransactionsRejectsInvalid(t *testing.T) {
	_, err := FormatTransactions([]Transaction{
		buy(NewDate(2025, time.January, 10), "nobody", "TEVA", 10, 100, ILS),
	}, []*Portfolio{nominalPortfolio()})
	if err == nil {
		t.Fatal("FormatTransactions() accepted an invalid stream")
	}
}
