package lotfolio

import "github.com/shopspring/decimal"

// An in-kind holding transfer is a same-date sell-transfer on the source
// ticker paired with one or more buy-transfers on destination tickers. The
// source's cost basis, not its market value at transfer time, carries over
// to the destination lots, and no taxable event occurs on either side.

// replayRank totally orders the types of same-date transactions: sell-
// transfers release their basis before anything else runs, buy-transfers
// receive it after everything else. A pairwise sell-before-buy rule is not
// enough for a stable sort: an unrelated transaction sitting between the
// legs would keep them in input order.
func replayRank(t TxnType) int {
	switch t {
	case TxnSellTransfer:
		return 0
	case TxnBuyTransfer:
		return 2
	default:
		return 1
	}
}

// transferKey groups the legs of one transfer event: the shared transfer id
// when recorded, otherwise the transfer date.
func transferKey(tx Transaction) string {
	if tx.TransferID != "" {
		return tx.TransferID
	}
	return tx.Date.String()
}

// planTransfers pre-scans the transaction stream and computes, for every
// transfer group, each destination's share of the source cost basis. When a
// single sell funds several destination buys, the basis is allocated
// pro-rata by each destination's transfer-time market value; when no leg
// carries a market value the split degrades to equal parts.
//
// The result maps group key to destination transaction id to fraction.
func planTransfers(txs []Transaction, rates *RateTable) map[string]map[string]decimal.Decimal {
	values := make(map[string]map[string]decimal.Decimal)
	totals := make(map[string]decimal.Decimal)

	for _, tx := range txs {
		if tx.Type != TxnBuyTransfer {
			continue
		}
		key := transferKey(tx)
		if values[key] == nil {
			values[key] = make(map[string]decimal.Decimal)
		}
		v := rates.Convert(tx.Amount(), ILS).Decimal()
		values[key][tx.ID] = v
		totals[key] = totals[key].Add(v)
	}

	plans := make(map[string]map[string]decimal.Decimal, len(values))
	for key, dests := range values {
		shares := make(map[string]decimal.Decimal, len(dests))
		total := totals[key]
		n := decimal.NewFromInt(int64(len(dests)))
		for id, v := range dests {
			if total.IsZero() {
				shares[id] = decimal.New(1, 0).Div(n)
			} else {
				shares[id] = v.Div(total)
			}
		}
		plans[key] = shares
	}
	return plans
}
