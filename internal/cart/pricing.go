package cart

import "github.com/shopspring/decimal"

// DefaultTaxRate is the IGV rate applied on top of the subtotal.
var DefaultTaxRate = decimal.RequireFromString("0.18")

// Summary is the priced view of one cart.
type Summary struct {
	TotalStarters  int             `json:"total_starters"`
	TotalMains     int             `json:"total_mains"`
	MenusIncluded  int             `json:"menus_included"`
	ExcessStarters int             `json:"excess_starters"`
	StartersTotal  decimal.Decimal `json:"starters_total"`
	MainsTotal     decimal.Decimal `json:"mains_total"`
	OthersTotal    decimal.Decimal `json:"others_total"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
}

// Partition splits items into starters, mains and others, keeping list order.
func Partition(items []Item, c *Classifier) (starters, mains, others []Item) {
	for _, it := range items {
		switch c.Classify(it.Product.ProductTypeName) {
		case CategoryStarter:
			starters = append(starters, it)
		case CategoryMain:
			mains = append(mains, it)
		default:
			others = append(others, it)
		}
	}
	return starters, mains, others
}

// Summarize prices a cart.
//
// Each main course carries one starter for free. Starters beyond the number of
// mains are charged at their unit price, consuming starter lines in the order
// they were added. Mains and other items are charged at their line subtotal.
// Tax is rounded to cents; total = subtotal + tax.
func Summarize(items []Item, c *Classifier, taxRate decimal.Decimal) Summary {
	starters, mains, others := Partition(items, c)

	var sum Summary
	for _, it := range starters {
		sum.TotalStarters += it.Quantity
	}
	for _, it := range mains {
		sum.TotalMains += it.Quantity
		sum.MainsTotal = sum.MainsTotal.Add(it.Subtotal)
	}
	for _, it := range others {
		sum.OthersTotal = sum.OthersTotal.Add(it.Subtotal)
	}

	sum.MenusIncluded = min(sum.TotalStarters, sum.TotalMains)
	if sum.TotalStarters > sum.TotalMains {
		sum.ExcessStarters = sum.TotalStarters - sum.TotalMains
		remaining := sum.ExcessStarters
		for _, it := range starters {
			if remaining == 0 {
				break
			}
			charged := min(it.Quantity, remaining)
			sum.StartersTotal = sum.StartersTotal.Add(lineSubtotal(it.Product.Price, charged))
			remaining -= charged
		}
	}

	sum.Subtotal = sum.MainsTotal.Add(sum.StartersTotal).Add(sum.OthersTotal)
	sum.Tax = sum.Subtotal.Mul(taxRate).Round(2)
	sum.Total = sum.Subtotal.Add(sum.Tax)
	return sum
}
