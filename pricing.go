package megasena

import "math"

// PriceTable is the official bet price in BRL by numbers per game
var PriceTable = map[int]float64{
	6: 5.00, 7: 35.00, 8: 140.00, 9: 420.00,
	10: 1050.00, 11: 2310.00, 12: 4620.00, 13: 8580.00,
	14: 15015.00, 15: 25025.00, 16: 40040.00, 17: 61880.00,
	18: 92820.00, 19: 135660.00, 20: 193800.00,
}

// PriceOf returns the price of one bet of numbersPerGame numbers
func PriceOf(numbersPerGame int) (float64, bool) {
	price, ok := PriceTable[numbersPerGame]
	return price, ok
}

// ResolveGameCount turns a budget or an explicit count into the number of
// games to generate. A budget takes precedence and buys floor(budget/price)
// games; it must cover at least one.
func ResolveGameCount(budget *float64, gameCount *int, numbersPerGame int) (int, error) {
	if budget != nil {
		price, ok := PriceOf(numbersPerGame)
		if !ok {
			return 0, ErrInvalidParameter.WithDetailsf("no price for games of %d numbers", numbersPerGame)
		}
		if *budget < price {
			return 0, ErrInvalidBudget.WithDetailsf("budget R$ %.2f is below the R$ %.2f cost of one %d-number game",
				*budget, price, numbersPerGame)
		}
		count := math.Floor(*budget / price)
		if count > MaxGameCount || math.IsNaN(count) {
			return 0, ErrInvalidBudget.WithDetailsf("budget R$ %.2f buys more games than can be generated", *budget)
		}
		return int(count), nil
	}

	if gameCount != nil {
		if *gameCount > MaxGameCount {
			return 0, ErrInvalidParameter.WithDetailsf("at most %d games per request", MaxGameCount)
		}
		return *gameCount, nil
	}
	return 0, ErrInvalidParameter.WithDetails("provide a budget or a game count")
}
