package models

import "math"

// weeklySalesEpsilon floors the weekly sales rate so weeks-of-stock never
// divides by zero.
const weeklySalesEpsilon = 0.01

// WeeksOfStock is the runway before stockout: inventory divided by the
// weekly sales rate, with the rate floored at a small epsilon.
func WeeksOfStock(inventoryLevel int, weeklySales float64) float64 {
	return float64(inventoryLevel) / math.Max(weeklySales, weeklySalesEpsilon)
}
