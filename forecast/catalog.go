package forecast

import (
	"time"

	"app/models"
)

// Season names used to key seasonal multiplier tables.
const (
	SeasonWinter = "winter"
	SeasonSpring = "spring"
	SeasonSummer = "summer"
	SeasonAutumn = "autumn"
)

// SeasonOf maps a calendar month to its season (northern hemisphere).
func SeasonOf(month time.Month) string {
	switch month {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	default:
		return SeasonAutumn
	}
}

// CategoryProfile describes how one product category behaves over the year:
// demand multipliers per season, the months where demand peaks, the default
// price elasticity used when history is too thin to estimate one, and
// whether stock in this category ages out.
type CategoryProfile struct {
	Seasonal           map[string]float64
	PeakMonths         []time.Month
	DefaultElasticity  float64
	ShelfLifeSensitive bool
	Trend              string
}

// Catalog maps category name to its profile. Passed into the Forecaster at
// construction so tests can substitute alternate tables.
type Catalog map[string]CategoryProfile

// DefaultCatalog returns the production category table for the drinks domain.
func DefaultCatalog() Catalog {
	return Catalog{
		models.CategoryBeer: {
			Seasonal:           map[string]float64{SeasonWinter: 0.80, SeasonSpring: 1.00, SeasonSummer: 1.35, SeasonAutumn: 0.95},
			PeakMonths:         []time.Month{time.June, time.July, time.August},
			DefaultElasticity:  -1.2,
			ShelfLifeSensitive: true,
			Trend:              models.CategoryTrendDeclining,
		},
		models.CategoryWine: {
			Seasonal:          map[string]float64{SeasonWinter: 1.25, SeasonSpring: 0.90, SeasonSummer: 0.85, SeasonAutumn: 1.15},
			PeakMonths:        []time.Month{time.November, time.December},
			DefaultElasticity: -0.8,
			Trend:             models.CategoryTrendStable,
		},
		models.CategorySpirits: {
			Seasonal:          map[string]float64{SeasonWinter: 1.30, SeasonSpring: 0.90, SeasonSummer: 0.85, SeasonAutumn: 1.00},
			PeakMonths:        []time.Month{time.November, time.December},
			DefaultElasticity: -0.6,
			Trend:             models.CategoryTrendGrowing,
		},
		models.CategoryCider: {
			Seasonal:           map[string]float64{SeasonWinter: 0.75, SeasonSpring: 0.95, SeasonSummer: 1.20, SeasonAutumn: 1.25},
			PeakMonths:         []time.Month{time.September, time.October},
			DefaultElasticity:  -1.1,
			ShelfLifeSensitive: true,
			Trend:              models.CategoryTrendStable,
		},
		models.CategoryRTD: {
			Seasonal:           map[string]float64{SeasonWinter: 0.70, SeasonSpring: 1.05, SeasonSummer: 1.40, SeasonAutumn: 0.85},
			PeakMonths:         []time.Month{time.May, time.June, time.July, time.August},
			DefaultElasticity:  -1.5,
			ShelfLifeSensitive: true,
			Trend:              models.CategoryTrendGrowing,
		},
	}
}

// genericProfile backs products whose category is not in the catalog.
var genericProfile = CategoryProfile{
	Seasonal:          map[string]float64{SeasonWinter: 1.0, SeasonSpring: 1.0, SeasonSummer: 1.0, SeasonAutumn: 1.0},
	DefaultElasticity: -1.0,
	Trend:             models.CategoryTrendStable,
}

// profileFor looks up the category profile, falling back to a neutral one.
func (c Catalog) profileFor(category string) CategoryProfile {
	if p, ok := c[category]; ok {
		return p
	}
	return genericProfile
}

// DaysUntilPeak returns the days until the category's next peak month:
// zero inside a peak month, -1 for categories without peak months.
func (c Catalog) DaysUntilPeak(category string, now time.Time) int {
	return c.profileFor(category).daysUntilPeak(now)
}

// daysUntilPeak returns the number of days from now until the start of the
// next peak month. Zero when now is already inside a peak month. Returns -1
// when the profile has no peak months.
func (p CategoryProfile) daysUntilPeak(now time.Time) int {
	if len(p.PeakMonths) == 0 {
		return -1
	}
	for _, m := range p.PeakMonths {
		if now.Month() == m {
			return 0
		}
	}
	best := -1
	for _, m := range p.PeakMonths {
		next := time.Date(now.Year(), m, 1, 0, 0, 0, 0, now.Location())
		if !next.After(now) {
			next = next.AddDate(1, 0, 0)
		}
		days := int(next.Sub(now).Hours() / 24)
		if best == -1 || days < best {
			best = days
		}
	}
	return best
}
