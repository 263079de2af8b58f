package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
	pkgerrors "github.com/parklyapp/parkly-backend/pkg/errors"
)

// minutesPerDay is the threshold between hourly and daily pricing.
const minutesPerDay = 24 * 60

var hoursPerDay = decimal.NewFromInt(24)

// Quote converts an elapsed duration into a monetary cost under the given
// tariff. It is pure and deterministic.
//
// The canonical rounding policy: the duration is ceiled to whole billing
// units first (hours below 24h, days at or above), then multiplied by the
// rate, then rounded half-up to 2 decimal places. Sub-24h costs are capped
// by the daily rate when one is set.
func Quote(durationMinutes int, tariff *models.TariffPlan) (decimal.Decimal, error) {
	if tariff == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeInternal, "tariff required for quote")
	}
	if durationMinutes < 0 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "duration cannot be negative")
	}

	if durationMinutes < minutesPerDay {
		hours := ceilDiv(durationMinutes, 60)
		cost := tariff.HourlyRate.Mul(decimal.NewFromInt(int64(hours)))
		if tariff.DailyRate != nil && cost.GreaterThan(*tariff.DailyRate) {
			cost = *tariff.DailyRate
		}
		return cost.Round(2), nil
	}

	days := decimal.NewFromInt(int64(ceilDiv(durationMinutes, minutesPerDay)))
	if tariff.DailyRate != nil {
		return tariff.DailyRate.Mul(days).Round(2), nil
	}
	return tariff.HourlyRate.Mul(hoursPerDay).Mul(days).Round(2), nil
}

func ceilDiv(n, unit int) int {
	return (n + unit - 1) / unit
}
