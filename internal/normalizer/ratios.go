package normalizer

import (
	"github.com/shopspring/decimal"

	"invoiceapi/internal/model"
)

type ratio struct {
	key         string
	numerator   string
	denominator string
	scale       int64
}

var ratios = []ratio{
	{key: model.KeyCurrentRatio, numerator: model.KeyCapital, denominator: model.KeyTotalLiabilities, scale: 1},
	{key: model.KeyQuickRatio, numerator: model.KeyCapital, denominator: model.KeyTotalLiabilities, scale: 1},
	{key: model.KeyNetProfitMargin, numerator: model.KeyNetProfit, denominator: model.KeyTotalIncome, scale: 100},
	{key: model.KeyReturnOnAssets, numerator: model.KeyNetProfit, denominator: model.KeyTotalAssets, scale: 1},
	{key: model.KeyReturnOnEquity, numerator: model.KeyNetProfit, denominator: model.KeyCapital, scale: 1},
	{key: model.KeyDebtToEquityRatio, numerator: model.KeyTotalLiabilities, denominator: model.KeyCapital, scale: 1},
	{key: model.KeyDebtToAssetsRatio, numerator: model.KeyTotalLiabilities, denominator: model.KeyTotalAssets, scale: 1},
	{key: model.KeyTotalAssetTurnoverRatio, numerator: model.KeyTotalIncome, denominator: model.KeyTotalAssets, scale: 1},
}

// DeriveRatios fills ratio fields that are nil from the base figures of rec.
// Ratios already present are kept. A ratio stays nil when an operand is not a
// number or the denominator is zero.
func DeriveRatios(rec model.FinancialRecord) model.FinancialRecord {
	for _, r := range ratios {
		if cur, _ := rec.Get(r.key); cur != nil {
			continue
		}
		num, ok := number(rec, r.numerator)
		if !ok {
			continue
		}
		den, ok := number(rec, r.denominator)
		if !ok || den.IsZero() {
			continue
		}
		v := num.Div(den).Mul(decimal.NewFromInt(r.scale))
		rec = rec.With(r.key, v.InexactFloat64())
	}
	return rec
}

func number(rec model.FinancialRecord, key string) (decimal.Decimal, bool) {
	v, _ := rec.Get(key)
	f, ok := v.(float64)
	if !ok {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromFloat(f), true
}
