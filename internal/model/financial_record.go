package model

import (
	"bytes"
	"encoding/json"
)

// Recognized FinancialRecord keys.
const (
	KeyCapital                 = "Capital"
	KeyInvestments             = "Investments"
	KeyNetProfit               = "Net-Profit"
	KeyTotalAssets             = "Total-Assets"
	KeyTotalExpenditure        = "Total-Expenditure"
	KeyTotalIncome             = "Total-Income"
	KeyTotalLiabilities        = "Total-Liabilities"
	KeyYear                    = "Year"
	KeyCurrentRatio            = "Current-Ratio"
	KeyQuickRatio              = "Quick-Ratio"
	KeyNetProfitMargin         = "Net-Profit-Margin"
	KeyReturnOnAssets          = "Return-on-Assets"
	KeyReturnOnEquity          = "Return-on-Equity"
	KeyDebtToEquityRatio       = "Debt-to-Equity-Ratio"
	KeyDebtToAssetsRatio       = "Debt-to-Assets-Ratio"
	KeyTotalAssetTurnoverRatio = "Total-Asset-Turnover-Ratio"
)

const recordKeyCount = 16

// RecordKeys lists the recognized keys in canonical order.
// The order is used for JSON and CSV output.
var RecordKeys = []string{
	KeyCapital,
	KeyInvestments,
	KeyNetProfit,
	KeyTotalAssets,
	KeyTotalExpenditure,
	KeyTotalIncome,
	KeyTotalLiabilities,
	KeyYear,
	KeyCurrentRatio,
	KeyQuickRatio,
	KeyNetProfitMargin,
	KeyReturnOnAssets,
	KeyReturnOnEquity,
	KeyDebtToEquityRatio,
	KeyDebtToAssetsRatio,
	KeyTotalAssetTurnoverRatio,
}

var recordKeyIndex = func() map[string]int {
	m := make(map[string]int, len(RecordKeys))
	for i, k := range RecordKeys {
		m[k] = i
	}
	return m
}()

// IsRecordKey reports whether key is one of the recognized FinancialRecord keys.
func IsRecordKey(key string) bool {
	_, ok := recordKeyIndex[key]
	return ok
}

// RawFieldBag is the untyped payload returned by the extraction service.
// No shape is guaranteed; only the normalizer reads its fields.
type RawFieldBag map[string]any

// FinancialRecord is the canonical, fixed-schema result of normalization.
// Every recognized key is always present; each value is a float64, a string or nil.
// A FinancialRecord is a value type and is never mutated after construction.
type FinancialRecord struct {
	values [recordKeyCount]any
}

// NewFinancialRecord builds a record from already-coerced values.
// Unrecognized keys are ignored and missing keys are nil.
func NewFinancialRecord(values map[string]any) FinancialRecord {
	var r FinancialRecord
	for k, v := range values {
		if i, ok := recordKeyIndex[k]; ok {
			r.values[i] = v
		}
	}
	return r
}

// Get returns the value stored under key. ok is false for unrecognized keys.
func (r FinancialRecord) Get(key string) (v any, ok bool) {
	i, ok := recordKeyIndex[key]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// With returns a copy of r with key set to v. Unrecognized keys return r unchanged.
func (r FinancialRecord) With(key string, v any) FinancialRecord {
	if i, ok := recordKeyIndex[key]; ok {
		r.values[i] = v
	}
	return r
}

// Map returns the record as a plain map holding every recognized key.
func (r FinancialRecord) Map() map[string]any {
	m := make(map[string]any, len(RecordKeys))
	for i, k := range RecordKeys {
		m[k] = r.values[i]
	}
	return m
}

// Values returns the values in canonical key order.
func (r FinancialRecord) Values() []any {
	out := make([]any, len(r.values))
	copy(out, r.values[:])
	return out
}

// MarshalJSON encodes the record as an object with keys in canonical order.
func (r FinancialRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range RecordKeys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
