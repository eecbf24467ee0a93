// Package normalizer turns an extraction field-bag into a canonical FinancialRecord.
// It is the only place that reads raw field-bag values.
package normalizer

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"invoiceapi/internal/model"
)

// NotAvailable is the extractor's sentinel for a field it could not read.
const NotAvailable = "N/A"

// numericString matches digits with optional thousands separators.
var numericString = regexp.MustCompile(`^[0-9,]+$`)

// Normalize maps raw onto the canonical record. It never fails: input that is
// absent or not a keyed mapping yields the all-nil record, and values that
// cannot be coerced become nil.
func Normalize(raw any) model.FinancialRecord {
	bag, ok := asBag(raw)
	if !ok {
		return model.FinancialRecord{}
	}
	values := make(map[string]any, len(model.RecordKeys))
	for _, key := range model.RecordKeys {
		v, present := bag[key]
		if !present {
			continue
		}
		values[key] = coerce(v)
	}
	return model.NewFinancialRecord(values)
}

func asBag(raw any) (map[string]any, bool) {
	switch b := raw.(type) {
	case model.RawFieldBag:
		return b, b != nil
	case map[string]any:
		return b, b != nil
	case model.FinancialRecord:
		return b.Map(), true
	default:
		return nil, false
	}
}

func coerce(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return coerceString(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return coerceString(t.String())
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case decimal.Decimal:
		return t.InexactFloat64()
	case []any:
		// Several mentions of one field: the first usable one wins.
		for _, item := range t {
			if _, nested := item.([]any); nested {
				continue
			}
			if c := coerce(item); c != nil {
				return c
			}
		}
		return nil
	case []string:
		for _, item := range t {
			if c := coerceString(item); c != nil {
				return c
			}
		}
		return nil
	default:
		return nil
	}
}

func coerceString(s string) any {
	if s == NotAvailable {
		return nil
	}
	if numericString.MatchString(s) {
		digits := strings.ReplaceAll(s, ",", "")
		if digits == "" {
			return s
		}
		d, err := decimal.NewFromString(digits)
		if err != nil {
			return s
		}
		return d.InexactFloat64()
	}
	return s
}

func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
