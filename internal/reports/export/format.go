package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Column maps a row key to its display label
type Column struct {
	Key   string
	Label string
}

// Row is one exported record keyed by Column.Key
type Row map[string]interface{}

// Labels returns the display labels of columns
func Labels(columns []Column) []string {
	labels := make([]string, len(columns))
	for i, c := range columns {
		labels[i] = c.Label
	}
	return labels
}

// ValueFormat controls how FormatValue renders scalars
type ValueFormat struct {
	DateFormat      string
	TimestampFormat string
	NullValue       string
	// MoneyFormatter renders decimals; nil keeps the plain decimal string
	MoneyFormatter func(decimal.Decimal) string
}

// FormatValue renders a cell value as text, dereferencing pointers
func FormatValue(val interface{}, f ValueFormat) string {
	if val == nil {
		return f.NullValue
	}

	switch v := val.(type) {
	case string:
		return v
	case *string:
		if v == nil {
			return f.NullValue
		}
		return *v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case *int:
		if v == nil {
			return f.NullValue
		}
		return strconv.Itoa(*v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case *float64:
		if v == nil {
			return f.NullValue
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	case decimal.Decimal:
		if f.MoneyFormatter != nil {
			return f.MoneyFormatter(v)
		}
		return v.StringFixed(2)
	case *decimal.Decimal:
		if v == nil {
			return f.NullValue
		}
		return FormatValue(*v, f)
	case time.Time:
		return formatTime(v, f)
	case *time.Time:
		if v == nil {
			return f.NullValue
		}
		return formatTime(*v, f)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatTime(t time.Time, f ValueFormat) string {
	if t.IsZero() {
		return f.NullValue
	}
	// midnight values are dates
	if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 {
		return t.Format(f.TimestampFormat)
	}
	return t.Format(f.DateFormat)
}
