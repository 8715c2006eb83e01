package dashboard

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MonthLabels are the chart labels of the revenue series, January first
var MonthLabels = [12]string{"Jan", "Fév", "Mar", "Avr", "Mai", "Juin", "Juil", "Août", "Sep", "Oct", "Nov", "Déc"}

const day = 24 * time.Hour

// ZeroRevenue is the twelve-month series with every month at zero
func ZeroRevenue() []RevenuePoint {
	series := make([]RevenuePoint, len(MonthLabels))
	for i, label := range MonthLabels {
		series[i] = RevenuePoint{Name: label, Value: decimal.Zero}
	}
	return series
}

// MonthlyRevenue buckets investments paid during year into calendar months.
// The result always has twelve entries in calendar order.
func MonthlyRevenue(rows []InvestmentRow, year int) []RevenuePoint {
	series := ZeroRevenue()
	for _, row := range rows {
		if row.PaidAt == nil || row.PaidAt.Year() != year {
			continue
		}
		m := int(row.PaidAt.Month()) - 1
		series[m].Value = series[m].Value.Add(row.Amount)
	}
	return series
}

// TopWithOverflow counts names, keeps the k most frequent and folds the rest into OthersLabel.
// Ties keep the order in which names were first seen. Empty names count as UnknownCulture.
func TopWithOverflow(names []string, k int) []TypeCount {
	index := make(map[string]int)
	counts := []TypeCount{}
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			name = UnknownCulture
		}
		i, ok := index[name]
		if !ok {
			i = len(counts)
			index[name] = i
			counts = append(counts, TypeCount{Name: name})
		}
		counts[i].Value++
	}

	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Value > counts[j].Value })

	if k < 0 || len(counts) <= k {
		return counts
	}
	others := TypeCount{Name: OthersLabel}
	for _, c := range counts[k:] {
		others.Value += c.Value
	}
	return append(counts[:k:k], others)
}

// FormatTimeAgo renders how long ago then was, in French
func FormatTimeAgo(then, now time.Time) string {
	elapsed := now.Sub(then)
	days := int(elapsed / day)
	hours := int(elapsed / time.Hour)
	minutes := int(elapsed / time.Minute)

	switch {
	case days > 0:
		return fmt.Sprintf("Il y a %d jour%s", days, plural(days))
	case hours > 0:
		return fmt.Sprintf("Il y a %d heure%s", hours, plural(hours))
	case minutes > 0:
		return fmt.Sprintf("Il y a %d minute%s", minutes, plural(minutes))
	default:
		return "À l'instant"
	}
}

// DaysUntil is the number of started days between now and planned, negative when overdue
func DaysUntil(planned, now time.Time) int {
	return int(math.Ceil(float64(planned.Sub(now)) / float64(day)))
}

// MilestoneProgress ramps from 0 to 100 over the last 30 days before the due date
func MilestoneProgress(daysUntil int) int {
	switch {
	case daysUntil <= 0:
		return 100
	case daysUntil <= 30:
		return 100 - int(math.Round(float64(daysUntil)/30*100))
	default:
		return 10
	}
}

// FormatDaysUntil renders a countdown as a French phrase
func FormatDaysUntil(days int) string {
	switch {
	case days < 0:
		return "En retard"
	case days == 0:
		return "Aujourd'hui"
	case days == 1:
		return "Demain"
	case days < 7:
		return fmt.Sprintf("Dans %d jours", days)
	case days < 30:
		weeks := (days + 6) / 7
		return fmt.Sprintf("Dans %d semaine%s", weeks, plural(weeks))
	default:
		return fmt.Sprintf("Dans %d mois", (days+29)/30)
	}
}

// FormatAriary renders an amount with space-grouped thousands, e.g. "1 234 567 Ar"
func FormatAriary(amount decimal.Decimal) string {
	digits := amount.Round(0).Abs().String()
	var b strings.Builder
	if amount.Round(0).IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	b.WriteString(" Ar")
	return b.String()
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
