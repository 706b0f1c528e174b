package integrator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/adsync-api/internal/domain"
)

var dayLayouts = []string{
	time.DateOnly,
	time.DateTime,
	"20060102",
	time.RFC3339,
}

// ParseDay aceita os formatos de data usados pelas plataformas e devolve o dia em UTC
func ParseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return domain.TruncateDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

// ParseCount interpreta contadores que podem vir como string. Vazio vale zero.
func ParseCount(field, value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// algumas APIs devolvem "12.0" para contadores
		d, derr := decimal.NewFromString(value)
		if derr != nil || !d.Equal(d.Truncate(0)) {
			return 0, fmt.Errorf("invalid %s %q", field, value)
		}
		return d.IntPart(), nil
	}
	if n < 0 {
		return 0, fmt.Errorf("negative %s %q", field, value)
	}

	return n, nil
}

// ParseAmount interpreta valores monetários e frações sem passar por float
func ParseAmount(field, value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q", field, value)
	}

	return d, nil
}

// InvalidRow marca uma linha remota que não pôde ser interpretada
func InvalidRow(rawDate string, err error) domain.NormalizedInsight {
	return domain.NormalizedInsight{RawDate: rawDate, ParseError: err.Error()}
}

// DailyRow monta a linha normalizada de um único dia
func DailyRow(day time.Time, rawDate string, metrics domain.InsightMetrics) domain.NormalizedInsight {
	return domain.NormalizedInsight{
		Date:    day,
		DateEnd: day,
		Metrics: metrics,
		RawDate: rawDate,
	}
}
