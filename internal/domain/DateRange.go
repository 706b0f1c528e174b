package domain

import (
	"fmt"
	"strings"
	"time"
)

// MaxInsightRangeDays limita a janela de uma única sincronização de insights
const MaxInsightRangeDays = 366

type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange valida datas no formato YYYY-MM-DD e garante start <= end.
// Falha sempre com *ValidationError.
func ParseDateRange(startDate, endDate string) (DateRange, error) {
	start, err := parseDay("start_date", startDate)
	if err != nil {
		return DateRange{}, err
	}

	end, err := parseDay("end_date", endDate)
	if err != nil {
		return DateRange{}, err
	}

	if start.After(end) {
		return DateRange{}, &ValidationError{Field: "start_date", Reason: "must not be after end_date"}
	}

	r := DateRange{Start: start, End: end}
	if r.Days() > MaxInsightRangeDays {
		return DateRange{}, &ValidationError{
			Field:  "end_date",
			Reason: fmt.Sprintf("range longer than %d days", MaxInsightRangeDays),
		}
	}

	return r, nil
}

func parseDay(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, &ValidationError{Field: field, Reason: "is required"}
	}

	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Reason: "must be a date in YYYY-MM-DD format"}
	}

	return t, nil
}

// Days conta os dias do intervalo, inclusive nas duas pontas
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

func (r DateRange) Contains(day time.Time) bool {
	d := TruncateDay(day)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Key é a forma normalizada usada em chaves de cache
func (r DateRange) Key() string {
	return r.Start.Format(time.DateOnly) + ".." + r.End.Format(time.DateOnly)
}

func (r DateRange) String() string {
	return r.Key()
}

// TruncateDay descarta horário e fuso, mantendo o dia do calendário em UTC
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
