package utils

import "time"

// LookbackRange devolve [hoje-days, ontem] em UTC, usado pelas sincronizações agendadas
func LookbackRange(now time.Time, days int) (time.Time, time.Time) {
	if days < 1 {
		days = 1
	}
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	return today.AddDate(0, 0, -days), today.AddDate(0, 0, -1)
}

func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
