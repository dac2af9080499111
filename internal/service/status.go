package service

import (
	"fmt"
	"time"
)

// StatusLabel formats the "last updated" text. A sheet-provided date is
// shown as is; otherwise the local render date stands in for it.
func StatusLabel(asOfDate string, now time.Time) string {
	clock := now.Format("15:04")
	if asOfDate != "" {
		return fmt.Sprintf("Actualizado: %s - %s", asOfDate, clock)
	}
	return fmt.Sprintf("Fecha: %s - %s", now.Format("2/1/2006"), clock)
}
