// Package timeutil rounds record timestamps. Creation dates are stored
// at minute precision; the half-minute rounds up.
package timeutil

import "time"

func RoundToMinute(t time.Time) time.Time {
	return t.Round(time.Minute)
}
