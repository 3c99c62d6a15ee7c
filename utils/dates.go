// utils/dates.go
package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

var drawLocation *time.Location

// DrawLocation returns the local timezone all draw scheduling is expressed in.
// Defaults to America/Caracas when DRAW_TIMEZONE is not set.
func DrawLocation() *time.Location {
	if drawLocation != nil {
		return drawLocation
	}
	name := os.Getenv("DRAW_TIMEZONE")
	if name == "" {
		name = "America/Caracas"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("⚠️  Invalid DRAW_TIMEZONE %q, falling back to UTC: %v", name, err)
		loc = time.UTC
	}
	drawLocation = loc
	return drawLocation
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// StartOfWeek returns local midnight of the Monday of t's week.
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	day := StartOfDay(t, loc)
	// time.Weekday is Sunday=0; shift so Monday=0
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// StartOfMonth returns local midnight of the first day of t's month.
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), 1, 0, 0, 0, 0, loc)
}

// ISOWeekday maps t to 1-7 (Mon-Sun), the numbering draw templates use.
func ISOWeekday(t time.Time, loc *time.Location) int {
	wd := int(t.In(loc).Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// CombineDateTime builds the scheduled instant from a local calendar date and
// an "HH:MM" template time.
func CombineDateTime(date time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("invalid draw time %q", hhmm)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("invalid draw time %q", hhmm)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("invalid draw time %q", hhmm)
	}
	ld := date.In(loc)
	return time.Date(ld.Year(), ld.Month(), ld.Day(), hour, minute, 0, 0, loc), nil
}
