// Package datetime converts between time.Time and the date types the ad
// service puts on the wire.
package datetime

import (
	"fmt"
	"time"
)

// Date is a calendar date without a time zone.
type Date struct {
	Year  int `xml:"year" json:"year"`
	Month int `xml:"month" json:"month"`
	Day   int `xml:"day" json:"day"`
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// DateTime is a wall-clock time in a named time zone.
// An empty TimeZoneID is interpreted as UTC.
type DateTime struct {
	Date       Date   `xml:"date" json:"date"`
	Hour       int    `xml:"hour" json:"hour"`
	Minute     int    `xml:"minute" json:"minute"`
	Second     int    `xml:"second" json:"second"`
	TimeZoneID string `xml:"timeZoneID,omitempty" json:"timeZoneId,omitempty"`
}

func (dt DateTime) String() string {
	s := fmt.Sprintf("%sT%02d:%02d:%02d", dt.Date, dt.Hour, dt.Minute, dt.Second)
	if dt.TimeZoneID != "" {
		s += "[" + dt.TimeZoneID + "]"
	}
	return s
}

// ToDate returns the calendar date of t in t's own location.
func ToDate(t time.Time) Date {
	return Date{
		Year:  t.Year(),
		Month: int(t.Month()),
		Day:   t.Day(),
	}
}

// FromDate returns midnight of d in loc. A nil loc means time.Local.
func FromDate(d Date, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, loc)
}

// ToDateTime captures t's wall clock together with a zone id the service
// can resolve. Sub-second precision is dropped.
//
// A location that is not in the zone database, such as time.Local or a
// time.FixedZone, is replaced by the matching Etc/GMT zone when its offset
// is a whole number of hours, and by UTC otherwise. The instant is kept.
func ToDateTime(t time.Time) DateTime {
	t, zone := zoneOf(t)
	return DateTime{
		Date:       ToDate(t),
		Hour:       t.Hour(),
		Minute:     t.Minute(),
		Second:     t.Second(),
		TimeZoneID: zone,
	}
}

func zoneOf(t time.Time) (time.Time, string) {
	_, offset := t.Zone()
	name := t.Location().String()
	if name != "" && name != "Local" {
		if loc, err := time.LoadLocation(name); err == nil {
			// 同名但是偏移不一样的，例如 FixedZone("EST", 0)，不能用这个名字
			if _, off := t.In(loc).Zone(); off == offset {
				return t, name
			}
		}
	}
	if offset == 0 {
		return t.UTC(), "UTC"
	}
	// Etc/GMT 的符号和 UTC 偏移是反的，Etc/GMT-4 就是 UTC+4
	hours := -offset / 3600
	if offset%3600 == 0 && hours >= -14 && hours <= 12 {
		return t, fmt.Sprintf("Etc/GMT%+d", hours)
	}
	return t.UTC(), "UTC"
}

// FromDateTime resolves dt.TimeZoneID through the zone database and
// returns the matching instant.
func FromDateTime(dt DateTime) (time.Time, error) {
	loc := time.UTC
	if dt.TimeZoneID != "" {
		var err error
		loc, err = time.LoadLocation(dt.TimeZoneID)
		if err != nil {
			return time.Time{}, fmt.Errorf("datetime: unknown time zone %q: %w", dt.TimeZoneID, err)
		}
	}
	return time.Date(dt.Date.Year, time.Month(dt.Date.Month), dt.Date.Day,
		dt.Hour, dt.Minute, dt.Second, 0, loc), nil
}
