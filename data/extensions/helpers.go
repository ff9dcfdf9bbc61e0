package extensions

import (
	"fmt"
	"time"
)

var (
	// formats the remote api has been seen to use for measurement dates
	dateFormats = []string{
		time.DateOnly,
		time.RFC3339,
		"2006-01-02T15:04:05",
		time.DateTime,
	}
)

// FilterMultiple return all elements that satisfy the predicate
func FilterMultiple[T any](elements []T, predicate func(T) bool) (results []T) {
	for _, element := range elements {
		if predicate(element) {
			results = append(results, element)
		}
	}
	return
}

// FilterFirst return the first element that satisfies the predicate
func FilterFirst[T any](elements []T, predicate func(T) bool) (result T, ok bool) {
	for _, element := range elements {
		if predicate(element) {
			return element, true
		}
	}
	return
}

// FmtShort formats a time in a date only string
func FmtShort(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DateOf drops the clock part of t, keeping the calendar day it falls on.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts a plain date or a timestamp and returns the calendar day at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	for _, format := range dateFormats {
		t, err := time.Parse(format, s)
		if err != nil {
			continue
		}
		return DateOf(t), nil
	}
	return time.Time{}, fmt.Errorf("error converting date %q to time.Time", s)
}
