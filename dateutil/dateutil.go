// Package dateutil handles the date tags that name the files of an update.
package dateutil

import (
	"time"

	"github.com/araddon/dateparse"
	"github.com/jinzhu/now"
)

// TagLayout is the layout of a date tag, e.g. 20210501.
const TagLayout = "20060102"

// Today returns the tag for the current day.
func Today() string {
	return now.BeginningOfDay().Format(TagLayout)
}

// Parse parses a date in many formats.
func Parse(value string) (time.Time, error) {
	return dateparse.ParseStrict(value)
}

// Tag turns a date in any format dateparse understands into a tag. If value
// cannot be parsed, it is returned unchanged and ok is false; tags are free
// form and callers may use them anyway.
func Tag(value string) (tag string, ok bool) {
	if _, err := time.Parse(TagLayout, value); err == nil {
		return value, true
	}
	t, err := Parse(value)
	if err != nil {
		return value, false
	}
	return t.Format(TagLayout), true
}
