package dateutil

import (
	"testing"
	"time"
)

func TestTag(t *testing.T) {
	var cases = []struct {
		value string
		tag   string
		ok    bool
	}{
		{"20210501", "20210501", true},
		{"2021-05-01", "20210501", true},
		{"May 1, 2021", "20210501", true},
		{"final-may", "final-may", false},
		{"", "", false},
	}
	for _, c := range cases {
		tag, ok := Tag(c.value)
		if tag != c.tag || ok != c.ok {
			t.Errorf("Tag(%q) = %q, %v, want %q, %v", c.value, tag, ok, c.tag, c.ok)
		}
	}
}

func TestToday(t *testing.T) {
	got := Today()
	if _, err := time.Parse(TagLayout, got); err != nil {
		t.Fatalf("today is not a tag: %s", got)
	}
}
