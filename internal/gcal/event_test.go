package gcal

import "testing"

const testZone = "America/Argentina/Buenos_Aires"

func TestNormalizeTime(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"14:00", "14:00:00"},
		{"14:00:30", "14:00:30"},
		{"09:05", "09:05:00"},
		{"23", "23:00:00"},
	}

	for _, c := range cases {
		if got := normalizeTime(c.in); got != c.want {
			t.Errorf("normalizeTime(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBuildEventBody(t *testing.T) {
	body := buildEventBody(EventInput{
		Title:       "Visita depto Palermo",
		Description: "Segunda visita",
		Date:        "2026-02-26",
		StartTime:   "14:00",
		EndTime:     "15:00",
		Location:    "Av. Santa Fe 3100",
	}, testZone)

	if body.Summary != "Visita depto Palermo" {
		t.Errorf("summary = %q", body.Summary)
	}
	if body.Start.DateTime != "2026-02-26T14:00:00" {
		t.Errorf("start = %q", body.Start.DateTime)
	}
	if body.End.DateTime != "2026-02-26T15:00:00" {
		t.Errorf("end = %q", body.End.DateTime)
	}
	if body.Start.TimeZone != testZone || body.End.TimeZone != testZone {
		t.Errorf("time zone not threaded: %q / %q", body.Start.TimeZone, body.End.TimeZone)
	}
	if body.Location != "Av. Santa Fe 3100" {
		t.Errorf("location = %q", body.Location)
	}
}

// Equal start and end must not produce a zero-length event; the end is pushed
// one hour forward.
func TestBuildEventBody_EqualTimesClampsEnd(t *testing.T) {
	body := buildEventBody(EventInput{
		Title:     "Firma",
		Date:      "2026-03-01",
		StartTime: "10:00",
		EndTime:   "10:00",
	}, testZone)

	if body.End.DateTime != "2026-03-01T11:00:00" {
		t.Errorf("end = %q, want 2026-03-01T11:00:00", body.End.DateTime)
	}
}

func TestBuildEventBody_StartAfterEndClampsEnd(t *testing.T) {
	body := buildEventBody(EventInput{
		Title:     "Tasación",
		Date:      "2026-03-01",
		StartTime: "18:30",
		EndTime:   "17:00",
	}, testZone)

	if body.End.DateTime != "2026-03-01T19:30:00" {
		t.Errorf("end = %q, want 2026-03-01T19:30:00", body.End.DateTime)
	}
}

// At the last hour of the day the clamp caps at 23, keeping the start's
// minute: 23:30/23:00 collapses to an end of 23:30:00 same day.
func TestBuildEventBody_ClampCapsAtHour23(t *testing.T) {
	body := buildEventBody(EventInput{
		Title:     "Visita",
		Date:      "2026-03-01",
		StartTime: "23:30",
		EndTime:   "23:00",
	}, testZone)

	if body.End.DateTime != "2026-03-01T23:30:00" {
		t.Errorf("end = %q, want 2026-03-01T23:30:00", body.End.DateTime)
	}
	if body.Start.DateTime != "2026-03-01T23:30:00" {
		t.Errorf("start = %q, want 2026-03-01T23:30:00", body.Start.DateTime)
	}
}

func TestBuildEventBody_OmitsAbsentOptionalFields(t *testing.T) {
	body := buildEventBody(EventInput{
		Title:     "Visita",
		Date:      "2026-03-01",
		StartTime: "10:00",
		EndTime:   "11:00",
	}, testZone)

	if body.Description != "" || body.Location != "" {
		t.Errorf("optional fields should stay empty: %+v", body)
	}
}
