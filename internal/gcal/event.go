package gcal

import (
	"fmt"
	"strconv"
	"strings"
)

// EventInput describes one visit in provider-neutral terms. Built fresh per
// sync call from the current visit and property state, never persisted.
type EventInput struct {
	Title       string
	Description string // optional, "" omitted
	Date        string // ISO date, e.g. "2026-02-26"
	StartTime   string // wall clock "14:00" or "14:00:00"
	EndTime     string
	Location    string // optional, "" omitted
}

type eventDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type eventBody struct {
	Summary     string        `json:"summary"`
	Description string        `json:"description,omitempty"`
	Location    string        `json:"location,omitempty"`
	Start       eventDateTime `json:"start"`
	End         eventDateTime `json:"end"`
}

// normalizeTime widens "HH:mm" or "HH:mm:ss" to "HH:mm:ss".
func normalizeTime(t string) string {
	parts := strings.Split(t, ":")
	h := parts[0]
	m, s := "00", "00"
	if len(parts) > 1 {
		m = parts[1]
	}
	if len(parts) > 2 {
		s = parts[2]
	}
	return h + ":" + m + ":" + s
}

// buildEventBody translates an EventInput into the provider's event shape.
//
// When the normalized start is not strictly before the end (equal times, or
// start after end), the end is pushed to start hour + 1 capped at hour 23,
// keeping the start's minute. The provider rejects zero and negative length
// events ("timeRangeEmpty"); this clamp keeps the event submittable without
// attempting calendar-correct duration math.
func buildEventBody(input EventInput, timeZone string) eventBody {
	start := normalizeTime(input.StartTime)
	end := normalizeTime(input.EndTime)

	endDateTime := input.Date + "T" + end
	if start >= end {
		startParts := strings.Split(input.StartTime, ":")
		h, _ := strconv.Atoi(startParts[0])
		m := 0
		if len(startParts) > 1 {
			m, _ = strconv.Atoi(startParts[1])
		}
		endDateTime = fmt.Sprintf("%sT%02d:%02d:00", input.Date, min(h+1, 23), m)
	}

	return eventBody{
		Summary:     input.Title,
		Description: input.Description,
		Location:    input.Location,
		Start:       eventDateTime{DateTime: input.Date + "T" + start, TimeZone: timeZone},
		End:         eventDateTime{DateTime: endDateTime, TimeZone: timeZone},
	}
}
