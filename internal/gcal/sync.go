package gcal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// calendarEvent is the subset of the provider's event resource we read back.
type calendarEvent struct {
	ID       string `json:"id"`
	HTMLLink string `json:"htmlLink"`
	Summary  string `json:"summary"`
}

// CreateEvent inserts the event on the user's primary calendar and returns
// the provider-assigned event ID. The caller persists the ID on the visit.
func (c *Client) CreateEvent(ctx context.Context, accessToken string, input EventInput) (string, error) {
	var event calendarEvent
	err := c.calendarDo(ctx, accessToken, http.MethodPost,
		"/calendars/primary/events", buildEventBody(input, c.timeZone), &event)
	if err != nil {
		return "", err
	}
	return event.ID, nil
}

// UpdateEvent patches an existing remote event with a fully rebuilt body.
func (c *Client) UpdateEvent(ctx context.Context, accessToken, eventID string, input EventInput) error {
	return c.calendarDo(ctx, accessToken, http.MethodPatch,
		"/calendars/primary/events/"+eventID, buildEventBody(input, c.timeZone), nil)
}

// DeleteEvent removes the remote event.
func (c *Client) DeleteEvent(ctx context.Context, accessToken, eventID string) error {
	return c.calendarDo(ctx, accessToken, http.MethodDelete,
		"/calendars/primary/events/"+eventID, nil, nil)
}

// calendarDo performs one authenticated calendar API call. Non-2xx responses
// are logged with status and body and returned as *ProviderError.
func (c *Client) calendarDo(ctx context.Context, accessToken, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Calendar request failed", "method", method, "path", path, "error", err)
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		resBody, _ := io.ReadAll(res.Body)
		c.logger.Error("Calendar API error",
			"method", method, "path", path,
			"status", res.StatusCode, "body", string(resBody))
		return &ProviderError{Status: res.StatusCode}
	}

	if res.StatusCode == http.StatusNoContent || out == nil {
		io.Copy(io.Discard, res.Body)
		return nil
	}

	return json.NewDecoder(res.Body).Decode(out)
}
