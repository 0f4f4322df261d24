package calendar

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const eventsPath = "/events/"

// Operation names attached to each request's context.
const (
	OpListEvents            = "list_events"
	OpListEventsByDateRange = "list_events_by_date_range"
	OpGetEvent              = "get_event"
	OpCreateEvent           = "create_event"
	OpUpdateEvent           = "update_event"
	OpDeleteEvent           = "delete_event"
	OpCheckOverlap          = "check_overlap"
)

// ListOptions filters ListEvents. A zero time omits the matching parameter.
type ListOptions struct {
	Start time.Time
	End   time.Time
}

// OverlapQuery describes a candidate time range for CheckOverlap.
// An empty ExcludeID omits the exclude_id parameter.
type OverlapQuery struct {
	Start     time.Time
	End       time.Time
	ExcludeID string
}

// ListEvents returns events, optionally limited to those touching [Start, End].
func (c *Client) ListEvents(ctx context.Context, opts ListOptions) ([]Event, error) {
	params := url.Values{}
	if !opts.Start.IsZero() {
		params.Set("start_date", FormatTimestamp(opts.Start))
	}
	if !opts.End.IsZero() {
		params.Set("end_date", FormatTimestamp(opts.End))
	}

	var events []Event
	if err := c.do(ctx, OpListEvents, http.MethodGet, eventsPath, params, nil, &events); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// ListEventsByDateRange returns the events the server places inside
// [start, end], with recurring events expanded server-side. Both bounds are
// always sent; the server rejects a missing or invalid one with 400.
func (c *Client) ListEventsByDateRange(ctx context.Context, start, end time.Time) ([]Event, error) {
	params := url.Values{}
	params.Set("start_date", FormatTimestamp(start))
	params.Set("end_date", FormatTimestamp(end))

	var events []Event
	if err := c.do(ctx, OpListEventsByDateRange, http.MethodGet, eventsPath+"by_date_range/", params, nil, &events); err != nil {
		return nil, fmt.Errorf("list events by date range: %w", err)
	}
	return events, nil
}

// GetEvent fetches a single event by id.
func (c *Client) GetEvent(ctx context.Context, id string) (*Event, error) {
	path, err := itemPath(id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	var event Event
	if err := c.do(ctx, OpGetEvent, http.MethodGet, path, nil, nil, &event); err != nil {
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	return &event, nil
}

// CreateEvent creates an event and returns it with its server-assigned id.
// Calling it twice creates two events.
func (c *Client) CreateEvent(ctx context.Context, input EventInput) (*Event, error) {
	var event Event
	if err := c.do(ctx, OpCreateEvent, http.MethodPost, eventsPath, nil, input, &event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return &event, nil
}

// UpdateEvent replaces the event with the given id.
func (c *Client) UpdateEvent(ctx context.Context, id string, input EventInput) (*Event, error) {
	path, err := itemPath(id)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	var event Event
	if err := c.do(ctx, OpUpdateEvent, http.MethodPut, path, nil, input, &event); err != nil {
		return nil, fmt.Errorf("update event %s: %w", id, err)
	}
	return &event, nil
}

// DeleteEvent deletes the event with the given id. The response body is ignored.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	path, err := itemPath(id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if err := c.do(ctx, OpDeleteEvent, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	return nil
}

// CheckOverlap asks the server whether [Start, End] conflicts with existing
// events. The result is returned undecoded; see OverlapResult.Report.
func (c *Client) CheckOverlap(ctx context.Context, q OverlapQuery) (OverlapResult, error) {
	params := url.Values{}
	params.Set("start_time", FormatTimestamp(q.Start))
	params.Set("end_time", FormatTimestamp(q.End))
	if q.ExcludeID != "" {
		params.Set("exclude_id", q.ExcludeID)
	}

	var result OverlapResult
	if err := c.do(ctx, OpCheckOverlap, http.MethodGet, eventsPath+"check_overlap/", params, nil, &result); err != nil {
		return OverlapResult{}, fmt.Errorf("check overlap: %w", err)
	}
	return result, nil
}

// itemPath escapes id as a single path segment. The id is used as given;
// an empty one would address the collection instead of an item.
func itemPath(id string) (string, error) {
	if id == "" {
		return "", ErrEmptyID
	}
	return eventsPath + url.PathEscape(id) + "/", nil
}
