package calendar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// EventID is a server-assigned identifier. The backend may send it as a JSON
// string or a JSON number; the original form is kept so re-encoding an event
// reproduces what the server sent.
type EventID struct {
	value   string
	numeric bool
}

// StringID returns an EventID that encodes as a JSON string.
func StringID(s string) EventID {
	return EventID{value: s}
}

// IntID returns an EventID that encodes as a JSON number.
func IntID(n int64) EventID {
	return EventID{value: strconv.FormatInt(n, 10), numeric: true}
}

// String returns the textual form used in request paths and query strings.
func (id EventID) String() string {
	return id.value
}

// IsZero reports whether the id was never set.
func (id EventID) IsZero() bool {
	return id.value == ""
}

func (id EventID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

func (id *EventID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = EventID{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("event id: %w", err)
		}
		*id = StringID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("event id: %w", err)
	}
	*id = EventID{value: n.String(), numeric: true}
	return nil
}

// Well-known member names of the events API.
const (
	FieldID                 = "id"
	FieldTitle              = "title"
	FieldDescription        = "description"
	FieldStartTime          = "start_time"
	FieldEndTime            = "end_time"
	FieldLocation           = "location"
	FieldColor              = "color"
	FieldIsRecurring        = "is_recurring"
	FieldRecurrenceType     = "recurrence_type"
	FieldRecurrenceEndDate  = "recurrence_end_date"
	FieldRecurrenceInterval = "recurrence_interval"
	FieldParentEvent        = "parent_event"
	FieldCreatedAt          = "created_at"
	FieldUpdatedAt          = "updated_at"
	FieldDurationMinutes    = "duration_minutes"
)

// serverManagedFields are assigned by the server and dropped by Event.Input.
var serverManagedFields = []string{
	FieldID, FieldParentEvent, FieldCreatedAt, FieldUpdatedAt, FieldDurationMinutes,
}

// EventInput is the payload accepted by CreateEvent and UpdateEvent.
//
// It holds the JSON members exactly as they were decoded or set, in order,
// and encodes them back byte for byte: a member the caller never touched is
// neither added nor dropped, and a value set to "", 0, false or null is sent
// as such. Typed getters decode on demand and never change the stored value.
//
// EventInput has value semantics; setters never affect copies.
type EventInput struct {
	keys   []string
	values map[string]json.RawMessage
}

// Keys returns the member names in document order.
func (in EventInput) Keys() []string {
	return append([]string(nil), in.keys...)
}

// Has reports whether the member is present, even if null.
func (in EventInput) Has(key string) bool {
	_, ok := in.values[key]
	return ok
}

// Get returns the raw JSON of a member.
func (in EventInput) Get(key string) (json.RawMessage, bool) {
	raw, ok := in.values[key]
	if !ok {
		return nil, false
	}
	return append(json.RawMessage(nil), raw...), true
}

// Set encodes v and stores it under key. An existing member keeps its position.
func (in *EventInput) Set(key string, v any) error {
	raw, err := encodeValue(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	in.put(key, raw)
	return nil
}

// SetRaw stores raw unchanged under key. raw must be valid JSON.
func (in *EventInput) SetRaw(key string, raw json.RawMessage) error {
	if !json.Valid(raw) {
		return fmt.Errorf("%s: invalid JSON value", key)
	}
	in.put(key, append(json.RawMessage(nil), raw...))
	return nil
}

// SetNull stores an explicit null, which clears a nullable field on update.
func (in *EventInput) SetNull(key string) {
	in.put(key, json.RawMessage("null"))
}

// Delete removes a member so it is not sent at all.
func (in *EventInput) Delete(key string) {
	if !in.Has(key) {
		return
	}
	keys := make([]string, 0, len(in.keys)-1)
	values := make(map[string]json.RawMessage, len(in.values)-1)
	for _, k := range in.keys {
		if k != key {
			keys = append(keys, k)
			values[k] = in.values[k]
		}
	}
	in.keys, in.values = keys, values
}

// put copies before writing so earlier copies of in stay unchanged.
func (in *EventInput) put(key string, raw json.RawMessage) {
	values := make(map[string]json.RawMessage, len(in.values)+1)
	for k, v := range in.values {
		values[k] = v
	}
	keys := in.keys[:len(in.keys):len(in.keys)]
	if _, ok := values[key]; !ok {
		keys = append(keys, key)
	}
	values[key] = raw
	in.keys, in.values = keys, values
}

// Text returns a string member's value. A non-string member is returned as
// its JSON text; an absent or null member as "".
func (in EventInput) Text(key string) string {
	raw, ok := in.values[key]
	if !ok || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(raw)
	}
	return s
}

// Time parses a timestamp member. An absent or null member yields the zero time.
func (in EventInput) Time(key string) (time.Time, error) {
	raw, ok := in.values[key]
	if !ok {
		return time.Time{}, nil
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", key, err)
	}
	if s == nil {
		return time.Time{}, nil
	}
	t, err := parseTimestamp(*s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", key, err)
	}
	return t, nil
}

// setTime stores t as an ISO-8601 string; the zero time stores null.
func (in *EventInput) setTime(key string, t time.Time) {
	if t.IsZero() {
		in.SetNull(key)
		return
	}
	in.put(key, json.RawMessage(strconv.Quote(FormatTimestamp(t))))
}

func (in *EventInput) setString(key, value string) {
	raw, _ := encodeValue(value)
	in.put(key, raw)
}

func (in EventInput) Title() string { return in.Text(FieldTitle) }
func (in EventInput) Description() string { return in.Text(FieldDescription) }
func (in EventInput) Location() string { return in.Text(FieldLocation) }
func (in EventInput) Color() string { return in.Text(FieldColor) }
func (in EventInput) RecurrenceType() string { return in.Text(FieldRecurrenceType) }
func (in EventInput) StartTime() (time.Time, error) { return in.Time(FieldStartTime) }
func (in EventInput) EndTime() (time.Time, error) { return in.Time(FieldEndTime) }

func (in EventInput) RecurrenceEndDate() (time.Time, error) {
	return in.Time(FieldRecurrenceEndDate)
}

// IsRecurring reports the is_recurring member; absent, null or non-boolean is false.
func (in EventInput) IsRecurring() bool {
	var b bool
	if raw, ok := in.values[FieldIsRecurring]; ok {
		_ = json.Unmarshal(raw, &b)
	}
	return b
}

// RecurrenceInterval reports the recurrence_interval member, or 0.
func (in EventInput) RecurrenceInterval() int {
	n, _ := in.intValue(FieldRecurrenceInterval)
	return n
}

func (in EventInput) intValue(key string) (int, bool) {
	raw, ok := in.values[key]
	if !ok {
		return 0, false
	}
	var n *int
	if err := json.Unmarshal(raw, &n); err != nil || n == nil {
		return 0, false
	}
	return *n, true
}

func (in *EventInput) SetTitle(s string) { in.setString(FieldTitle, s) }
func (in *EventInput) SetDescription(s string) { in.setString(FieldDescription, s) }
func (in *EventInput) SetLocation(s string) { in.setString(FieldLocation, s) }
func (in *EventInput) SetColor(s string) { in.setString(FieldColor, s) }
func (in *EventInput) SetRecurrenceType(s string) { in.setString(FieldRecurrenceType, s) }
func (in *EventInput) SetStartTime(t time.Time) { in.setTime(FieldStartTime, t) }
func (in *EventInput) SetEndTime(t time.Time) { in.setTime(FieldEndTime, t) }

func (in *EventInput) SetRecurrenceEndDate(t time.Time) {
	in.setTime(FieldRecurrenceEndDate, t)
}

func (in *EventInput) SetIsRecurring(b bool) {
	in.put(FieldIsRecurring, json.RawMessage(strconv.FormatBool(b)))
}

func (in *EventInput) SetRecurrenceInterval(n int) {
	in.put(FieldRecurrenceInterval, json.RawMessage(strconv.Itoa(n)))
}

// MarshalJSON writes the members in order with their stored bytes.
func (in EventInput) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range in.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := encodeValue(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(in.values[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps every member of a JSON object as raw bytes. Values are
// not interpreted, so nothing the server sends is rejected here. Insignificant
// whitespace is the only thing encoding does not reproduce.
func (in *EventInput) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("event: expected JSON object, got %s", bytes.TrimSpace(data))
	}

	var out EventInput
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		out.put(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*in = out
	return nil
}

// encodeValue marshals v without HTML escaping, so stored bytes match what
// the caller would write by hand.
func encodeValue(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Event is a calendar event as returned by the server. All members, known
// or not, are kept as received; see EventInput.
type Event struct {
	EventInput
}

// ID returns the server-assigned id, or the zero EventID if absent or malformed.
func (e Event) ID() EventID {
	var id EventID
	if raw, ok := e.values[FieldID]; ok {
		_ = id.UnmarshalJSON(raw)
	}
	return id
}

// ParentEvent returns the id of the series an occurrence belongs to.
func (e Event) ParentEvent() (EventID, bool) {
	var id EventID
	raw, ok := e.values[FieldParentEvent]
	if !ok || id.UnmarshalJSON(raw) != nil || id.IsZero() {
		return EventID{}, false
	}
	return id, true
}

func (e Event) CreatedAt() (time.Time, error) { return e.Time(FieldCreatedAt) }
func (e Event) UpdatedAt() (time.Time, error) { return e.Time(FieldUpdatedAt) }

// DurationMinutes returns the server-computed duration when present.
func (e Event) DurationMinutes() (int, bool) {
	return e.intValue(FieldDurationMinutes)
}

// Input returns the event without server-managed members, suitable for
// UpdateEvent. Every other member keeps its original bytes.
func (e Event) Input() EventInput {
	in := e.EventInput
	for _, key := range serverManagedFields {
		in.Delete(key)
	}
	return in
}

// OverlapResult is the undecoded body returned by the overlap endpoint. Its
// shape belongs to the server, so the client keeps it opaque.
type OverlapResult struct {
	Raw json.RawMessage
}

// Decode unmarshals the result into v.
func (r OverlapResult) Decode(v any) error {
	if len(r.Raw) == 0 {
		return fmt.Errorf("empty overlap result")
	}
	return json.Unmarshal(r.Raw, v)
}

// Report decodes the result using the shape the reference backend produces.
func (r OverlapResult) Report() (OverlapReport, error) {
	var report OverlapReport
	if err := r.Decode(&report); err != nil {
		return OverlapReport{}, fmt.Errorf("decode overlap report: %w", err)
	}
	return report, nil
}

func (r OverlapResult) MarshalJSON() ([]byte, error) {
	if len(r.Raw) == 0 {
		return []byte("null"), nil
	}
	return r.Raw, nil
}

func (r *OverlapResult) UnmarshalJSON(data []byte) error {
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// OverlapReport is the {"has_overlap", "overlapping_events"} body of the
// reference backend.
type OverlapReport struct {
	HasOverlap        bool    `json:"has_overlap"`
	OverlappingEvents []Event `json:"overlapping_events"`
}
