package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Interval is the recurrence selected in the UI.
// Values other than the constants below are treated as a custom interval.
type Interval string

const (
	IntervalHour  Interval = "Every Hour"
	IntervalDay   Interval = "Every Day"
	IntervalWeek  Interval = "Every Week"
	IntervalMonth Interval = "Every Month"
)

// ScheduleSpec is the raw schedule a checker is submitted with.
type ScheduleSpec struct {
	Time     string // "HH:MM"
	Interval Interval
	Repeats  Repeats
}

// Repeats holds the weekday toggles of a schedule.
type Repeats struct {
	Sun bool `json:"su"`
	Mon bool `json:"mo"`
	Tue bool `json:"tu"`
	Wed bool `json:"we"`
	Thu bool `json:"thu"`
	Fri bool `json:"fri"`
	Sat bool `json:"sat"`
}

// Days returns the toggles ordered Sunday through Saturday.
func (r Repeats) Days() [7]bool {
	return [7]bool{r.Sun, r.Mon, r.Tue, r.Wed, r.Thu, r.Fri, r.Sat}
}

// Any reports whether at least one weekday is selected.
func (r Repeats) Any() bool {
	for _, d := range r.Days() {
		if d {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts a JSON object of weekday keys to booleans, or a JSON
// string holding such an object. null decodes to all days off.
func (r *Repeats) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Repeats{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return fmt.Errorf("repeats: %w", err)
		}
		data = []byte(encoded)
	}

	v, err := decodeRepeats(data)
	if err != nil {
		return fmt.Errorf("repeats: %w", err)
	}
	*r = v
	return nil
}

func decodeRepeats(data []byte) (Repeats, error) {
	type plain Repeats
	var v plain

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return Repeats{}, err
	}
	if dec.More() {
		return Repeats{}, errors.New("unexpected data after weekday object")
	}
	return Repeats(v), nil
}
