package models

import (
	"encoding/json"
	"time"

	"gopkg.in/yaml.v3"
)

// Date is a lastmod value as supplied by a source: either a string in any
// date format or a time value. The zero Date means "no date".
type Date struct {
	raw  string
	time time.Time
}

// DateFromString wraps a date string
func DateFromString(s string) Date {
	return Date{raw: s}
}

// DateFromTime wraps a time value
func DateFromTime(t time.Time) Date {
	return Date{time: t}
}

// IsZero reports whether no date was supplied
func (d Date) IsZero() bool {
	return d.raw == "" && d.time.IsZero()
}

// IsTime reports whether the date holds a time value rather than a string
func (d Date) IsTime() bool {
	return d.raw == "" && !d.time.IsZero()
}

// Raw returns the string form as supplied (empty for time values)
func (d Date) Raw() string { return d.raw }

// Time returns the time form (zero for string values)
func (d Date) Time() time.Time { return d.time }

// String implements fmt.Stringer for logging
func (d Date) String() string {
	if d.IsTime() {
		return d.time.UTC().Format(time.RFC3339)
	}
	return d.raw
}

// MarshalJSON writes the date as its string form
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a JSON string; null leaves the date empty
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = DateFromString(s)
	return nil
}

// UnmarshalYAML keeps the scalar text as written so YAML timestamps are not
// reinterpreted before normalisation
func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	*d = DateFromString(node.Value)
	return nil
}
