// Package jsonext encodes and decodes JSON with date-time awareness.
//
// Encode renders time.Time values as ISO-8601 strings with a numeric UTC
// offset. Decode turns every string field of every object that parses as an
// ISO-8601 timestamp into a time.Time. Strings that merely look like dates
// are converted too; callers that need the raw text should use a plain JSON
// decoder.
package jsonext

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const (
	isoLayout      = "2006-01-02T15:04:05-07:00"
	isoMicroLayout = "2006-01-02T15:04:05.000000-07:00"

	// Offsets that are not whole minutes, e.g. local mean time zones.
	isoSecondsOffsetLayout      = "2006-01-02T15:04:05-07:00:00"
	isoMicroSecondsOffsetLayout = "2006-01-02T15:04:05.000000-07:00:00"
)

var timeType = reflect.TypeFor[time.Time]()

// Layouts accepted by Decode, tried in order. Values without an offset are
// taken as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-07:00:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15",
	"2006-01-02",
}

// FormatTime renders t the way Encode does.
func FormatTime(t time.Time) string {
	micro := t.Nanosecond()/int(time.Microsecond) != 0
	if _, offset := t.Zone(); offset%60 != 0 {
		if micro {
			return t.Format(isoMicroSecondsOffsetLayout)
		}
		return t.Format(isoSecondsOffsetLayout)
	}
	if micro {
		return t.Format(isoMicroLayout)
	}
	return t.Format(isoLayout)
}

// ParseTimestamp reports whether s is an ISO-8601 timestamp and returns it.
func ParseTimestamp(s string) (time.Time, bool) {
	// Shortest accepted form is YYYY-MM-DD.
	if len(s) < 10 || s[4] != '-' || s[7] != '-' {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Encode serializes v to a JSON string. time.Time values held in maps and
// slices, including named map and slice types, are rendered with FormatTime.
func Encode(v any) (string, error) {
	b, err := json.Marshal(encodeValue(v))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func encodeValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return FormatTime(val)
	case *time.Time:
		if val == nil {
			return nil
		}
		return FormatTime(*val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = encodeValue(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = encodeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = encodeValue(item)
		}
		return out
	case json.Number, string, bool, nil, []byte:
		return v
	default:
		return encodeReflect(v)
	}
}

// encodeReflect walks map and slice kinds the type switch does not name.
// Structs and other values are left to the JSON encoder.
func encodeReflect(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = encodeValue(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = encodeValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		if rv.Elem().Type() == timeType {
			return FormatTime(rv.Elem().Interface().(time.Time))
		}
		return v
	default:
		return v
	}
}

// Decode parses a JSON document. Empty input yields nil. String fields of
// objects at any depth that parse as timestamps become time.Time; strings
// placed directly in arrays are left alone. Integral numbers that fit in
// int64 decode as int64, other numbers as float64.
func Decode(text string) (any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var v any
	if err := Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	return decodeValue(v), nil
}

// Unmarshal decodes data into v keeping numbers as json.Number, so large
// integers survive a decode and re-encode unchanged.
func Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return err
		}
		return errors.New("invalid character after top-level value")
	}
	return nil
}

// DecodeAll decodes each document independently. Empty documents decode to nil.
func DecodeAll(texts []string) ([]any, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([]any, len(texts))
	for i, text := range texts {
		v, err := Decode(text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func decodeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			if s, ok := item.(string); ok {
				if t, ok := ParseTimestamp(s); ok {
					val[k] = t
				}
				continue
			}
			val[k] = decodeValue(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = decodeValue(item)
		}
		return val
	case json.Number:
		return numberValue(val)
	default:
		return v
	}
}

func numberValue(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n
}
