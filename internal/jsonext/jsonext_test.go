package jsonext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Time(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	out, err := Encode(map[string]any{"at": ts, "list": []any{ts}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"2024-05-01T12:30:00+00:00","list":["2024-05-01T12:30:00+00:00"]}`, out)
}

func TestFormatTime(t *testing.T) {
	zone := time.FixedZone("", 2*60*60)
	assert.Equal(t, "2024-05-01T12:30:00+02:00", FormatTime(time.Date(2024, 5, 1, 12, 30, 0, 0, zone)))
	assert.Equal(t, "2024-05-01T12:30:00.250000+00:00", FormatTime(time.Date(2024, 5, 1, 12, 30, 0, 250_000_000, time.UTC)))
}

func TestDecode_Empty(t *testing.T) {
	v, err := Decode("")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode("{not json")
	assert.Error(t, err)
}

func TestDecode_ConvertsTimestampFields(t *testing.T) {
	v, err := Decode(`{
		"created": "2024-05-01T12:30:00Z",
		"name": "plain",
		"nested": {"updated": "2024-05-02T08:00:00+02:00"},
		"rows": [{"day": "2024-05-03"}, "2024-05-04"]
	}`)
	require.NoError(t, err)
	m := v.(map[string]any)

	created, ok := m["created"].(time.Time)
	require.True(t, ok)
	assert.True(t, created.Equal(time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)))
	assert.Equal(t, "plain", m["name"])

	updated, ok := m["nested"].(map[string]any)["updated"].(time.Time)
	require.True(t, ok)
	assert.True(t, updated.Equal(time.Date(2024, 5, 2, 6, 0, 0, 0, time.UTC)))

	rows := m["rows"].([]any)
	_, ok = rows[0].(map[string]any)["day"].(time.Time)
	assert.True(t, ok)
	assert.Equal(t, "2024-05-04", rows[1])
}

func TestParseTimestamp(t *testing.T) {
	accepted := []string{
		"2024-05-01",
		"2024-05-01T12:30",
		"2024-05-01T12:30:00",
		"2024-05-01T12:30:00.123456",
		"2024-05-01 12:30:00",
		"2024-05-01T12:30:00+05:30",
		"2024-05-01T12:30:00.5Z",
	}
	for _, s := range accepted {
		_, ok := ParseTimestamp(s)
		assert.True(t, ok, s)
	}

	rejected := []string{"", "hello", "2024", "2024-13-01", "12:30:00", "2024-05-01Tnoon"}
	for _, s := range rejected {
		_, ok := ParseTimestamp(s)
		assert.False(t, ok, s)
	}

	naive, _ := ParseTimestamp("2024-05-01T12:30:00")
	assert.Equal(t, time.UTC, naive.Location())
}

func TestRoundTrip(t *testing.T) {
	zones := []*time.Location{time.UTC, time.FixedZone("", -5*60*60), time.FixedZone("", 9*60*60+30*60)}
	for _, loc := range zones {
		original := time.Date(2023, 11, 5, 23, 59, 58, 123456789, loc)
		encoded, err := Encode(map[string]any{"ts": original})
		require.NoError(t, err)

		decoded, err := Decode(encoded)
		require.NoError(t, err)
		got, ok := decoded.(map[string]any)["ts"].(time.Time)
		require.True(t, ok, encoded)
		assert.True(t, got.Truncate(time.Second).Equal(original.Truncate(time.Second)), "%s vs %s", got, original)
	}
}

func TestDecodeAll(t *testing.T) {
	out, err := DecodeAll([]string{`{"a":1}`, "", `{"at":"2024-05-01T00:00:00Z"}`})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, map[string]any{"a": int64(1)}, out[0])
	assert.Nil(t, out[1])
	_, ok := out[2].(map[string]any)["at"].(time.Time)
	assert.True(t, ok)

	_, err = DecodeAll([]string{"{"})
	assert.Error(t, err)
}

type document map[string]any

func TestEncode_NamedAndTypedContainers(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	want := `"2024-05-01T12:30:00+00:00"`

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"named map", document{"at": ts}, `{"at":` + want + `}`},
		{"typed slice", map[string]any{"list": []time.Time{ts}}, `{"list":[` + want + `]}`},
		{"typed map", map[string]time.Time{"at": ts}, `{"at":` + want + `}`},
		{"nested named map", map[string]any{"inner": document{"at": &ts}}, `{"inner":{"at":` + want + `}}`},
		{"array", [1]time.Time{ts}, `[` + want + `]`},
		{"bytes untouched", map[string]any{"raw": []byte("hi")}, `{"raw":"aGk="}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Encode(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, out)
		})
	}
}

func TestDecode_LargeIntegers(t *testing.T) {
	v, err := Decode(`{"data":{"id":9007199254740993,"ratio":0.5,"big":1e3,"list":[9007199254740995]}}`)
	require.NoError(t, err)

	data := v.(map[string]any)["data"].(map[string]any)
	assert.Equal(t, int64(9007199254740993), data["id"])
	assert.Equal(t, 0.5, data["ratio"])
	assert.Equal(t, float64(1000), data["big"])
	assert.Equal(t, []any{int64(9007199254740995)}, data["list"])

	out, err := Encode(v)
	require.NoError(t, err)
	assert.Contains(t, out, `"id":9007199254740993`)
}

func TestUnmarshal(t *testing.T) {
	var m map[string]any
	require.NoError(t, Unmarshal([]byte(`{"id": 18446744073709551615}`), &m))
	assert.Equal(t, "18446744073709551615", m["id"].(interface{ String() string }).String())

	out, err := Encode(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":18446744073709551615}`, out)

	assert.Error(t, Unmarshal([]byte(`{"a":1} {"b":2}`), &m))
	assert.Error(t, Unmarshal([]byte(`{"a":`), &m))
}

func TestFormatTime_SecondOffsets(t *testing.T) {
	lmt := time.FixedZone("LMT", -(4*3600 + 56*60 + 2))
	original := time.Date(1850, 1, 1, 12, 0, 0, 0, lmt)

	encoded := FormatTime(original)
	assert.Equal(t, "1850-01-01T12:00:00-04:56:02", encoded)

	got, ok := ParseTimestamp(encoded)
	require.True(t, ok)
	assert.True(t, got.Equal(original), "%s vs %s", got, original)

	micro := time.Date(1850, 1, 1, 12, 0, 0, 1500_000, lmt)
	assert.Equal(t, "1850-01-01T12:00:00.001500-04:56:02", FormatTime(micro))
	got, ok = ParseTimestamp(FormatTime(micro))
	require.True(t, ok)
	assert.True(t, got.Equal(micro))
}
