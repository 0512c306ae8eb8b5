package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Sriram-PR/sitemap-gen/pkg/models"
)

func TestNormalizeDateString_AcceptedAsIs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"ShortForm", "2023-12-21", "2023-12-21"},
		{"WithOffset", "2023-12-21T13:49:27+01:00", "2023-12-21T13:49:27+01:00"},
		{"WithFractionAndOffset", "2023-12-21T13:49:27.123+01:00", "2023-12-21T13:49:27.123+01:00"},
		{"MinutePrecision", "2023-12-21T13:49-05:00", "2023-12-21T13:49-05:00"},
		{"AlreadyCanonical", "2023-02-21T04:50:52+00:00", "2023-02-21T04:50:52+00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDateString(tt.input)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeDateString_Reformatted(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"MillisAndZ", "2023-02-21T04:50:52.123Z", "2023-02-21T04:50:52+00:00"},
		{"MicrosAndZ", "2023-12-21T13:49:27.963745Z", "2023-12-21T13:49:27+00:00"},
		{"BareZ", "2023-12-21T13:49:27Z", "2023-12-21T13:49:27+00:00"},
		{"OffsetWithoutColon", "2023-02-21T04:50:52+0100", "2023-02-21T03:50:52+00:00"},
		{"SpacedOffsetWithoutColon", "2023-02-21 04:50:52-0230", "2023-02-21T07:20:52+00:00"},
		{"NoZone", "2023-12-21T13:49:27", "2023-12-21T13:49:27+00:00"},
		{"SpaceSeparated", "2023-12-21 13:49:27", "2023-12-21T13:49:27+00:00"},
		{"RFC1123", "Thu, 21 Dec 2023 13:49:27 GMT", "2023-12-21T13:49:27+00:00"},
		{"RFC1123ZConvertedToUTC", "Thu, 21 Dec 2023 13:49:27 +0200", "2023-12-21T11:49:27+00:00"},
		{"SlashDate", "2023/12/21", "2023-12-21T00:00:00+00:00"},
		{"LongMonth", "December 21, 2023", "2023-12-21T00:00:00+00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDateString(tt.input)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeDateString_Rejected(t *testing.T) {
	for _, input := range []string{
		"",
		"   ",
		"not a date",
		"2023-13-40",
		"2023-02-30",
		"2023-13-40T10:00:00+00:00",
		"yesterday",
	} {
		t.Run(input, func(t *testing.T) {
			got, ok := NormalizeDateString(input)
			assert.False(t, ok)
			assert.Empty(t, got)
		})
	}
}

func TestNormalizeDateString_Idempotent(t *testing.T) {
	for _, input := range []string{
		"2023-02-21T04:50:52.123Z",
		"2023-12-21",
		"Thu, 21 Dec 2023 13:49:27 GMT",
		"2023-12-21T13:49:27+01:00",
	} {
		once, ok := NormalizeDateString(input)
		assert.True(t, ok, input)
		twice, ok := NormalizeDateString(once)
		assert.True(t, ok, once)
		assert.Equal(t, once, twice)
		assert.True(t, w3cDate.MatchString(once) || w3cDatetime.MatchString(once), once)
	}
}

func TestNormalizeDate_TimeValues(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	got, ok := NormalizeDate(models.DateFromTime(time.Date(2024, 3, 5, 9, 7, 3, 500, loc)))
	assert.True(t, ok)
	assert.Equal(t, "2024-03-05T07:07:03+00:00", got)

	_, ok = NormalizeDate(models.Date{})
	assert.False(t, ok)

	_, ok = NormalizeTime(time.Time{})
	assert.False(t, ok)
}

func TestNormalizeDate_StringValues(t *testing.T) {
	got, ok := NormalizeDate(models.DateFromString("2023-02-21T04:50:52.123Z"))
	assert.True(t, ok)
	assert.Equal(t, "2023-02-21T04:50:52+00:00", got)
}
