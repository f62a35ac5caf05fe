package model

import (
	"encoding/json"
	"testing"
	"time"

	apoderrors "github.com/glorpus-work/apod/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    DateKey
		wantErr bool
	}{
		{name: "canonical", input: "2020-08-30", want: DateKey{2020, time.August, 30}},
		{name: "surrounding whitespace", input: " 2021-01-02\n", want: DateKey{2021, time.January, 2}},
		{name: "leap day", input: "2020-02-29", want: DateKey{2020, time.February, 29}},
		{name: "invalid day", input: "2021-02-29", wantErr: true},
		{name: "wrong layout", input: "30/08/2020", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateKey(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apoderrors.ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateKeyCanonicalEquality(t *testing.T) {
	a := NewDateKey(2020, time.January, 32)
	b, err := ParseDateKey("2020-02-01")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, a.String(), b.String())
	assert.Equal(t, "2020-02-01", a.String())

	local := time.Date(2020, time.February, 1, 23, 59, 0, 0, time.FixedZone("X", 5*3600))
	assert.Equal(t, b, DateKeyFromTime(local))
}

func TestDateKeyArithmetic(t *testing.T) {
	d := NewDateKey(2020, time.March, 1)

	assert.Equal(t, "2020-02-29", d.AddDays(-1).String())
	assert.Equal(t, "2020-03-02", d.AddDays(1).String())
	assert.True(t, d.AddDays(-1).Before(d))
	assert.True(t, d.AddDays(1).After(d))
	assert.False(t, d.Before(d))
	assert.True(t, DateKey{}.IsZero())
	assert.False(t, d.IsZero())
}

func TestDateRange(t *testing.T) {
	end := NewDateKey(2020, time.August, 30)

	got := DateRange(end, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "2020-08-30", got[0].String())
	assert.Equal(t, "2020-08-29", got[1].String())
	assert.Equal(t, "2020-08-28", got[2].String())

	assert.Empty(t, DateRange(end, 0))
	assert.Empty(t, DateRange(end, -2))
}

func TestDateKeyJSON(t *testing.T) {
	var holder struct {
		Date DateKey `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2019-07-20"}`), &holder))
	assert.Equal(t, NewDateKey(2019, time.July, 20), holder.Date)

	out, err := json.Marshal(holder)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2019-07-20"}`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"date":""}`), &holder))
	assert.True(t, holder.Date.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"date":"yesterday"}`), &holder))
	assert.Error(t, json.Unmarshal([]byte(`{"date":20190720}`), &holder))
}

func TestArtifactKind(t *testing.T) {
	assert.Equal(t, ".json", KindDefinition.DefaultExtension())
	assert.Equal(t, ".jpg", Media.DefaultExtension())
	assert.Equal(t, "definition", KindDefinition.String())
	assert.Equal(t, "media", Media.String())
	assert.Equal(t, "kind(7)", ArtifactKind(7).String())

	key := CacheKey{Date: NewDateKey(2020, time.May, 4), Kind: Media}
	assert.Equal(t, "2020-05-04/media", key.String())
}

func TestDefinitionRoundTrip(t *testing.T) {
	def := &Definition{
		Date:           NewDateKey(2020, time.August, 30),
		Title:          "The Milky Way over Monument Valley",
		Explanation:    "A long exposure of the galactic center.",
		MediaType:      MediaKindImage,
		URL:            "https://apod.nasa.gov/apod/image/2008/mw.jpg",
		HDURL:          "https://apod.nasa.gov/apod/image/2008/mw_big.jpg",
		Copyright:      "Someone",
		ServiceVersion: "v1",
	}

	data, err := def.Marshal()
	require.NoError(t, err)

	parsed, err := ParseDefinition(data)
	require.NoError(t, err)
	assert.Equal(t, def, parsed)
	assert.True(t, parsed.IsImage())
}

func TestParseDefinition(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, d *Definition)
	}{
		{
			name:  "api document without hdurl",
			input: `{"date":"2020-08-29","title":"T","explanation":"E","media_type":"video","url":"https://youtube.com/embed/x","service_version":"v1"}`,
			check: func(t *testing.T, d *Definition) {
				assert.Equal(t, "video", d.MediaType)
				assert.Empty(t, d.HDURL)
				assert.False(t, d.IsImage())
			},
		},
		{name: "truncated", input: `{"date":"2020-08-29","title":`, wantErr: true},
		{name: "not json", input: `<html>oops</html>`, wantErr: true},
		{name: "missing date", input: `{"title":"T","media_type":"image","url":"u"}`, wantErr: true},
		{name: "bad date", input: `{"date":"2020-13-01"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDefinition([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, d)
		})
	}
}

func TestCheckServiceVersion(t *testing.T) {
	assert.NoError(t, CheckServiceVersion(""))
	assert.NoError(t, CheckServiceVersion("v1"))
	assert.NoError(t, CheckServiceVersion("1.4.2"))
	assert.Error(t, CheckServiceVersion("v2"))
	assert.Error(t, CheckServiceVersion("v0.9"))
	assert.Error(t, CheckServiceVersion("not-a-version"))
}
