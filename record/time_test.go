package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenotab/phenotab/semantic"
)

func TestCheckISO8601Duration(t *testing.T) {
	valid := []string{"P12Y5M28D", "P1Y", "P6M", "P3W", "P10D", "PT12H", "P1DT6H30M", "P0D"}
	for _, v := range valid {
		assert.NoError(t, CheckISO8601Duration(v), v)
	}

	invalid := []string{"", "P", "PT", "12Y", "P12", "P1Y2X", "1999-01-01", "P-1Y"}
	for _, v := range invalid {
		assert.Error(t, CheckISO8601Duration(v), v)
	}
}

func TestAgeElement(t *testing.T) {
	el, err := AgeElement("P12Y5M28D")
	require.NoError(t, err)
	require.NotNil(t, el.Age)
	assert.Equal(t, "P12Y5M28D", el.Age.ISO8601Duration)
	assert.Nil(t, el.Timestamp)

	_, err = AgeElement("twelve years")
	require.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("2001-09-23")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2001, 9, 23, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseTimestamp("2001-09-23T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())

	_, err = ParseTimestamp("23/09/2001 or so")
	require.Error(t, err)
}

func TestTimeElementFrom(t *testing.T) {
	el, err := TimeElementFrom(semantic.TimeAge, "P3Y")
	require.NoError(t, err)
	require.NotNil(t, el.Age)

	el, err = TimeElementFrom(semantic.TimeDate, "2020-05-01")
	require.NoError(t, err)
	require.NotNil(t, el.Timestamp)

	_, err = TimeElementFrom(semantic.TimeAge, "2020-05-01")
	require.Error(t, err)
}

func TestParseSex(t *testing.T) {
	for in, want := range map[string]Sex{
		"F": SexFemale, "female": SexFemale, "MALE": SexMale, "m": SexMale,
		"unknown": SexUnknown, "OTHER_SEX": SexOther,
	} {
		got, err := ParseSex(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSex("W")
	require.Error(t, err)
}

func TestParseVitalState(t *testing.T) {
	got, err := ParseVitalState("alive")
	require.NoError(t, err)
	assert.Equal(t, StatusAlive, got)

	got, err = ParseVitalState("Dead")
	require.NoError(t, err)
	assert.Equal(t, StatusDeceased, got)

	_, err = ParseVitalState("unclear")
	require.Error(t, err)
}

func TestEntityID(t *testing.T) {
	assert.Equal(t, "cohort-p1", EntityID("cohort", "p1"))
	// Already prefixed ids are not prefixed again.
	assert.Equal(t, "cohort-p1", EntityID("cohort", "cohort-p1"))
	assert.Equal(t, "p1", EntityID("", "p1"))
}
