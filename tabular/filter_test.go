package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenotab/phenotab/semantic"
)

func measurementCDF(t *testing.T) *ContextualizedFrame {
	t.Helper()
	frame, err := NewFrame(
		NewStringColumn("patient_id", []string{"p1", "p2"}),
		NewStringColumn("weight", []string{"70.5", "81"}),
		NewStringColumn("platelets", []string{"150", "220"}),
		NewStringColumn("blood_group", []string{"A", "0"}),
		NewOptColumn("notes", []*string{nil, strptr("checked")}),
	)
	require.NoError(t, err)

	tc := NewTableContext("labs",
		subjectContext("patient_id"),
		NewSeriesContext(NewIdentifier("weight")).
			WithDataContext(semantic.NewQuantitativeMeasurement("LOINC:29463-7", "UO:0000009")).
			WithBuildingBlockID("anthro"),
		NewSeriesContext(NewIdentifier("platelets")).
			WithDataContext(semantic.NewQuantitativeMeasurement("LOINC:26515-7", "UO:0000316")).
			WithBuildingBlockID("labs"),
		NewSeriesContext(NewIdentifier("blood_group")).
			WithDataContext(semantic.NewQualitativeMeasurement("LOINC:883-9")),
		NewSeriesContext(NewIdentifier("notes")).
			WithFillMissing(StringValue("-")),
	)
	cdf, err := NewContextualizedFrame(tc, frame)
	require.NoError(t, err)
	return cdf
}

func TestSeriesContextFilterByKind(t *testing.T) {
	cdf := measurementCDF(t)

	got := cdf.FilterSeriesContexts().
		WhereDataContextKind(Is(semantic.KindQuantitativeMeasurement)).
		Collect()
	require.Len(t, got, 2)
	// Declaration order preserved.
	assert.Equal(t, "weight", got[0].Identifier.String())
	assert.Equal(t, "platelets", got[1].Identifier.String())
}

func TestSeriesContextFilterFieldsAreANDCombined(t *testing.T) {
	cdf := measurementCDF(t)

	got := cdf.FilterSeriesContexts().
		WhereDataContextKind(Is(semantic.KindQuantitativeMeasurement)).
		WhereBuildingBlock(Is("anthro")).
		Collect()
	require.Len(t, got, 1)
	assert.Equal(t, "weight", got[0].Identifier.String())
}

func TestSeriesContextFilterSameFieldIsORCombined(t *testing.T) {
	cdf := measurementCDF(t)

	got := cdf.FilterSeriesContexts().
		WhereBuildingBlock(Is("anthro")).
		WhereBuildingBlock(Is("labs")).
		Collect()
	assert.Len(t, got, 2)
}

func TestSeriesContextFilterOptionalFields(t *testing.T) {
	cdf := measurementCDF(t)

	got := cdf.FilterSeriesContexts().
		WhereFillMissing(IsSome[CellValue]()).
		Collect()
	require.Len(t, got, 1)
	assert.Equal(t, "notes", got[0].Identifier.String())

	got = cdf.FilterSeriesContexts().
		WhereBuildingBlock(IsNone[string]()).
		WhereDataContextKind(Is(semantic.KindQualitativeMeasurement)).
		Collect()
	require.Len(t, got, 1)
	assert.Equal(t, "blood_group", got[0].Identifier.String())
}

func TestSeriesContextFilterNoneContext(t *testing.T) {
	cdf := measurementCDF(t)

	got := cdf.FilterSeriesContexts().
		WhereDataContext(IsNone[semantic.Context]()).
		Collect()
	require.Len(t, got, 1)
	assert.Equal(t, "notes", got[0].Identifier.String())
}

func TestSeriesContextFilterEmptyResult(t *testing.T) {
	cdf := measurementCDF(t)

	got := cdf.FilterSeriesContexts().
		WhereDataContext(Is(semantic.Hgvs)).
		Collect()
	assert.Empty(t, got)
}

func TestColumnFilterByDType(t *testing.T) {
	cdf := measurementCDF(t)

	got := cdf.FilterColumns().
		WhereDataContextKind(Is(semantic.KindQuantitativeMeasurement)).
		WhereDType(Is(DTypeInt)).
		Collect()
	require.Len(t, got, 1)
	assert.Equal(t, "platelets", got[0].Column.Name)
	assert.Equal(t, "labs", got[0].Context.BuildingBlockID)
}

func TestColumnFilterPhysicalOrder(t *testing.T) {
	cdf := measurementCDF(t)

	got := cdf.FilterColumns().
		WhereDataContextKind(IsNot(semantic.KindSubjectID)).
		Collect()
	names := make([]string, len(got))
	for i, oc := range got {
		names[i] = oc.Column.Name
	}
	// Kind is not an optional field: the untagged notes column has kind none,
	// which also differs from subject_id.
	assert.Equal(t, []string{"weight", "platelets", "blood_group", "notes"}, names)
}
