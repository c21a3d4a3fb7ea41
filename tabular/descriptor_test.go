package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/phenotab/phenotab/semantic"
)

func TestIdentifierMatchExactBeforeRegex(t *testing.T) {
	names := []string{"age", "age_at_onset", "stage"}

	// "age" names an existing column, so it must not be treated as a pattern
	// even though the pattern would match all three names.
	got, err := NewIdentifier("age").Match(names)
	require.NoError(t, err)
	assert.Equal(t, []string{"age"}, got)

	got, err = NewIdentifier("^age.*").Match(names)
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "age_at_onset"}, got)

	got, err = NewIdentifier("nothing_here").Match(names)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = NewIdentifier("[invalid").Match(names)
	require.Error(t, err)
}

func TestIdentifierMatchMulti(t *testing.T) {
	names := []string{"hpo_1", "sex", "hpo_2"}

	got, err := NewMultiIdentifier("hpo_2", "hpo_1").Match(names)
	require.NoError(t, err)
	// Table order, not declaration order.
	assert.Equal(t, []string{"hpo_1", "hpo_2"}, got)
}

func TestIdentifierEqual(t *testing.T) {
	assert.True(t, NewIdentifier("a").Equal(NewIdentifier("a")))
	assert.False(t, NewIdentifier("a").Equal(NewIdentifier("b")))
	assert.False(t, NewIdentifier("a").Equal(NewMultiIdentifier("a")))
	assert.True(t, NewMultiIdentifier("a", "b").Equal(NewMultiIdentifier("a", "b")))
	assert.False(t, NewMultiIdentifier("a", "b").Equal(NewMultiIdentifier("b", "a")))
}

func TestCellValueRendering(t *testing.T) {
	assert.Equal(t, "42", IntValue(42).String())
	assert.Equal(t, "true", BoolValue(true).String())
	assert.Equal(t, "1.5", FloatValue(1.5).String())
	assert.Equal(t, "n/a", StringValue("n/a").String())
	assert.Equal(t, DTypeInt, IntValue(42).DType())
	assert.False(t, IntValue(42).Cell().IsNull())
}

func TestAliasMapApply(t *testing.T) {
	m := AliasMap{
		Aliases: map[string]*string{
			"alive":    strptr("true"),
			"deceased": strptr("false"),
			"unknown":  nil,
		},
		OutputDType: DTypeBool,
	}
	col := NewOptColumn("vital", []*string{strptr("alive"), strptr("unknown"), nil, strptr("deceased")})

	out, err := m.Apply(col)
	require.NoError(t, err)
	assert.Equal(t, "true", out.At(0).String())
	assert.True(t, out.At(1).IsNull())
	assert.True(t, out.At(2).IsNull())
	assert.Equal(t, "false", out.At(3).String())
}

func TestAliasMapApplyUnmappedPassThrough(t *testing.T) {
	m := AliasMap{Aliases: map[string]*string{"F": strptr("FEMALE")}}
	col := NewStringColumn("sex", []string{"F", "MALE"})

	out, err := m.Apply(col)
	require.NoError(t, err)
	assert.Equal(t, "FEMALE", out.At(0).String())
	assert.Equal(t, "MALE", out.At(1).String())
}

func TestSeriesContextBuilder(t *testing.T) {
	sc := NewSeriesContext(NewIdentifier("onset")).
		WithDataContext(semantic.OnsetAge).
		WithBuildingBlockID("bb1").
		WithFillMissing(StringValue("P0D"))

	assert.Equal(t, semantic.OnsetAge, sc.DataContext)
	assert.Equal(t, semantic.None, sc.HeaderContext)
	assert.Equal(t, "bb1", sc.BuildingBlockID)
	require.NotNil(t, sc.FillMissing)
	assert.Equal(t, "P0D", sc.FillMissing.String())
}

func TestTableContextYAML(t *testing.T) {
	src := `
name: cohort
series_contexts:
  - identifier: patient_id
    data_context: subject_id
  - identifier: "HP:.*"
    header_context: hpo_label_or_id
    data_context: observation_status
    fill_missing: false
  - identifier: [weight, height]
    data_context:
      quantitative_measurement:
        assay_id: "LOINC:29463-7"
        unit_ontology_id: "UO:0000009"
    building_block_id: anthro
    alias_map:
      aliases:
        "n/a": null
      output_dtype: float
`
	var tc TableContext
	require.NoError(t, yaml.Unmarshal([]byte(src), &tc))

	assert.Equal(t, "cohort", tc.Name)
	require.Len(t, tc.SeriesContexts, 3)

	assert.Equal(t, semantic.SubjectID, tc.SeriesContexts[0].DataContext)
	assert.Equal(t, semantic.None, tc.SeriesContexts[0].HeaderContext)

	hpo := tc.SeriesContexts[1]
	assert.Equal(t, semantic.HpoLabelOrID, hpo.HeaderContext)
	assert.Equal(t, semantic.ObservationStatus, hpo.DataContext)
	require.NotNil(t, hpo.FillMissing)
	assert.Equal(t, DTypeBool, hpo.FillMissing.DType())

	anthro := tc.SeriesContexts[2]
	assert.True(t, anthro.Identifier.IsMulti())
	assert.Equal(t, semantic.KindQuantitativeMeasurement, anthro.DataContext.EraseKind())
	assert.Equal(t, "LOINC:29463-7", anthro.DataContext.AssayID)
	require.NotNil(t, anthro.AliasMap)
	assert.Equal(t, DTypeFloat, anthro.AliasMap.OutputDType)

	// Round-trip.
	out, err := yaml.Marshal(&tc)
	require.NoError(t, err)
	var back TableContext
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, tc.Name, back.Name)
	require.Len(t, back.SeriesContexts, 3)
	assert.Equal(t, tc.SeriesContexts[2].DataContext, back.SeriesContexts[2].DataContext)
}

func TestSeriesContextClone(t *testing.T) {
	sc := NewSeriesContext(NewMultiIdentifier("a", "b")).
		WithDataContext(semantic.HpoLabelOrID).
		WithAliasMap(AliasMap{Aliases: map[string]*string{"x": strptr("y")}}).
		WithSubBlocks("bb2")

	c := sc.Clone()
	c.AliasMap.Aliases["x"] = strptr("z")
	c.SubBlocks[0] = "other"

	assert.Equal(t, "y", *sc.AliasMap.Aliases["x"])
	assert.Equal(t, "bb2", sc.SubBlocks[0])
}
