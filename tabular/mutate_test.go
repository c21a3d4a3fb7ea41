package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenotab/phenotab/semantic"
)

func TestMutatorAddColumn(t *testing.T) {
	cdf := validCDF(t)

	out, err := cdf.Mutate().
		AddColumn(
			NewStringColumn("sex", []string{"F", "F", "M"}),
			NewSeriesContext(NewIdentifier("sex")).WithDataContext(semantic.SubjectSex),
		).
		Build()
	require.NoError(t, err)
	assert.True(t, out.Frame().HasColumn("sex"))
	require.NotNil(t, out.OwnerOf("sex"))
	assert.Equal(t, semantic.SubjectSex, out.OwnerOf("sex").DataContext)

	// Source frame untouched.
	assert.False(t, cdf.Frame().HasColumn("sex"))
}

func TestMutatorAddColumnWithoutContext(t *testing.T) {
	cdf := validCDF(t)

	_, err := cdf.Mutate().
		AddColumn(NewStringColumn("sex", []string{"F", "F", "M"}), nil).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without a series context")
}

func TestMutatorInsertColumnPosition(t *testing.T) {
	cdf := validCDF(t)

	out, err := cdf.Mutate().
		InsertColumn(1,
			NewStringColumn("sex", []string{"F", "F", "M"}),
			NewSeriesContext(NewIdentifier("sex")).WithDataContext(semantic.SubjectSex),
		).
		Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"patient_id", "sex", "hpo", "onset"}, out.Frame().ColumnNames())
}

func TestMutatorReplaceColumn(t *testing.T) {
	cdf := validCDF(t)

	out, err := cdf.Mutate().
		ReplaceColumn("onset", NewStringColumn("onset", []string{"P2Y", "P2Y", "P3Y"})).
		Build()
	require.NoError(t, err)
	col, _ := out.Frame().Column("onset")
	assert.Equal(t, []string{"P2Y", "P3Y"}, col.UniqueValues())
}

func TestMutatorReplaceColumnRename(t *testing.T) {
	cdf := validCDF(t)

	// The identifier's regex fallback is unanchored, so "onset" still
	// matches a column renamed to "age_of_onset".
	out, err := cdf.Mutate().
		ReplaceColumn("onset", NewStringColumn("age_of_onset", []string{"P2Y", "P2Y", "P3Y"})).
		Build()
	require.NoError(t, err)
	assert.True(t, out.Frame().HasColumn("age_of_onset"))

	// A rename the pattern cannot reach leaves the descriptor dangling.
	_, err = cdf.Mutate().
		ReplaceColumn("onset", NewStringColumn("timing", []string{"P2Y", "P2Y", "P3Y"})).
		Build()
	var dangling *DanglingContextError
	require.ErrorAs(t, err, &dangling)
}

func TestMutatorCast(t *testing.T) {
	frame, err := NewFrame(
		NewStringColumn("patient_id", []string{"p1"}),
		NewStringColumn("alive", []string{"Yes"}),
	)
	require.NoError(t, err)
	tc := NewTableContext("t",
		subjectContext("patient_id"),
		NewSeriesContext(NewIdentifier("alive")).WithDataContext(semantic.VitalStatus),
	)
	cdf, err := NewContextualizedFrame(tc, frame)
	require.NoError(t, err)

	out, err := cdf.Mutate().Cast("alive", DTypeBool).Build()
	require.NoError(t, err)
	col, _ := out.Frame().Column("alive")
	assert.Equal(t, "true", col.At(0).String())
}

func TestMutatorDropSeriesContext(t *testing.T) {
	cdf := validCDF(t)
	onsetSC := cdf.OwnerOf("onset")
	require.NotNil(t, onsetSC)

	out, err := cdf.Mutate().DropSeriesContext(onsetSC).Build()
	require.NoError(t, err)
	assert.False(t, out.Frame().HasColumn("onset"))
	assert.Len(t, out.TableContext().SeriesContexts, 2)
}

func TestMutatorDropWithDataContext(t *testing.T) {
	cdf := validCDF(t)

	out, err := cdf.Mutate().DropWithDataContext(semantic.HpoLabelOrID).Build()
	require.NoError(t, err)
	assert.False(t, out.Frame().HasColumn("hpo"))
	assert.True(t, out.Frame().HasColumn("onset"))
}

func TestMutatorDropNullColumns(t *testing.T) {
	frame, err := NewFrame(
		NewStringColumn("patient_id", []string{"p2", "p2"}),
		NewOptColumn("hpo", []*string{nil, nil}),
		NewOptColumn("disease", []*string{strptr("OMIM:101200"), nil}),
	)
	require.NoError(t, err)
	tc := NewTableContext("t",
		subjectContext("patient_id"),
		NewSeriesContext(NewIdentifier("hpo")).WithDataContext(semantic.HpoLabelOrID),
		NewSeriesContext(NewIdentifier("disease")).WithDataContext(semantic.DiseaseLabelOrID),
	)
	cdf, err := NewContextualizedFrame(tc, frame)
	require.NoError(t, err)

	out, err := cdf.Mutate().DropNullColumns().Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"patient_id", "disease"}, out.Frame().ColumnNames())
	// The hpo descriptor matched only the dropped column and goes with it.
	assert.Len(t, out.TableContext().SeriesContexts, 2)
	assert.Nil(t, out.OwnerOf("hpo"))
}

func TestMutatorFirstErrorSticks(t *testing.T) {
	cdf := validCDF(t)

	_, err := cdf.Mutate().
		Cast("missing", DTypeBool).
		AddColumn(NewStringColumn("sex", []string{"F", "F", "M"}), nil).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestMutatorNoEditNoRevalidation(t *testing.T) {
	cdf := validCDF(t)
	out, err := cdf.Mutate().Build()
	require.NoError(t, err)
	assert.Equal(t, cdf.Name(), out.Name())
}
