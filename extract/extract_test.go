package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenotab/phenotab/semantic"
	"github.com/phenotab/phenotab/tabular"
)

func TestReadFrameCSV(t *testing.T) {
	in := "patient_id,sex,age\np1,F,12\np2,,9\n"
	frame, err := ReadFrame(strings.NewReader(in), ',')
	require.NoError(t, err)

	assert.Equal(t, []string{"patient_id", "sex", "age"}, frame.ColumnNames())
	assert.Equal(t, 2, frame.Height())

	sex, _ := frame.Column("sex")
	assert.NotNil(t, sex.StringAt(0))
	// Empty cells come in as nulls.
	assert.Nil(t, sex.StringAt(1))
}

func TestReadFrameRaggedRow(t *testing.T) {
	in := "a,b\n1,2\n3\n"
	_, err := ReadFrame(strings.NewReader(in), ',')
	require.Error(t, err)
}

func TestReadFrameEmptyInput(t *testing.T) {
	_, err := ReadFrame(strings.NewReader(""), ',')
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header")
}

func TestReadFileInfersDelimiter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labs.tsv")
	require.NoError(t, os.WriteFile(path, []byte("patient_id\tvalue\np1\t5.5\n"), 0o644))

	frame, err := ReadFile(path, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"patient_id", "value"}, frame.ColumnNames())
}

func TestDelimiterForPath(t *testing.T) {
	assert.Equal(t, '\t', DelimiterForPath("x/cohort.TSV"))
	assert.Equal(t, '\t', DelimiterForPath("cohort.tab"))
	assert.Equal(t, ',', DelimiterForPath("cohort.csv"))
	assert.Equal(t, ',', DelimiterForPath("cohort.txt"))
}

func TestDiscoverSortsMatches(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("id\n1\n"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "c.csv"), []byte("id\n1\n"), 0o644))

	src := Source{Pattern: "**/*.csv", TableContext: "patients"}
	matches, err := src.Discover(dir)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, filepath.Join(dir, "a.csv"), matches[0])
	assert.Equal(t, filepath.Join(dir, "b.csv"), matches[1])
	assert.Equal(t, filepath.Join(dir, "nested", "c.csv"), matches[2])
}

func TestPreprocessFillAndAlias(t *testing.T) {
	yes := "true"
	no := "false"
	tc := tabular.NewTableContext("patients",
		tabular.NewSeriesContext(tabular.NewIdentifier("patient_id")).WithDataContext(semantic.SubjectID),
		tabular.NewSeriesContext(tabular.NewIdentifier("observed")).
			WithDataContext(semantic.ObservationStatus).
			WithFillMissing(tabular.StringValue("unknown")).
			WithAliasMap(tabular.AliasMap{
				Aliases: map[string]*string{
					"present": &yes,
					"absent":  &no,
					"unknown": nil,
				},
			}),
	)
	frame, err := tabular.NewFrame(
		tabular.NewStringColumn("patient_id", []string{"p1", "p2", "p3"}),
		tabular.NewOptColumn("observed", []*string{strp("present"), nil, strp("absent")}),
	)
	require.NoError(t, err)

	out, err := Preprocess(tc, frame)
	require.NoError(t, err)

	col, _ := out.Column("observed")
	require.NotNil(t, col.StringAt(0))
	assert.Equal(t, "true", *col.StringAt(0))
	// The fill value was itself aliased back to null.
	assert.Nil(t, col.StringAt(1))
	assert.Equal(t, "false", *col.StringAt(2))
}

func TestLoadTableEndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patients.csv")
	require.NoError(t, os.WriteFile(path, []byte("patient_id,sex\np1,w\np2,m\n"), 0o644))

	female := "F"
	male := "M"
	tc := tabular.NewTableContext("patients",
		tabular.NewSeriesContext(tabular.NewIdentifier("patient_id")).WithDataContext(semantic.SubjectID),
		tabular.NewSeriesContext(tabular.NewIdentifier("sex")).
			WithDataContext(semantic.SubjectSex).
			WithAliasMap(tabular.AliasMap{Aliases: map[string]*string{"w": &female, "m": &male}}),
	)

	cdf, err := LoadTable(path, 0, tc)
	require.NoError(t, err)
	assert.Equal(t, "patients", cdf.Name())
	assert.Equal(t, []string{"p1", "p2"}, cdf.SubjectIDs())

	sex, _ := cdf.Frame().Column("sex")
	assert.Equal(t, "F", *sex.StringAt(0))
}

func TestLoadTableDanglingDescriptor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patients.csv")
	require.NoError(t, os.WriteFile(path, []byte("patient_id\np1\n"), 0o644))

	tc := tabular.NewTableContext("patients",
		tabular.NewSeriesContext(tabular.NewIdentifier("patient_id")).WithDataContext(semantic.SubjectID),
		tabular.NewSeriesContext(tabular.NewIdentifier("no_such_column")).WithDataContext(semantic.SubjectSex),
	)

	_, err := LoadTable(path, 0, tc)
	require.Error(t, err)
	var dangling *tabular.DanglingContextError
	require.ErrorAs(t, err, &dangling)
}

func strp(s string) *string { return &s }
