package collect

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenotab/phenotab/genetics"
	"github.com/phenotab/phenotab/ontology"
	"github.com/phenotab/phenotab/record"
	"github.com/phenotab/phenotab/semantic"
	"github.com/phenotab/phenotab/tabular"
)

func testLibraries() record.Libraries {
	phenotypes := ontology.NewBiDict("HP", "2024-08-13", map[string]string{
		"HP:0001250": "Seizure",
		"HP:0010544": "Spasmus nutans",
		"HP:0001263": "Global developmental delay",
	})
	diseases := ontology.NewBiDict("OMIM", "latest", map[string]string{
		"OMIM:135100": "Fibrodysplasia ossificans progressiva",
		"OMIM:306700": "Hemophilia A",
	})
	assays := ontology.NewBiDict("LOINC", "latest", map[string]string{
		"LOINC:2823-3": "Potassium [Moles/volume] in Serum or Plasma",
		"LOINC:883-9":  "ABO group [Type] in Blood",
	})
	units := ontology.NewBiDict("UO", "latest", map[string]string{
		"UO:0000313": "millimole per litre",
	})
	procedures := ontology.NewBiDict("NCIT", "latest", map[string]string{
		"NCIT:C51585": "Appendectomy",
	})
	anatomy := ontology.NewBiDict("UBERON", "latest", map[string]string{
		"UBERON:0000970": "eye",
	})
	qualitative := ontology.NewBiDict("NCIT", "latest", map[string]string{
		"NCIT:C76246": "Blood Group A",
	})
	return record.Libraries{
		Phenotypes:  ontology.NewLibrary("phenotypes", phenotypes),
		Diseases:    ontology.NewLibrary("diseases", diseases),
		Assays:      ontology.NewLibrary("assays", assays),
		Units:       ontology.NewLibrary("units", units),
		Procedures:  ontology.NewLibrary("procedures", procedures),
		Anatomy:     ontology.NewLibrary("anatomy", anatomy),
		Qualitative: ontology.NewLibrary("qualitative", qualitative),
	}
}

func testBuilder() *record.Builder {
	genes := genetics.NewGeneTable([]genetics.Gene{
		{Symbol: "ACVR1", ID: "HGNC:171"},
		{Symbol: "F8", ID: "HGNC:3546"},
	})
	variants := genetics.NewVariantTable([]genetics.Variant{
		{
			ID:         "NM_001111067.4:c.617G>A",
			Hgvs:       "NM_001111067.4:c.617G>A",
			Gene:       genetics.Gene{Symbol: "ACVR1", ID: "HGNC:171"},
			Chromosome: "2",
		},
		{
			ID:         "NM_000132.4:c.6046C>T",
			Hgvs:       "NM_000132.4:c.6046C>T",
			Gene:       genetics.Gene{Symbol: "F8", ID: "HGNC:3546"},
			Chromosome: "X",
		},
	})
	return record.NewBuilder(record.BuilderConfig{
		CohortName:  "fop",
		CreatedBy:   "tester",
		SubmittedBy: "lab",
		Libraries:   testLibraries(),
		Genes:       genes,
		Variants:    variants,
		Now: func() time.Time {
			return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
		},
	})
}

func mustCDF(t *testing.T, tc *tabular.TableContext, cols ...tabular.Column) *tabular.ContextualizedFrame {
	t.Helper()
	frame, err := tabular.NewFrame(cols...)
	require.NoError(t, err)
	cdf, err := tabular.NewContextualizedFrame(tc, frame)
	require.NoError(t, err)
	return cdf
}

func opt(v string) *string { return &v }

func recordByID(t *testing.T, recs []record.Record, id string) record.Record {
	t.Helper()
	for _, r := range recs {
		if r.ID == id {
			return r
		}
	}
	t.Fatalf("no record with id %q", id)
	return record.Record{}
}

func patientsCDF(t *testing.T) *tabular.ContextualizedFrame {
	tc := tabular.NewTableContext("patients",
		tabular.NewSeriesContext(tabular.NewIdentifier("patient_id")).WithDataContext(semantic.SubjectID),
		tabular.NewSeriesContext(tabular.NewIdentifier("sex")).WithDataContext(semantic.SubjectSex),
		tabular.NewSeriesContext(tabular.NewIdentifier("vital_status")).WithDataContext(semantic.VitalStatus),
		tabular.NewSeriesContext(tabular.NewIdentifier("death_age")).WithDataContext(semantic.TimeOfDeathAge),
		tabular.NewSeriesContext(tabular.NewIdentifier("cause_of_death")).WithDataContext(semantic.CauseOfDeath),
		tabular.NewSeriesContext(tabular.NewIdentifier("survival_days")).WithDataContext(semantic.SurvivalTimeDays),
	)
	return mustCDF(t, tc,
		tabular.NewStringColumn("patient_id", []string{"p2", "p1"}),
		tabular.NewStringColumn("sex", []string{"M", "F"}),
		tabular.NewStringColumn("vital_status", []string{"alive", "deceased"}),
		tabular.NewOptColumn("death_age", []*string{nil, opt("P70Y")}),
		tabular.NewOptColumn("cause_of_death", []*string{nil, opt("Hemophilia A")}),
		tabular.NewOptColumn("survival_days", []*string{nil, opt("120")}),
	)
}

func labsCDF(t *testing.T) *tabular.ContextualizedFrame {
	tc := tabular.NewTableContext("labs",
		tabular.NewSeriesContext(tabular.NewIdentifier("patient_id")).WithDataContext(semantic.SubjectID),
		tabular.NewSeriesContext(tabular.NewIdentifier("potassium")).
			WithDataContext(semantic.NewQuantitativeMeasurement("LOINC:2823-3", "UO:0000313")).
			WithBuildingBlockID("k"),
		tabular.NewSeriesContext(tabular.NewIdentifier("ref_low")).
			WithDataContext(semantic.ReferenceRangeStart).
			WithBuildingBlockID("k"),
		tabular.NewSeriesContext(tabular.NewIdentifier("ref_high")).
			WithDataContext(semantic.ReferenceRangeEnd).
			WithBuildingBlockID("k"),
		tabular.NewSeriesContext(tabular.NewIdentifier("measured_age")).
			WithDataContext(semantic.OnsetAge).
			WithBuildingBlockID("k"),
	)
	return mustCDF(t, tc,
		tabular.NewStringColumn("patient_id", []string{"p1", "p1", "p3"}),
		tabular.NewOptColumn("potassium", []*string{opt("5.5"), nil, opt("4.2")}),
		tabular.NewOptColumn("ref_low", []*string{opt("3.5"), nil, opt("3.5")}),
		tabular.NewOptColumn("ref_high", []*string{opt("5.1"), nil, opt("5.1")}),
		tabular.NewOptColumn("measured_age", []*string{opt("P30Y"), nil, opt("P41Y")}),
	)
}

func TestBrokerGroupsSubjectsAcrossTables(t *testing.T) {
	b := testBuilder()
	broker := NewBroker(nil)

	recs, err := broker.Process(context.Background(), b, []*tabular.ContextualizedFrame{
		patientsCDF(t), labsCDF(t),
	})
	require.NoError(t, err)
	require.Len(t, recs, 3)

	// First-appearance order across tables: p2 and p1 from patients, p3
	// only in labs.
	assert.Equal(t, "fop-p2", recs[0].ID)
	assert.Equal(t, "fop-p1", recs[1].ID)
	assert.Equal(t, "fop-p3", recs[2].ID)

	p2 := recordByID(t, recs, "fop-p2")
	assert.Equal(t, record.SexMale, p2.Subject.Sex)
	require.NotNil(t, p2.Subject.VitalStatus)
	assert.Equal(t, record.StatusAlive, p2.Subject.VitalStatus.Status)
	assert.Nil(t, p2.Subject.VitalStatus.TimeOfDeath)

	p1 := recordByID(t, recs, "fop-p1")
	assert.Equal(t, record.SexFemale, p1.Subject.Sex)
	vs := p1.Subject.VitalStatus
	require.NotNil(t, vs)
	assert.Equal(t, record.StatusDeceased, vs.Status)
	require.NotNil(t, vs.TimeOfDeath)
	assert.Equal(t, "P70Y", vs.TimeOfDeath.Age.ISO8601Duration)
	require.NotNil(t, vs.CauseOfDeath)
	assert.Equal(t, "OMIM:306700", vs.CauseOfDeath.ID)
	assert.Equal(t, uint32(120), vs.SurvivalTimeInDays)

	require.Len(t, p1.Measurements, 1)
	m := p1.Measurements[0]
	assert.Equal(t, "LOINC:2823-3", m.Assay.ID)
	require.NotNil(t, m.Value.Quantity)
	assert.Equal(t, 5.5, m.Value.Quantity.Value)
	require.NotNil(t, m.Value.Quantity.ReferenceRange)
	assert.Equal(t, 3.5, m.Value.Quantity.ReferenceRange.Low)
	assert.Equal(t, 5.1, m.Value.Quantity.ReferenceRange.High)
	require.NotNil(t, m.TimeObserved)
	assert.Equal(t, "P30Y", m.TimeObserved.Age.ISO8601Duration)

	p3 := recordByID(t, recs, "fop-p3")
	require.Len(t, p3.Measurements, 1)
	assert.Equal(t, 4.2, p3.Measurements[0].Value.Quantity.Value)
}

func TestBrokerCollectorErrorAborts(t *testing.T) {
	tc := tabular.NewTableContext("patients",
		tabular.NewSeriesContext(tabular.NewIdentifier("patient_id")).WithDataContext(semantic.SubjectID),
		tabular.NewSeriesContext(tabular.NewIdentifier("survival_days")).WithDataContext(semantic.SurvivalTimeDays),
	)
	cdf := mustCDF(t, tc,
		tabular.NewStringColumn("patient_id", []string{"p1"}),
		tabular.NewStringColumn("survival_days", []string{"soon"}),
	)

	_, err := NewBroker(nil).Process(context.Background(), testBuilder(), []*tabular.ContextualizedFrame{cdf})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `collector "individual"`)
	assert.Contains(t, err.Error(), "survival time")
}

func TestPartitionDropsSubjectLocalNullColumns(t *testing.T) {
	parts, err := partitionBySubject(patientsCDF(t))
	require.NoError(t, err)
	require.Len(t, parts, 2)

	assert.Equal(t, "p2", parts[0].subject)
	// p2 has no death data, so those columns and descriptors vanish from
	// the partition.
	assert.False(t, parts[0].frame.Frame().HasColumn("death_age"))
	assert.False(t, parts[0].frame.Frame().HasColumn("cause_of_death"))
	assert.True(t, parts[0].frame.Frame().HasColumn("vital_status"))

	assert.Equal(t, "p1", parts[1].subject)
	assert.True(t, parts[1].frame.Frame().HasColumn("death_age"))
}

func TestSplitHeaderCode(t *testing.T) {
	code, block := SplitHeaderCode("HP:0001250#b1")
	assert.Equal(t, "HP:0001250", code)
	assert.Equal(t, "b1", block)

	code, block = SplitHeaderCode("HP:0001250")
	assert.Equal(t, "HP:0001250", code)
	assert.Equal(t, "", block)
}
