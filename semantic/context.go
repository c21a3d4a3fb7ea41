// Package semantic defines the controlled vocabulary of semantic contexts
// that annotate table columns and headers. A Context states what the values
// in a column (or the header string itself) mean clinically; downstream
// collectors dispatch on contexts rather than on column names.
package semantic

import "fmt"

// Kind identifies a context variant with its parameters erased. Two
// quantitative-measurement contexts with different assay ids share the same
// Kind. Kind values double as the YAML spelling of parameter-free contexts.
type Kind string

// All context kinds.
const (
	KindNone                       Kind = "none"
	KindSubjectID                  Kind = "subject_id"
	KindSubjectSex                 Kind = "subject_sex"
	KindDateOfBirth                Kind = "date_of_birth"
	KindVitalStatus                Kind = "vital_status"
	KindLastEncounterAge           Kind = "last_encounter_age"
	KindLastEncounterDate          Kind = "last_encounter_date"
	KindTimeOfDeathAge             Kind = "time_of_death_age"
	KindTimeOfDeathDate            Kind = "time_of_death_date"
	KindCauseOfDeath               Kind = "cause_of_death"
	KindSurvivalTimeDays           Kind = "survival_time_in_days"
	KindHpoLabelOrID               Kind = "hpo_label_or_id"
	KindMultiHpoID                 Kind = "multi_hpo_id"
	KindDiseaseLabelOrID           Kind = "disease_label_or_id"
	KindHgncSymbolOrID             Kind = "hgnc_symbol_or_id"
	KindHgvs                       Kind = "hgvs"
	KindQuantitativeMeasurement    Kind = "quantitative_measurement"
	KindQualitativeMeasurement     Kind = "qualitative_measurement"
	KindReferenceRangeStart        Kind = "reference_range_start"
	KindReferenceRangeEnd          Kind = "reference_range_end"
	KindTreatmentTarget            Kind = "treatment_target"
	KindTreatmentIntent            Kind = "treatment_intent"
	KindTreatmentResponse          Kind = "treatment_response"
	KindTreatmentTerminationReason Kind = "treatment_termination_reason"
	KindProcedureLabelOrID         Kind = "procedure_label_or_id"
	KindProcedureBodySite          Kind = "procedure_body_site"
	KindTimeOfProcedureAge         Kind = "time_of_procedure_age"
	KindTimeOfProcedureDate        Kind = "time_of_procedure_date"
	KindObservationStatus          Kind = "observation_status"
	KindOnsetAge                   Kind = "onset_age"
	KindOnsetDate                  Kind = "onset_date"
)

var allKinds = map[Kind]struct{}{
	KindNone: {}, KindSubjectID: {}, KindSubjectSex: {}, KindDateOfBirth: {},
	KindVitalStatus: {}, KindLastEncounterAge: {}, KindLastEncounterDate: {},
	KindTimeOfDeathAge: {}, KindTimeOfDeathDate: {}, KindCauseOfDeath: {},
	KindSurvivalTimeDays: {}, KindHpoLabelOrID: {}, KindMultiHpoID: {},
	KindDiseaseLabelOrID: {}, KindHgncSymbolOrID: {}, KindHgvs: {},
	KindQuantitativeMeasurement: {}, KindQualitativeMeasurement: {},
	KindReferenceRangeStart: {}, KindReferenceRangeEnd: {},
	KindTreatmentTarget: {}, KindTreatmentIntent: {}, KindTreatmentResponse: {},
	KindTreatmentTerminationReason: {}, KindProcedureLabelOrID: {},
	KindProcedureBodySite: {}, KindTimeOfProcedureAge: {},
	KindTimeOfProcedureDate: {}, KindObservationStatus: {},
	KindOnsetAge: {}, KindOnsetDate: {},
}

// ParseKind validates a kind spelling as used in YAML table contexts.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := allKinds[k]; !ok {
		return KindNone, fmt.Errorf("unknown semantic context %q", s)
	}
	return k, nil
}

// Context is a semantic tag. Parameter-free contexts are the package-level
// values below; parameterized ones are built with the New* constructors.
// Contexts are comparable with ==, which compares parameters too; use Kind
// equality for parameter-erased comparison.
type Context struct {
	Kind Kind
	// AssayID is set for quantitative and qualitative measurements.
	AssayID string
	// UnitOntologyID is set for quantitative measurements.
	UnitOntologyID string
}

// Parameter-free contexts.
var (
	None                       = Context{Kind: KindNone}
	SubjectID                  = Context{Kind: KindSubjectID}
	SubjectSex                 = Context{Kind: KindSubjectSex}
	DateOfBirth                = Context{Kind: KindDateOfBirth}
	VitalStatus                = Context{Kind: KindVitalStatus}
	LastEncounterAge           = Context{Kind: KindLastEncounterAge}
	LastEncounterDate          = Context{Kind: KindLastEncounterDate}
	TimeOfDeathAge             = Context{Kind: KindTimeOfDeathAge}
	TimeOfDeathDate            = Context{Kind: KindTimeOfDeathDate}
	CauseOfDeath               = Context{Kind: KindCauseOfDeath}
	SurvivalTimeDays           = Context{Kind: KindSurvivalTimeDays}
	HpoLabelOrID               = Context{Kind: KindHpoLabelOrID}
	MultiHpoID                 = Context{Kind: KindMultiHpoID}
	DiseaseLabelOrID           = Context{Kind: KindDiseaseLabelOrID}
	HgncSymbolOrID             = Context{Kind: KindHgncSymbolOrID}
	Hgvs                       = Context{Kind: KindHgvs}
	ReferenceRangeStart        = Context{Kind: KindReferenceRangeStart}
	ReferenceRangeEnd          = Context{Kind: KindReferenceRangeEnd}
	TreatmentTarget            = Context{Kind: KindTreatmentTarget}
	TreatmentIntent            = Context{Kind: KindTreatmentIntent}
	TreatmentResponse          = Context{Kind: KindTreatmentResponse}
	TreatmentTerminationReason = Context{Kind: KindTreatmentTerminationReason}
	ProcedureLabelOrID         = Context{Kind: KindProcedureLabelOrID}
	ProcedureBodySite          = Context{Kind: KindProcedureBodySite}
	TimeOfProcedureAge         = Context{Kind: KindTimeOfProcedureAge}
	TimeOfProcedureDate        = Context{Kind: KindTimeOfProcedureDate}
	ObservationStatus          = Context{Kind: KindObservationStatus}
	OnsetAge                   = Context{Kind: KindOnsetAge}
	OnsetDate                  = Context{Kind: KindOnsetDate}
)

// NewQuantitativeMeasurement tags a column of numeric measurement values for
// the given assay, expressed in the given unit.
func NewQuantitativeMeasurement(assayID, unitOntologyID string) Context {
	return Context{Kind: KindQuantitativeMeasurement, AssayID: assayID, UnitOntologyID: unitOntologyID}
}

// NewQualitativeMeasurement tags a column of categorical measurement values
// for the given assay.
func NewQualitativeMeasurement(assayID string) Context {
	return Context{Kind: KindQualitativeMeasurement, AssayID: assayID}
}

// IsNone reports whether c is the absent context. The zero Context counts as
// None so that unset descriptor fields behave like explicit none.
func (c Context) IsNone() bool {
	return c.Kind == KindNone || c.Kind == ""
}

func (c Context) String() string {
	switch c.Kind {
	case KindQuantitativeMeasurement:
		return fmt.Sprintf("quantitative_measurement(assay=%s, unit=%s)", c.AssayID, c.UnitOntologyID)
	case KindQualitativeMeasurement:
		return fmt.Sprintf("qualitative_measurement(assay=%s)", c.AssayID)
	case "":
		return string(KindNone)
	default:
		return string(c.Kind)
	}
}

// EraseKind returns the parameter-erased kind, normalizing the zero value
// to KindNone.
func (c Context) EraseKind() Kind {
	if c.Kind == "" {
		return KindNone
	}
	return c.Kind
}
