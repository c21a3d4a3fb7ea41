// Package record defines the normalized clinical phenotype record and the
// builder that assembles records from collected table facts.
package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/phenotab/phenotab/genetics"
	"github.com/phenotab/phenotab/ontology"
)

// SchemaVersion is stamped into every record's metadata.
const SchemaVersion = "2.0"

// Sex is the phenotypic sex of a subject.
type Sex string

const (
	SexUnknown Sex = "UNKNOWN_SEX"
	SexFemale  Sex = "FEMALE"
	SexMale    Sex = "MALE"
	SexOther   Sex = "OTHER_SEX"
)

// ParseSex maps common sex spellings onto the canonical values. An
// unrecognized spelling is an error, not unknown: silently degrading
// recorded sex would corrupt downstream zygosity calls.
func ParseSex(s string) (Sex, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "F", "FEMALE":
		return SexFemale, nil
	case "M", "MALE":
		return SexMale, nil
	case "OTHER", "OTHER_SEX":
		return SexOther, nil
	case "U", "UNKNOWN", "UNKNOWN_SEX":
		return SexUnknown, nil
	default:
		return SexUnknown, fmt.Errorf("unrecognized sex value %q", s)
	}
}

// VitalState is the survival status of a subject.
type VitalState string

const (
	StatusUnknown  VitalState = "UNKNOWN_STATUS"
	StatusAlive    VitalState = "ALIVE"
	StatusDeceased VitalState = "DECEASED"
)

// ParseVitalState maps common status spellings onto the canonical values.
func ParseVitalState(s string) (VitalState, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ALIVE", "LIVING", "TRUE", "YES":
		return StatusAlive, nil
	case "DECEASED", "DEAD", "FALSE", "NO":
		return StatusDeceased, nil
	case "UNKNOWN", "UNKNOWN_STATUS":
		return StatusUnknown, nil
	default:
		return StatusUnknown, fmt.Errorf("unrecognized vital status %q", s)
	}
}

// Age is an ISO-8601 duration since birth.
type Age struct {
	ISO8601Duration string `json:"iso8601duration"`
}

// TimeElement is a point in a subject's timeline, as either an age or a
// timestamp. Exactly one field is set.
type TimeElement struct {
	Age       *Age       `json:"age,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// VitalStatus records survival state and, when deceased, the circumstances.
type VitalStatus struct {
	Status             VitalState      `json:"status"`
	TimeOfDeath        *TimeElement    `json:"timeOfDeath,omitempty"`
	CauseOfDeath       *ontology.Class `json:"causeOfDeath,omitempty"`
	SurvivalTimeInDays uint32          `json:"survivalTimeInDays,omitempty"`
}

// Individual is the subject of a record.
type Individual struct {
	ID                  string       `json:"id"`
	DateOfBirth         *time.Time   `json:"dateOfBirth,omitempty"`
	TimeAtLastEncounter *TimeElement `json:"timeAtLastEncounter,omitempty"`
	VitalStatus         *VitalStatus `json:"vitalStatus,omitempty"`
	Sex                 Sex          `json:"sex,omitempty"`
}

// PhenotypicFeature is an observed or explicitly excluded phenotype.
type PhenotypicFeature struct {
	Type        ontology.Class `json:"type"`
	Excluded    bool           `json:"excluded,omitempty"`
	Description string         `json:"description,omitempty"`
	Onset       *TimeElement   `json:"onset,omitempty"`
}

// Disease is a diagnosed disease with an optional onset.
type Disease struct {
	Term  ontology.Class `json:"term"`
	Onset *TimeElement   `json:"onset,omitempty"`
}

// ReferenceRange bounds a quantitative measurement.
type ReferenceRange struct {
	Unit ontology.Class `json:"unit"`
	Low  float64        `json:"low"`
	High float64        `json:"high"`
}

// Quantity is a numeric value with its unit.
type Quantity struct {
	Unit           ontology.Class  `json:"unit"`
	Value          float64         `json:"value"`
	ReferenceRange *ReferenceRange `json:"referenceRange,omitempty"`
}

// MeasurementValue holds either a quantity or a categorical concept.
type MeasurementValue struct {
	Quantity *Quantity       `json:"quantity,omitempty"`
	Concept  *ontology.Class `json:"ontologyClass,omitempty"`
}

// Measurement is one assay result for a subject.
type Measurement struct {
	Assay        ontology.Class   `json:"assay"`
	Value        MeasurementValue `json:"value"`
	TimeObserved *TimeElement     `json:"timeObserved,omitempty"`
}

// Expression is a nomenclature expression for a variant.
type Expression struct {
	Syntax string `json:"syntax"`
	Value  string `json:"value"`
}

// VariationDescriptor describes one validated variant call.
type VariationDescriptor struct {
	ID           string          `json:"id"`
	Expressions  []Expression    `json:"expressions,omitempty"`
	GeneContext  *genetics.Gene  `json:"geneContext,omitempty"`
	AllelicState *ontology.Class `json:"allelicState,omitempty"`
}

// VariantInterpretation wraps a variation descriptor in an interpretation.
type VariantInterpretation struct {
	VariationDescriptor VariationDescriptor `json:"variationDescriptor"`
}

// GenomicInterpretation is a gene- or variant-level causal call.
type GenomicInterpretation struct {
	SubjectOrBiosampleID  string                 `json:"subjectOrBiosampleId"`
	InterpretationStatus  string                 `json:"interpretationStatus"`
	Gene                  *genetics.Gene         `json:"gene,omitempty"`
	VariantInterpretation *VariantInterpretation `json:"variantInterpretation,omitempty"`
}

// InterpretationStatusCausative marks a causal genomic interpretation.
const InterpretationStatusCausative = "CAUSATIVE"

// Diagnosis ties a disease to its genomic interpretations.
type Diagnosis struct {
	Disease                ontology.Class          `json:"disease"`
	GenomicInterpretations []GenomicInterpretation `json:"genomicInterpretations,omitempty"`
}

// Interpretation is a solved diagnosis for a subject.
type Interpretation struct {
	ID             string    `json:"id"`
	ProgressStatus string    `json:"progressStatus"`
	Diagnosis      Diagnosis `json:"diagnosis"`
}

// ProgressStatusSolved marks a completed interpretation.
const ProgressStatusSolved = "SOLVED"

// Procedure is a performed clinical procedure.
type Procedure struct {
	Code      ontology.Class  `json:"code"`
	BodySite  *ontology.Class `json:"bodySite,omitempty"`
	Performed *TimeElement    `json:"performed,omitempty"`
}

// MedicalAction wraps the action kinds a record can carry.
type MedicalAction struct {
	Procedure *Procedure `json:"procedure,omitempty"`
}

// Metadata describes the provenance of a record.
type Metadata struct {
	Created       time.Time           `json:"created"`
	CreatedBy     string              `json:"createdBy"`
	SubmittedBy   string              `json:"submittedBy,omitempty"`
	Resources     []ontology.Resource `json:"resources,omitempty"`
	SchemaVersion string              `json:"schemaVersion"`
}

// Record is the normalized clinical phenotype record for one subject.
type Record struct {
	ID                 string              `json:"id"`
	Subject            Individual          `json:"subject"`
	PhenotypicFeatures []PhenotypicFeature `json:"phenotypicFeatures,omitempty"`
	Measurements       []Measurement       `json:"measurements,omitempty"`
	Interpretations    []Interpretation    `json:"interpretations,omitempty"`
	Diseases           []Disease           `json:"diseases,omitempty"`
	MedicalActions     []MedicalAction     `json:"medicalActions,omitempty"`
	Metadata           Metadata            `json:"metaData"`
}

// EntityID derives the record id for a subject: the cohort name prefixes the
// subject id unless the subject id already carries it.
func EntityID(cohort, subjectID string) string {
	if cohort == "" || strings.HasPrefix(subjectID, cohort+"-") {
		return subjectID
	}
	return cohort + "-" + subjectID
}
