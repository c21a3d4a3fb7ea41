package record

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phenotab/phenotab/genetics"
	"github.com/phenotab/phenotab/ontology"
)

// Libraries groups the term libraries the builder resolves against. A nil
// library is "not configured": operations that need it fail with a
// configuration error the moment a fact actually requires resolution.
type Libraries struct {
	Phenotypes  *ontology.Library
	Diseases    *ontology.Library
	Assays      *ontology.Library
	Units       *ontology.Library
	Procedures  *ontology.Library
	Anatomy     *ontology.Library
	Qualitative *ontology.Library
}

// BuilderConfig configures a Builder.
type BuilderConfig struct {
	// CohortName prefixes generated record ids.
	CohortName string
	// CreatedBy and SubmittedBy are stamped into record metadata.
	CreatedBy   string
	SubmittedBy string

	Libraries Libraries

	// Genes resolves HGNC symbols and ids; Variants validates HGVS.
	Genes    genetics.GeneService
	Variants genetics.VariantService
	// CrossCheckGene rejects variants whose validated gene differs from the
	// gene declared alongside them in the source table.
	CrossCheckGene bool

	Logger *slog.Logger
	// Now supplies the metadata creation timestamp; nil means time.Now.
	Now func() time.Time
}

// Builder accumulates facts per subject and assembles the final records.
// It is not safe for concurrent use.
type Builder struct {
	cfg    BuilderConfig
	logger *slog.Logger
	now    func() time.Time

	records map[string]*Record
	order   []string
}

// NewBuilder creates an empty builder.
func NewBuilder(cfg BuilderConfig) *Builder {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Builder{
		cfg:     cfg,
		logger:  logger,
		now:     now,
		records: make(map[string]*Record),
	}
}

func (b *Builder) entityFor(subjectID string) *Record {
	id := EntityID(b.cfg.CohortName, subjectID)
	if rec, ok := b.records[id]; ok {
		return rec
	}
	rec := &Record{
		ID:      id,
		Subject: Individual{ID: subjectID, Sex: SexUnknown},
	}
	b.records[id] = rec
	b.order = append(b.order, id)
	return rec
}

// SexOf returns the recorded sex for a subject, unknown if nothing was
// recorded yet.
func (b *Builder) SexOf(subjectID string) Sex {
	if rec, ok := b.records[EntityID(b.cfg.CohortName, subjectID)]; ok {
		return rec.Subject.Sex
	}
	return SexUnknown
}

// UpsertIndividual records demographic facts. Nil arguments leave the
// corresponding field untouched.
func (b *Builder) UpsertIndividual(subjectID string, dateOfBirth, sex *string, lastEncounter *TimeElement) error {
	rec := b.entityFor(subjectID)
	if dateOfBirth != nil {
		t, err := ParseTimestamp(*dateOfBirth)
		if err != nil {
			return fmt.Errorf("subject %q: date of birth: %w", subjectID, err)
		}
		rec.Subject.DateOfBirth = &t
	}
	if sex != nil {
		parsed, err := ParseSex(*sex)
		if err != nil {
			return fmt.Errorf("subject %q: %w", subjectID, err)
		}
		rec.Subject.Sex = parsed
	}
	if lastEncounter != nil {
		rec.Subject.TimeAtLastEncounter = lastEncounter
	}
	return nil
}

// UpsertVitalStatus replaces the subject's vital status wholesale. Partial
// updates are not supported: the caller assembles the complete status and
// the last write wins. A non-nil causeOfDeath is resolved against the
// disease library.
func (b *Builder) UpsertVitalStatus(ctx context.Context, subjectID string, vs VitalStatus, causeOfDeath *string) error {
	rec := b.entityFor(subjectID)
	if causeOfDeath != nil {
		class, ref, err := b.cfg.Libraries.Diseases.Resolve(ctx, *causeOfDeath)
		if err != nil {
			return fmt.Errorf("subject %q: cause of death %q: %w", subjectID, *causeOfDeath, err)
		}
		b.ensureResource(rec, ref)
		vs.CauseOfDeath = &class
	}
	rec.Subject.VitalStatus = &vs
	return nil
}

// UpsertPhenotypicFeature records an observed or excluded phenotype, keyed
// by the resolved term id. Repeated upserts of the same term update the
// excluded flag and, when provided, onset and description.
func (b *Builder) UpsertPhenotypicFeature(ctx context.Context, subjectID, query string, excluded bool, onset *TimeElement, description string) error {
	rec := b.entityFor(subjectID)
	class, ref, err := b.cfg.Libraries.Phenotypes.Resolve(ctx, query)
	if err != nil {
		return fmt.Errorf("subject %q: phenotype %q: %w", subjectID, query, err)
	}
	b.ensureResource(rec, ref)

	for i := range rec.PhenotypicFeatures {
		if rec.PhenotypicFeatures[i].Type.ID != class.ID {
			continue
		}
		rec.PhenotypicFeatures[i].Excluded = excluded
		if onset != nil {
			rec.PhenotypicFeatures[i].Onset = onset
		}
		if description != "" {
			rec.PhenotypicFeatures[i].Description = description
		}
		return nil
	}
	rec.PhenotypicFeatures = append(rec.PhenotypicFeatures, PhenotypicFeature{
		Type:        class,
		Excluded:    excluded,
		Onset:       onset,
		Description: description,
	})
	return nil
}

// InsertDisease appends a diagnosed disease. Deliberately not idempotent:
// the same diagnosis asserted twice in the source appears twice.
func (b *Builder) InsertDisease(ctx context.Context, subjectID, query string, onset *TimeElement) error {
	rec := b.entityFor(subjectID)
	class, ref, err := b.cfg.Libraries.Diseases.Resolve(ctx, query)
	if err != nil {
		return fmt.Errorf("subject %q: disease %q: %w", subjectID, query, err)
	}
	b.ensureResource(rec, ref)
	rec.Diseases = append(rec.Diseases, Disease{Term: class, Onset: onset})
	return nil
}

// UpsertInterpretation records gene- and variant-level causal calls under a
// diagnosed disease. Interpretations are keyed by record id plus disease
// term id, and genomic interpretations by their gene or variant, so
// repeating an upsert replaces the matching entries instead of duplicating
// them.
func (b *Builder) UpsertInterpretation(ctx context.Context, subjectID, diseaseQuery string, data genetics.GeneVariantData, sex genetics.ChromosomalSex) error {
	if data.IsNone() {
		return nil
	}
	rec := b.entityFor(subjectID)
	class, ref, err := b.cfg.Libraries.Diseases.Resolve(ctx, diseaseQuery)
	if err != nil {
		return fmt.Errorf("subject %q: disease %q: %w", subjectID, diseaseQuery, err)
	}
	b.ensureResource(rec, ref)

	interp := b.interpretationFor(rec, class)

	switch data.Kind {
	case genetics.CausativeGene:
		if b.cfg.Genes == nil {
			return fmt.Errorf("subject %q: gene %q declared but no gene service is configured", subjectID, data.Gene)
		}
		gene, err := b.cfg.Genes.ResolveGene(ctx, data.Gene)
		if err != nil {
			return fmt.Errorf("subject %q: %w", subjectID, err)
		}
		b.ensureResource(rec, ontology.NewResourceRef("HGNC", ""))
		upsertGenomicInterpretation(interp, GenomicInterpretation{
			SubjectOrBiosampleID: subjectID,
			InterpretationStatus: InterpretationStatusCausative,
			Gene:                 &gene,
		})
		return nil

	default:
		if b.cfg.Variants == nil {
			return fmt.Errorf("subject %q: variant declared but no variant service is configured", subjectID)
		}
		for _, expr := range data.Variants {
			gi, err := b.variantInterpretation(ctx, subjectID, data, sex, expr)
			if err != nil {
				return err
			}
			b.ensureResource(rec, ontology.NewResourceRef("GENO", ""))
			if gi.VariantInterpretation.VariationDescriptor.GeneContext != nil {
				b.ensureResource(rec, ontology.NewResourceRef("HGNC", ""))
			}
			upsertGenomicInterpretation(interp, gi)
		}
		return nil
	}
}

// genomicKey identifies a genomic interpretation within a diagnosis: the
// variant it describes, or the gene for gene-only calls.
func genomicKey(gi GenomicInterpretation) string {
	if gi.VariantInterpretation != nil {
		vd := gi.VariantInterpretation.VariationDescriptor
		if vd.ID != "" {
			return "variant:" + vd.ID
		}
		if len(vd.Expressions) > 0 {
			return "variant:" + vd.Expressions[0].Value
		}
	}
	if gi.Gene != nil {
		if gi.Gene.ID != "" {
			return "gene:" + gi.Gene.ID
		}
		return "gene:" + gi.Gene.Symbol
	}
	return ""
}

func upsertGenomicInterpretation(interp *Interpretation, gi GenomicInterpretation) {
	key := genomicKey(gi)
	for i := range interp.Diagnosis.GenomicInterpretations {
		if genomicKey(interp.Diagnosis.GenomicInterpretations[i]) == key {
			interp.Diagnosis.GenomicInterpretations[i] = gi
			return
		}
	}
	interp.Diagnosis.GenomicInterpretations = append(interp.Diagnosis.GenomicInterpretations, gi)
}

func (b *Builder) interpretationFor(rec *Record, disease ontology.Class) *Interpretation {
	id := rec.ID + "-" + disease.ID
	for i := range rec.Interpretations {
		if rec.Interpretations[i].ID == id {
			return &rec.Interpretations[i]
		}
	}
	rec.Interpretations = append(rec.Interpretations, Interpretation{
		ID:             id,
		ProgressStatus: ProgressStatusSolved,
		Diagnosis:      Diagnosis{Disease: disease},
	})
	return &rec.Interpretations[len(rec.Interpretations)-1]
}

func (b *Builder) variantInterpretation(ctx context.Context, subjectID string, data genetics.GeneVariantData, sex genetics.ChromosomalSex, expr string) (GenomicInterpretation, error) {
	variant, err := b.cfg.Variants.ValidateVariant(ctx, expr)
	if err != nil {
		return GenomicInterpretation{}, fmt.Errorf("subject %q: %w", subjectID, err)
	}

	if b.cfg.CrossCheckGene && data.Gene != "" && variant.Gene.Symbol != "" {
		declared := strings.TrimSpace(data.Gene)
		if !strings.EqualFold(declared, variant.Gene.Symbol) && declared != variant.Gene.ID {
			return GenomicInterpretation{}, &genetics.GeneMismatchError{
				Hgvs:     variant.Hgvs,
				Declared: declared,
				Actual:   variant.Gene.Symbol,
			}
		}
	}

	geneCtx := variant.Gene
	if geneCtx.Symbol == "" && data.Gene != "" && b.cfg.Genes != nil {
		if resolved, err := b.cfg.Genes.ResolveGene(ctx, data.Gene); err == nil {
			geneCtx = resolved
		} else {
			b.logger.Warn("declared gene could not be resolved",
				slog.String("subject", subjectID),
				slog.String("gene", data.Gene))
		}
	}

	zygosity, err := genetics.Zygosity(sex, data.AlleleCount(), variant.Chromosome)
	if err != nil {
		return GenomicInterpretation{}, fmt.Errorf("subject %q: variant %q: %w", subjectID, variant.Hgvs, err)
	}

	vd := VariationDescriptor{
		ID:           variant.ID,
		Expressions:  []Expression{{Syntax: "hgvs", Value: variant.Hgvs}},
		AllelicState: &zygosity,
	}
	if geneCtx.Symbol != "" || geneCtx.ID != "" {
		vd.GeneContext = &geneCtx
	}
	return GenomicInterpretation{
		SubjectOrBiosampleID:  subjectID,
		InterpretationStatus:  InterpretationStatusCausative,
		VariantInterpretation: &VariantInterpretation{VariationDescriptor: vd},
	}, nil
}

// InsertQuantitativeMeasurement records a numeric assay result. The
// reference range is attached only when both bounds are present; exactly one
// bound is a data defect.
func (b *Builder) InsertQuantitativeMeasurement(ctx context.Context, subjectID, assayID, unitID string, value float64, refLow, refHigh *float64, timeObserved *TimeElement) error {
	rec := b.entityFor(subjectID)
	assay, assayRef, err := b.cfg.Libraries.Assays.Resolve(ctx, assayID)
	if err != nil {
		return fmt.Errorf("subject %q: assay %q: %w", subjectID, assayID, err)
	}
	unit, unitRef, err := b.cfg.Libraries.Units.Resolve(ctx, unitID)
	if err != nil {
		return fmt.Errorf("subject %q: unit %q: %w", subjectID, unitID, err)
	}
	b.ensureResource(rec, assayRef)
	b.ensureResource(rec, unitRef)

	quantity := Quantity{Unit: unit, Value: value}
	switch {
	case refLow != nil && refHigh != nil:
		quantity.ReferenceRange = &ReferenceRange{Unit: unit, Low: *refLow, High: *refHigh}
	case refLow != nil || refHigh != nil:
		return fmt.Errorf("subject %q: assay %q: reference range needs both bounds", subjectID, assayID)
	}

	rec.Measurements = append(rec.Measurements, Measurement{
		Assay:        assay,
		Value:        MeasurementValue{Quantity: &quantity},
		TimeObserved: timeObserved,
	})
	return nil
}

// InsertQualitativeMeasurement records a categorical assay result.
func (b *Builder) InsertQualitativeMeasurement(ctx context.Context, subjectID, assayID, value string, timeObserved *TimeElement) error {
	rec := b.entityFor(subjectID)
	assay, assayRef, err := b.cfg.Libraries.Assays.Resolve(ctx, assayID)
	if err != nil {
		return fmt.Errorf("subject %q: assay %q: %w", subjectID, assayID, err)
	}
	concept, conceptRef, err := b.cfg.Libraries.Qualitative.Resolve(ctx, value)
	if err != nil {
		return fmt.Errorf("subject %q: assay %q: value %q: %w", subjectID, assayID, value, err)
	}
	b.ensureResource(rec, assayRef)
	b.ensureResource(rec, conceptRef)

	rec.Measurements = append(rec.Measurements, Measurement{
		Assay:        assay,
		Value:        MeasurementValue{Concept: &concept},
		TimeObserved: timeObserved,
	})
	return nil
}

// InsertProcedure records a performed clinical procedure.
func (b *Builder) InsertProcedure(ctx context.Context, subjectID, codeQuery string, bodySite *string, performed *TimeElement) error {
	rec := b.entityFor(subjectID)
	code, codeRef, err := b.cfg.Libraries.Procedures.Resolve(ctx, codeQuery)
	if err != nil {
		return fmt.Errorf("subject %q: procedure %q: %w", subjectID, codeQuery, err)
	}
	b.ensureResource(rec, codeRef)

	proc := Procedure{Code: code, Performed: performed}
	if bodySite != nil {
		site, siteRef, err := b.cfg.Libraries.Anatomy.Resolve(ctx, *bodySite)
		if err != nil {
			return fmt.Errorf("subject %q: body site %q: %w", subjectID, *bodySite, err)
		}
		b.ensureResource(rec, siteRef)
		proc.BodySite = &site
	}
	rec.MedicalActions = append(rec.MedicalActions, MedicalAction{Procedure: &proc})
	return nil
}

// EnsureResource registers the resource behind a reference on the subject's
// record metadata, deduplicated case-insensitively on (id, version).
func (b *Builder) EnsureResource(subjectID string, ref ontology.ResourceRef) {
	b.ensureResource(b.entityFor(subjectID), ref)
}

func (b *Builder) ensureResource(rec *Record, ref ontology.ResourceRef) {
	resource, ok := ontology.ResolveResource(ref)
	if !ok {
		b.logger.Warn("no resource metadata for prefix", slog.String("prefix", ref.Prefix))
		return
	}
	for _, existing := range rec.Metadata.Resources {
		if strings.EqualFold(existing.ID, resource.ID) && strings.EqualFold(existing.Version, resource.Version) {
			return
		}
	}
	rec.Metadata.Resources = append(rec.Metadata.Resources, resource)
}

// Build stamps metadata and returns the records in first-seen subject order.
func (b *Builder) Build() []Record {
	created := b.now().UTC()
	out := make([]Record, 0, len(b.order))
	for _, id := range b.order {
		rec := *b.records[id]
		rec.Metadata.Created = created
		rec.Metadata.CreatedBy = b.cfg.CreatedBy
		rec.Metadata.SubmittedBy = b.cfg.SubmittedBy
		rec.Metadata.SchemaVersion = SchemaVersion
		out = append(out, rec)
	}
	return out
}
