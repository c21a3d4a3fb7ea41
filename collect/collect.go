// Package collect walks contextualized frames and turns their cells into
// builder calls. A Broker partitions each table's rows by subject, groups the
// partitions across tables, and runs an ordered list of stateless collectors
// for every subject.
package collect

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phenotab/phenotab/record"
	"github.com/phenotab/phenotab/tabular"
)

// Collector extracts one category of facts for a single subject from that
// subject's row partitions and pushes them into the builder.
type Collector interface {
	// Name identifies the collector in logs and error messages.
	Name() string
	// Collect runs over the subject's partitions, one per source table.
	Collect(ctx context.Context, b *record.Builder, frames []*tabular.ContextualizedFrame, subjectID string) error
}

// DefaultCollectors returns the standard collector chain. Order matters:
// demographic facts land first so that later collectors can consult the
// subject's recorded sex.
func DefaultCollectors(logger *slog.Logger) []Collector {
	return []Collector{
		Individual{},
		HpoInCells{},
		HpoInHeader{Logger: logger},
		Interpretation{},
		Disease{},
		QuantitativeMeasurement{},
		QualitativeMeasurement{},
		MedicalProcedure{},
	}
}

// Broker drives the collection phase of a run.
type Broker struct {
	collectors []Collector
	logger     *slog.Logger
}

// NewBroker creates a broker. With no collectors given, the default chain is
// used.
func NewBroker(logger *slog.Logger, collectors ...Collector) *Broker {
	if logger == nil {
		logger = slog.Default()
	}
	if len(collectors) == 0 {
		collectors = DefaultCollectors(logger)
	}
	return &Broker{collectors: collectors, logger: logger}
}

// Process partitions every frame by subject, groups the partitions across
// tables, runs the collector chain per subject, and builds the records. The
// first collector error aborts the run.
func (br *Broker) Process(ctx context.Context, b *record.Builder, cdfs []*tabular.ContextualizedFrame) ([]record.Record, error) {
	groups := make(map[string][]*tabular.ContextualizedFrame)
	var order []string

	for _, cdf := range cdfs {
		parts, err := partitionBySubject(cdf)
		if err != nil {
			return nil, err
		}
		for _, p := range parts {
			if _, seen := groups[p.subject]; !seen {
				order = append(order, p.subject)
			}
			groups[p.subject] = append(groups[p.subject], p.frame)
		}
	}

	for _, subject := range order {
		frames := groups[subject]
		for _, c := range br.collectors {
			if err := c.Collect(ctx, b, frames, subject); err != nil {
				return nil, fmt.Errorf("collector %q: subject %q: %w", c.Name(), subject, err)
			}
		}
		br.logger.Debug("subject collected",
			slog.String("subject", subject),
			slog.Int("tables", len(frames)))
	}

	return b.Build(), nil
}

type partition struct {
	subject string
	frame   *tabular.ContextualizedFrame
}

// partitionBySubject splits a frame into per-subject frames in
// first-appearance order. Columns that are all-null within a partition are
// dropped along with descriptors left matching nothing, so collectors only
// ever see contexts the subject actually has data for.
func partitionBySubject(cdf *tabular.ContextualizedFrame) ([]partition, error) {
	subjectCol := cdf.SubjectColumn()
	rows := make(map[string][]int)
	var order []string
	for i := 0; i < subjectCol.Len(); i++ {
		id := subjectCol.StringAt(i)
		if _, seen := rows[*id]; !seen {
			order = append(order, *id)
		}
		rows[*id] = append(rows[*id], i)
	}

	out := make([]partition, 0, len(order))
	for _, subject := range order {
		sub, err := tabular.NewContextualizedFrame(cdf.TableContext().Clone(), cdf.Frame().Take(rows[subject]))
		if err != nil {
			return nil, fmt.Errorf("table %q: partition for subject %q: %w", cdf.Name(), subject, err)
		}
		pruned, err := sub.Mutate().DropNullColumns().Build()
		if err != nil {
			return nil, fmt.Errorf("table %q: partition for subject %q: %w", cdf.Name(), subject, err)
		}
		out = append(out, partition{subject: subject, frame: pruned})
	}
	return out, nil
}

// AmbiguousPhenotypeError reports a header-encoded phenotype column whose
// rows disagree on observation status or onset for one subject.
type AmbiguousPhenotypeError struct {
	Table   string
	Subject string
	Column  string
}

func (e *AmbiguousPhenotypeError) Error() string {
	return fmt.Sprintf("table %q: subject %q: column %q carries ambiguous phenotype data", e.Table, e.Subject, e.Column)
}
