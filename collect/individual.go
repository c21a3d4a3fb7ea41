package collect

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/phenotab/phenotab/record"
	"github.com/phenotab/phenotab/semantic"
	"github.com/phenotab/phenotab/tabular"
)

// Individual collects demographic and vital-status facts: date of birth,
// sex, time at last encounter, and the subject's survival status. Each of
// these is single-multiplicity across the subject's whole slice list, so
// two tables recording different values is an error, not an overwrite.
type Individual struct{}

func (Individual) Name() string { return "individual" }

func (Individual) Collect(ctx context.Context, b *record.Builder, frames []*tabular.ContextualizedFrame, subjectID string) error {
	dob, err := singleValue(frames, subjectID, semantic.DateOfBirth)
	if err != nil {
		return err
	}
	sex, err := singleValue(frames, subjectID, semantic.SubjectSex)
	if err != nil {
		return err
	}
	lastEncounter, err := singleTime(frames, subjectID, semantic.LastEncounterVariants)
	if err != nil {
		return err
	}
	if dob != nil || sex != nil || lastEncounter != nil {
		if err := b.UpsertIndividual(subjectID, dob, sex, lastEncounter); err != nil {
			return err
		}
	}
	return collectVitalStatus(ctx, b, frames, subjectID)
}

func collectVitalStatus(ctx context.Context, b *record.Builder, frames []*tabular.ContextualizedFrame, subjectID string) error {
	status, err := singleValue(frames, subjectID, semantic.VitalStatus)
	if err != nil {
		return err
	}
	timeOfDeath, err := singleTime(frames, subjectID, semantic.TimeOfDeathVariants)
	if err != nil {
		return err
	}
	cause, err := singleValue(frames, subjectID, semantic.CauseOfDeath)
	if err != nil {
		return err
	}
	survival, err := singleValue(frames, subjectID, semantic.SurvivalTimeDays)
	if err != nil {
		return err
	}
	if status == nil && timeOfDeath == nil && cause == nil && survival == nil {
		return nil
	}

	vs := record.VitalStatus{Status: record.StatusUnknown, TimeOfDeath: timeOfDeath}
	if status != nil {
		parsed, err := record.ParseVitalState(*status)
		if err != nil {
			return err
		}
		vs.Status = parsed
	}
	if survival != nil {
		days, err := strconv.ParseUint(strings.TrimSpace(*survival), 10, 32)
		if err != nil {
			return fmt.Errorf("subject %q: survival time %q is not a day count", subjectID, *survival)
		}
		vs.SurvivalTimeInDays = uint32(days)
	}
	return b.UpsertVitalStatus(ctx, subjectID, vs, cause)
}
