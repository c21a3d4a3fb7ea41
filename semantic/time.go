package semantic

// TimeElementType distinguishes the two temporal encodings a column can
// carry: an ISO-8601 duration since birth, or a calendar date.
type TimeElementType int

const (
	// TimeAge is an ISO-8601 duration such as "P12Y5M28D".
	TimeAge TimeElementType = iota
	// TimeDate is a calendar date or timestamp.
	TimeDate
)

func (t TimeElementType) String() string {
	switch t {
	case TimeAge:
		return "age"
	case TimeDate:
		return "date"
	default:
		return "unknown"
	}
}

// Temporal variant lists. Each list holds every context variant that can
// express the concept, in lookup priority order: age columns are preferred
// over date columns, always. Callers iterate a list and take the first
// variant that matches a column.
var (
	LastEncounterVariants   = []Context{LastEncounterAge, LastEncounterDate}
	TimeOfDeathVariants     = []Context{TimeOfDeathAge, TimeOfDeathDate}
	OnsetVariants           = []Context{OnsetAge, OnsetDate}
	TimeOfProcedureVariants = []Context{TimeOfProcedureAge, TimeOfProcedureDate}
)

// TimeTypeOf returns the temporal encoding of a time-bearing context, or
// false for contexts that do not carry a time element.
func TimeTypeOf(c Context) (TimeElementType, bool) {
	switch c.Kind {
	case KindLastEncounterAge, KindTimeOfDeathAge, KindOnsetAge, KindTimeOfProcedureAge:
		return TimeAge, true
	case KindLastEncounterDate, KindTimeOfDeathDate, KindOnsetDate, KindTimeOfProcedureDate:
		return TimeDate, true
	default:
		return 0, false
	}
}
