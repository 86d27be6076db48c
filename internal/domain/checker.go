package domain

// CheckerJob is a data-quality checker bound to one table.
// All rule fields are opaque to this service and forwarded as-is to the
// notebook that runs the checks.
type CheckerJob struct {
	CheckerName string

	DB    string
	Table string

	Checkers            string
	FiltrationCondition string
	DuplicationColumns  string
	NullColumns         string
	Actuality           string
}
