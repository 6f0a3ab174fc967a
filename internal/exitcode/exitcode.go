package exitcode

const (
	Success         = 0
	UsageError      = 1
	ValidationError = 2
	DBConnError     = 3
	FetchError      = 4
	EvaluationError = 5
	PersistError    = 6
	SubmitError     = 7
)
