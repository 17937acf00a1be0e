package types

// Status is the lifecycle status of a persisted record. Soft deletion is a
// status flip; deleted records are excluded from queries by default.
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
	StatusDeleted   Status = "deleted"
)

func (s Status) String() string {
	return string(s)
}

// LogLevel controls the logger verbosity
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// RunMode is the deployment mode of the process
type RunMode string

const (
	// ModeLocal runs the API server with local defaults
	ModeLocal RunMode = "local"
	// ModeAPI runs the API server
	ModeAPI RunMode = "api"
	// ModeAWSLambdaAPI serves the API through the Lambda gin adapter
	ModeAWSLambdaAPI RunMode = "aws_lambda_api"
)

func (m RunMode) Validate() error {
	switch m {
	case ModeLocal, ModeAPI, ModeAWSLambdaAPI, "":
		return nil
	}
	return NewInvalidEnumError("deployment mode", string(m))
}
