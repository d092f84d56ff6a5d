// Package apierrors defines the error taxonomy tool handlers and the
// orchestrator propagate instead of raising across package boundaries:
// six typed error kinds, each wrapping a closed set of sentinel Kind
// values so callers can use errors.Is(err, apierrors.RateLimit) without
// caring which concrete struct carries it, a remediation-hint table, and
// a per-day rotating error log.
package apierrors

// APIErrorKind distinguishes failure modes talking to the model API.
type APIErrorKind string

const (
	RateLimit APIErrorKind = "rate_limit"
	Timeout   APIErrorKind = "timeout"
	Auth      APIErrorKind = "auth"
	Transport APIErrorKind = "transport"
)

func (k APIErrorKind) Error() string { return string(k) }

// FileErrorKind distinguishes filesystem tool failures.
type FileErrorKind string

const (
	FileNotFound   FileErrorKind = "file_not_found"
	FilePermission FileErrorKind = "file_permission"
	FileRead       FileErrorKind = "file_read"
	FileWrite      FileErrorKind = "file_write"
)

func (k FileErrorKind) Error() string { return string(k) }

// CommandErrorKind distinguishes execute_command failures.
type CommandErrorKind string

const (
	CommandNotFound    CommandErrorKind = "command_not_found"
	CommandTimeout     CommandErrorKind = "command_timeout"
	CommandNonZeroExit CommandErrorKind = "command_nonzero_exit"
)

func (k CommandErrorKind) Error() string { return string(k) }

// ValidationErrorKind distinguishes malformed tool-call failures.
type ValidationErrorKind string

const (
	MissingParameter ValidationErrorKind = "missing_parameter"
	InvalidArgument  ValidationErrorKind = "invalid_argument"
)

func (k ValidationErrorKind) Error() string { return string(k) }

// SecurityErrorKind distinguishes denied-by-policy failures.
type SecurityErrorKind string

const (
	PathDenied    SecurityErrorKind = "path_denied"
	CommandDenied SecurityErrorKind = "command_denied"
)

func (k SecurityErrorKind) Error() string { return string(k) }

// ConfigErrorKind distinguishes orchestrator configuration failures.
type ConfigErrorKind string

const (
	ConfigMissing   ConfigErrorKind = "config_missing"
	ConfigMalformed ConfigErrorKind = "config_malformed"
)

func (k ConfigErrorKind) Error() string { return string(k) }

// Network and Unknown stand alone, with no further subdivision, for the
// two catch-all cases spec §7 names outside the five subdivided groups.
type bareKind string

func (k bareKind) Error() string { return string(k) }

const (
	Network bareKind = "network"
	Unknown bareKind = "unknown"
)
