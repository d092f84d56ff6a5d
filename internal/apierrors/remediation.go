package apierrors

// remediationHints maps each sentinel Kind's Error() text to the
// one-line hint spec §7 requires alongside every surfaced error.
var remediationHints = map[string]string{
	string(RateLimit): "wait and retry, or upgrade your plan for a higher rate limit",
	string(Timeout):   "the request took too long; retry, or check your network connection",
	string(Auth):       "check your API key or re-run the login flow",
	string(Transport): "check your network connection and retry",

	string(FileNotFound):   "verify the path is correct and exists relative to the working directory",
	string(FilePermission): "check the file's permissions, or run with access to that path",
	string(FileRead):       "the file may be locked or unreadable; retry or check its permissions",
	string(FileWrite):      "check that the destination directory exists and is writable",

	string(CommandNotFound):    "verify the command is installed and on PATH",
	string(CommandTimeout):     "the command exceeded its time budget; simplify it or raise the timeout",
	string(CommandNonZeroExit): "inspect the command's output for the underlying failure",

	string(MissingParameter): "supply the missing parameter and retry the tool call",
	string(InvalidArgument):  "correct the parameter's value and retry the tool call",

	string(PathDenied):    "the path falls outside the allowed workspace; use an in-workspace path",
	string(CommandDenied): "the command matches a denied pattern; use an approved alternative",

	string(ConfigMissing):   "set the missing configuration value before starting",
	string(ConfigMalformed): "fix the configuration file's syntax or values",

	string(Network): "check your network connection and retry",
	string(Unknown):  "retry; if the problem persists, check the error log for details",
}

// Kind is implemented by every sentinel kind type (APIErrorKind,
// FileErrorKind, and so on), all of which are defined as Error()
// string methods over a named string type.
type Kind interface {
	error
}

// Remediation returns the fixed one-line hint for a kind, or a generic
// fallback if the kind isn't in the table (should not happen for any
// kind defined in this package).
func Remediation(k Kind) string {
	if hint, ok := remediationHints[k.Error()]; ok {
		return hint
	}
	return "retry; if the problem persists, check the error log for details"
}

// kindOf extracts the sentinel Kind carried by one of this package's
// error structs, for Recorder.Record and RemediationFor to use without a type switch
// at every call site.
func kindOf(err error) (Kind, bool) {
	switch e := err.(type) {
	case *APIError:
		return e.Kind, true
	case *FileError:
		return e.Kind, true
	case *CommandError:
		return e.Kind, true
	case *ValidationError:
		return e.Kind, true
	case *SecurityError:
		return e.Kind, true
	case *ConfigError:
		return e.Kind, true
	case *BareError:
		return e.Kind, true
	default:
		return nil, false
	}
}

// RemediationFor returns the remediation hint for any error produced by
// this package, or the generic fallback for an error of unknown shape.
func RemediationFor(err error) string {
	if k, ok := kindOf(err); ok {
		return Remediation(k)
	}
	return "retry; if the problem persists, check the error log for details"
}
