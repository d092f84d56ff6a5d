package apierrors

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Recorder appends every surfaced error, structured, to a log file that
// rolls over at midnight: one file per calendar day, named by date, so
// an operator can find "what went wrong on the 14th" without grepping a
// single ever-growing file.
type Recorder struct {
	mu      sync.Mutex
	dir     string
	day     string
	rotator *lumberjack.Logger
	logger  zerolog.Logger
	now     func() time.Time
}

// NewRecorder returns a Recorder writing under dir. Callers normally
// construct one per process and share it across tool handlers.
func NewRecorder(dir string) *Recorder {
	return &Recorder{dir: dir, now: time.Now}
}

// Record appends err to the current day's log file, rotating to a new
// file if the calendar day has advanced since the last call. tool names
// the tool or component the error surfaced from, for the log entry's
// context.
func (r *Recorder) Record(tool string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	day := now.Format("2006-01-02")
	if day != r.day {
		r.day = day
		r.rotator = &lumberjack.Logger{
			Filename:   filepath.Join(r.dir, "errors-"+day+".log"),
			MaxSize:    20,
			MaxBackups: 14,
			Compress:   true,
		}
		r.logger = zerolog.New(r.rotator).With().Timestamp().Logger()
	}

	k, known := kindOf(err)
	event := r.logger.Error().Str("tool", tool)
	if known {
		event = event.Str("kind", k.Error()).Str("remediation", Remediation(k))
	}
	event.Msg(err.Error())
}

// Close flushes and closes the active rotated file, if one is open.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rotator == nil {
		return nil
	}
	return r.rotator.Close()
}
