package pipeline

import (
	"github.com/sirupsen/logrus"
)

// LogReporter reports observer failures as structured warnings.
type LogReporter struct {
	log logrus.FieldLogger
}

// NewLogReporter returns a reporter writing to log. A nil log uses the
// logrus standard logger.
func NewLogReporter(log logrus.FieldLogger) *LogReporter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogReporter{log: log}
}

func (r *LogReporter) Report(owner, operation string, err error) {
	r.log.WithFields(logrus.Fields{
		"owner":     owner,
		"operation": operation,
	}).WithError(err).Warn("rename listener failed; snapshot restored")
}
