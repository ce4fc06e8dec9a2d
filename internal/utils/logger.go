package utils

import "github.com/sirupsen/logrus"

const (
	SEVERITY  = "severity"
	MESSAGE   = "message"
	TIMESTAMP = "timestamp"
	COMPONENT = "component"
)

// NewLogger configures the process-wide JSON formatter and returns an entry tagged with the
// service name.
func NewLogger(serviceName string) *logrus.Entry {
	logrus.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  TIMESTAMP,
			logrus.FieldKeyLevel: SEVERITY,
			logrus.FieldKeyMsg:   MESSAGE,
		},
	})
	return logrus.WithField(COMPONENT, serviceName)
}
