package telemetry

import (
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logger     *logrus.Logger
	loggerOnce sync.Once
)

// Config holds logger configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	LogLevel       string
}

// InitLogger initializes the process-wide logger with the given configuration
func InitLogger(cfg Config) {
	loggerOnce.Do(func() {
		logger = logrus.New()

		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			level = logrus.InfoLevel
		}
		logger.SetLevel(level)

		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "@timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})

		logger.AddHook(&serviceFieldsHook{fields: logrus.Fields{
			"service.name":    cfg.ServiceName,
			"service.version": cfg.ServiceVersion,
			"environment":     cfg.Environment,
		}})
	})
}

// serviceFieldsHook stamps every entry with the service identity fields.
type serviceFieldsHook struct {
	fields logrus.Fields
}

func (h *serviceFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *serviceFieldsHook) Fire(entry *logrus.Entry) error {
	for k, v := range h.fields {
		if _, present := entry.Data[k]; !present {
			entry.Data[k] = v
		}
	}
	return nil
}

// Logger returns the initialized logger, falling back to a plain one so
// library code never has to nil-check.
func Logger() *logrus.Logger {
	if logger == nil {
		return logrus.StandardLogger()
	}
	return logger
}

// WithComponent returns an entry tagged with the given component name
func WithComponent(component string) *logrus.Entry {
	return Logger().WithField("component", component)
}
