package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

type MainLogHook struct{}

func (h *MainLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "Main: " + entry.Message
	return nil
}

func (h *MainLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func NewLogger(lvl string, hook logrus.Hook) *logrus.Entry {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	level, err := logrus.ParseLevel(lvl)
	if err != nil {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	if hook != nil {
		log.AddHook(hook)
	}

	return logrus.NewEntry(log)
}
