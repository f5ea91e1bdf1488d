package shop

import "github.com/sirupsen/logrus"

type ShopLogHook struct{}

func (h *ShopLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "Shop: " + entry.Message
	return nil
}

func (h *ShopLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
