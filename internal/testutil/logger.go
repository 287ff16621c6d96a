package testutil

import (
	"github.com/sirupsen/logrus"

	"github.com/MedFlow-Health/operations-service/internal/logger"
)

// DiscardLogger returns a logger whose output is dropped.
func DiscardLogger() logrus.FieldLogger {
	return logger.Discard().Logger
}
