package mrt3sim

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// testTime builds a timestamp on the default simulation day.
func testTime(t *testing.T, hms string) time.Time {
	tt, err := time.Parse("2006-01-02 15:04:05", "2023-04-12 "+hms)
	require.NoError(t, err)
	return tt.UTC()
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}
