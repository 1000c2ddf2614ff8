package logx

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestDefaultLevelIsWarn(t *testing.T) {
	require.Equal(t, logrus.WarnLevel, Log.GetLevel())
}

func TestConfigureSetsRecognizedLevel(t *testing.T) {
	defer Configure("warn")

	Configure("debug")
	require.Equal(t, logrus.DebugLevel, Log.GetLevel())
}

func TestConfigureIgnoresUnrecognizedLevel(t *testing.T) {
	Configure("warn")
	Configure("not-a-real-level")

	require.Equal(t, logrus.WarnLevel, Log.GetLevel())
}
