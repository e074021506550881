package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geographia.log")

	log, closer, err := Setup(Options{File: path, Level: "debug"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("slot", "popup").Info("navigated")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "navigated")
	assert.Contains(t, string(data), "slot=popup")
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	_, _, err := Setup(Options{Level: "chatty"})
	require.Error(t, err)
}
