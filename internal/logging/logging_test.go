package logging

import (
	"testing"

	golog "github.com/ipfs/go-log/v2"
	"github.com/stretchr/testify/require"
)

func TestSetLogLevels(t *testing.T) {
	golog.Logger("logging/test")

	require.NoError(t, SetLogLevels(map[string]golog.LogLevel{
		"logging/test": golog.LevelDebug,
	}))
	require.NoError(t, SetLogLevels(map[string]golog.LogLevel{
		"*": golog.LevelWarn,
	}))
	require.Error(t, SetLogLevels(map[string]golog.LogLevel{
		"logging/missing": golog.LevelDebug,
	}))
}

func TestSetup(t *testing.T) {
	golog.Logger("logging/setup")

	require.NoError(t, Setup(Config{Debug: true}))
	require.NoError(t, Setup(Config{Levels: map[string]golog.LogLevel{"logging/setup": golog.LevelError}}))
	require.Error(t, Setup(Config{Levels: map[string]golog.LogLevel{"logging/unknown": golog.LevelError}}))
}
