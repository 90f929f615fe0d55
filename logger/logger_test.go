package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	defer func() {
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}()

	var buf bytes.Buffer
	Init(&buf, false)
	log.Debug().Msg("hidden")
	log.Info().Int("bytes", 4).Msg("visible")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "visible")
	require.Contains(t, buf.String(), "bytes=4")

	buf.Reset()
	Init(&buf, true)
	log.Debug().Str("hex", "70 69 6E 67").Msg("socket read")
	require.Contains(t, buf.String(), "socket read")
	require.Contains(t, buf.String(), "70 69 6E 67")
}

func TestIsTerminal(t *testing.T) {
	require.False(t, IsTerminal(&bytes.Buffer{}))
	require.False(t, IsTerminal(nil))

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()
	require.False(t, IsTerminal(w))
}
