// Command connector connects to a TCP server and sends each typed line as raw bytes.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"tcpsim/console"
	"tcpsim/handler"
	"tcpsim/logger"
)

func main() {
	config := handler.NewConnectorConfig()
	flag.StringVar(&config.Host, "host", config.Host, "server host")
	flag.IntVar(&config.Port, "port", config.Port, "server port")
	flag.Var(&config.InputMode, "input", "how typed lines are encoded: text or hex")
	debug := flag.Bool("debug", false, "log every socket write")
	flag.Parse()

	logger.Init(os.Stderr, *debug)
	if err := config.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := console.NewConnector(os.Stdout)
	out.SetPrompt(logger.IsTerminal(os.Stdin))

	state, err := handler.NewConnector(out, config, os.Stdin).Run(ctx)
	if state == handler.StateClosedByError {
		log.Debug().Stack().Err(err).Msg("connector failed")
		stop()
		os.Exit(1)
	}
}
