// Command listener waits for one TCP client, forwards typed lines to it and
// prints everything it sends as text and hex.
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
	config := handler.NewListenerConfig()
	flag.StringVar(&config.Host, "host", config.Host, "IPv4 address to bind")
	flag.IntVar(&config.Port, "port", config.Port, "TCP port to listen on (0 picks a free port)")
	flag.IntVar(&config.Backlog, "backlog", config.Backlog, "listen backlog")
	flag.IntVar(&config.BufferSize, "buffer-size", config.BufferSize, "maximum bytes per socket read")
	flag.BoolVar(&config.SendOnly, "send-only", config.SendOnly, "only send typed lines, never read the socket")
	flag.Var(&config.InputMode, "input", "how typed lines are encoded: text or hex")
	debug := flag.Bool("debug", false, "log every socket read and write")
	flag.Parse()

	logger.Init(os.Stderr, *debug)
	if err := config.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := console.NewListener(os.Stdout)
	out.SetPrompt(logger.IsTerminal(os.Stdin))

	state, err := handler.NewListener(out, config, os.Stdin).Run(ctx)
	if state == handler.StateClosedByError {
		log.Debug().Stack().Err(err).Msg("listener failed")
		stop()
		os.Exit(1)
	}
}
