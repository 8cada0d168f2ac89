package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Bridge/internal/adapters/rtc"
	adapter "github.com/dkeye/Bridge/internal/adapters/signal"
	"github.com/dkeye/Bridge/internal/bridge"
	"github.com/dkeye/Bridge/internal/config"
	"github.com/dkeye/Bridge/internal/core"
	"github.com/dkeye/Bridge/internal/rpc"
)

// newCaller takes the retry budget from the rpc config section when a config
// file is present, and ships defaults otherwise so the binary runs standalone.
func newCaller() *rpc.Caller {
	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("no config file, using default retry budget")
		return rpc.NewCaller()
	}
	return rpc.CallerFromConfig(cfg.RPC)
}

// Demo client endpoint: arms the bridge, then runs one dom_elements and one
// agent.action round trip.
func main() {
	hubURL := flag.String("hub", "ws://localhost:8080/api/ws/bridge", "hub websocket url")
	name := flag.String("name", "client", "peer username")
	direct := flag.Bool("direct", false, "negotiate a direct data channel to the agent")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess := adapter.NewClientSession(*hubURL, *name, false)
	if *direct {
		sess.SetDirectFactory(func(peer string) (core.DataConnection, error) {
			return rtc.NewDataChannelConn(rtc.DefaultWebRTCConfig(), peer)
		})
	}

	surface := bridge.NewElementRegistry()
	surface.Bind("btn-accept", func() {
		log.Info().Str("module", "client").Msg("accept button activated")
	})

	b := bridge.New(sess, newCaller(), surface)
	b.Watch()

	if err := sess.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("hub connect failed")
	}
	defer sess.Close()

	if *direct {
		if agent, ok := rpc.FindAgent(sess.Peers()); ok {
			if err := sess.EnableDirect(ctx, agent.Identity); err != nil {
				log.Warn().Err(err).Msg("direct channel negotiation failed, staying on hub path")
			}
		}
	}

	elements, err := b.RequestDOMElements(ctx, "interactive")
	switch {
	case errors.Is(err, rpc.ErrAgentNotFound):
		// Recoverable: the agent just has not joined yet.
		log.Warn().Msg("no agent available, try again later")
	case err != nil:
		log.Error().Err(err).Msg("dom_elements failed")
	default:
		log.Info().Str("elements", elements).Msg("agent elements")
	}

	reply, err := b.SendAction(ctx, "say_hello")
	if err != nil {
		log.Error().Err(err).Msg("agent.action failed")
		return
	}
	log.Info().Str("reply", reply).Msg("action acknowledged")
}
