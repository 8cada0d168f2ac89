package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	adapter "github.com/dkeye/Bridge/internal/adapters/signal"
	"github.com/dkeye/Bridge/internal/domain"
	"github.com/dkeye/Bridge/internal/rpc"
)

// Demo agent endpoint: joins the hub with the agent capability flag and
// services dom_elements / agent.action calls through the same dispatcher the
// client side uses.
func main() {
	hubURL := flag.String("hub", "ws://localhost:8080/api/ws/bridge", "hub websocket url")
	name := flag.String("name", "agent", "peer username")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sess := adapter.NewClientSession(*hubURL, *name, true)
	if err := sess.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("hub connect failed")
	}
	defer sess.Close()

	disp := rpc.NewDispatcher(sess)

	disp.Register(domain.MethodDOMElements, func(_ context.Context, call domain.Call) (string, error) {
		// The payload is a JSON-stringified string by convention.
		var want string
		if err := rpc.Decode(call.Payload, &want); err != nil {
			return "", err
		}
		log.Info().Str("module", "agent").Str("want", want).Str("caller", call.CallerIdentity).Msg("dom elements requested")
		return rpc.Encode(map[string]any{
			"ok":       true,
			"elements": []string{"btn-accept", "btn-dismiss"},
		})
	})

	disp.Register(domain.MethodAgentAction, func(ctx context.Context, call domain.Call) (string, error) {
		// Bare string payload: the action name.
		log.Info().Str("module", "agent").Str("action", call.Payload).Msg("action received")
		if call.Payload == "say_hello" {
			greeting, err := sess.SendCall(ctx, call.CallerIdentity, domain.MethodGreet, "hi")
			if err != nil {
				return "", err
			}
			log.Info().Str("module", "agent").Str("greeting", greeting).Msg("client greeted back")
		}
		return fmt.Sprintf("ack:%s", call.Payload), nil
	})

	log.Info().Str("module", "agent").Msg("agent ready")
	<-ctx.Done()
}
