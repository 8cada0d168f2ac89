package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/Bridge/internal/core"
	"github.com/dkeye/Bridge/internal/domain"
	"github.com/dkeye/Bridge/internal/rpc"
	"github.com/rs/zerolog/log"
)

// These exact strings are part of the wire contract with the agent.
var (
	errMissingJSID     = errors.New("Missing jsId")
	errElementNotFound = errors.New("Element not found")
)

type clickPayload struct {
	JSID string `json:"jsId"`
}

// ClickButton services client.click_button: decode the {jsId} envelope,
// validate, activate the element, reply {"ok":true}.
func ClickButton(surface Surface) core.Handler {
	return func(_ context.Context, call domain.Call) (string, error) {
		var p clickPayload
		if err := rpc.Decode(call.Payload, &p); err != nil {
			return "", err
		}
		if p.JSID == "" {
			return "", errMissingJSID
		}
		if err := surface.Click(p.JSID); err != nil {
			if errors.Is(err, ErrElementNotFound) {
				return "", errElementNotFound
			}
			return "", err
		}
		log.Info().Str("module", "bridge").Str("js_id", p.JSID).Str("caller", call.CallerIdentity).Msg("clicked element")
		return rpc.Success(), nil
	}
}

// Greet services client.greet: bare string in, bare greeting out.
// No failure path.
func Greet() core.Handler {
	return func(_ context.Context, call domain.Call) (string, error) {
		return fmt.Sprintf("Hello, %s!", call.CallerIdentity), nil
	}
}
