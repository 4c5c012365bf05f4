package mediator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlebay/warroom-go/internal/application/mediator"
)

type pingCommand struct{ Value string }

type pongResponse struct{ Value string }

func pingHandler() mediator.Handler {
	return mediator.HandlerFunc(func(_ context.Context, request mediator.Request) (mediator.Response, error) {
		cmd := request.(pingCommand)
		return pongResponse{Value: cmd.Value + " pong"}, nil
	})
}

func TestMediator(t *testing.T) {
	ctx := context.Background()

	t.Run("routes a request to its handler", func(t *testing.T) {
		m := mediator.New()
		require.NoError(t, mediator.RegisterHandler[pingCommand](m, pingHandler()))

		response, err := m.Send(ctx, pingCommand{Value: "ping"})
		require.NoError(t, err)
		assert.Equal(t, pongResponse{Value: "ping pong"}, response)
	})

	t.Run("rejects duplicate registration", func(t *testing.T) {
		m := mediator.New()
		require.NoError(t, mediator.RegisterHandler[pingCommand](m, pingHandler()))
		err := mediator.RegisterHandler[pingCommand](m, pingHandler())
		assert.ErrorContains(t, err, "already registered")
	})

	t.Run("rejects an unregistered request", func(t *testing.T) {
		m := mediator.New()
		_, err := m.Send(ctx, pingCommand{})
		assert.ErrorContains(t, err, "no handler registered")
	})

	t.Run("middlewares wrap in registration order", func(t *testing.T) {
		m := mediator.New()
		require.NoError(t, mediator.RegisterHandler[pingCommand](m, pingHandler()))

		var order []string
		for _, name := range []string{"outer", "inner"} {
			label := name
			m.Use(func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
				order = append(order, label+" before")
				response, err := next(ctx, request)
				order = append(order, label+" after")
				return response, err
			})
		}

		_, err := m.Send(ctx, pingCommand{Value: "ping"})
		require.NoError(t, err)
		assert.Equal(t, []string{"outer before", "inner before", "inner after", "outer after"}, order)
	})
}
