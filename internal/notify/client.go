package notify

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/initr/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// connectTimeout bounds the socket.io handshake.
const connectTimeout = 15 * time.Second

// Client is a connected socket.io client implementing Emitter.
type Client struct {
	io *socket.Socket
}

// Dial connects to rawURL. The URL path selects the socket.io path and the
// fragment, if any, the namespace.
func Dial(ctx context.Context, rawURL string) (*Client, error) {
	logger := ctxlog.FromContext(ctx).With("url", rawURL)

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse notify URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("notify URL %q must be absolute", rawURL)
	}

	opts := socket.DefaultOptions()
	if parsed.Path != "" {
		opts.SetPath(parsed.Path)
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host), opts)
	namespace := "/" + parsed.Fragment
	io := manager.Socket(namespace, opts)

	connected := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Notify client connected.", "sid", io.Id())
		connected <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connected <- err
	})
	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &Client{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", connectTimeout)
	}
}

// Emit implements Emitter.
func (c *Client) Emit(event string, payload Payload) error {
	if !c.io.Connected() {
		return fmt.Errorf("notify client is not connected")
	}
	c.io.Emit(event, payload)
	return nil
}

// Close disconnects the client.
func (c *Client) Close() {
	c.io.Disconnect()
}
