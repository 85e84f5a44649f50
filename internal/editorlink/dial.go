package editorlink

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/nodegraph/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultDialTimeout bounds how long Dial waits for the connect event.
const DefaultDialTimeout = 15 * time.Second

// Options describes the editor endpoint.
type Options struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	// Timeout defaults to DefaultDialTimeout.
	Timeout time.Duration
}

// Dial connects a socket.io client over the websocket transport and waits
// until the server acknowledges it.
func Dial(ctx context.Context, o Options) (*socket.Socket, error) {
	logger := ctxlog.FromContext(ctx).With("url", o.URL)
	logger.Debug("Connecting to editor...")

	parsedURL, err := url.Parse(o.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse editor URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("editor URL %q must be absolute", o.URL)
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if o.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(o.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to editor.", "sid", io.Id())
		notify(connectChan, nil)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		notify(connectChan, connectError(errs))
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("editor connection failed: %w", err)
		}
		return io, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("waiting for editor connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for editor connection", timeout)
	}
}

// notify reports the first connection outcome. Later outcomes, such as a
// connect after an automatic reconnect, are dropped so the socket's event
// loop never blocks on a reader that is gone.
func notify(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}

func connectError(args []any) error {
	if len(args) == 0 {
		return errors.New("connect_error without details")
	}
	if err, ok := args[0].(error); ok && err != nil {
		return err
	}
	return fmt.Errorf("%v", args[0])
}
