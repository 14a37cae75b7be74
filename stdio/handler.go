package stdio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ggoodman/lsp-server-go/handshake"
	"github.com/ggoodman/lsp-server-go/internal/engine"
	"github.com/ggoodman/lsp-server-go/lspservice"
	"github.com/sourcegraph/jsonrpc2"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// errExited ends the dispatch loop once the session reached Exited.
var errExited = errors.New("session exited")

// Handler is a single-connection transport that reads framed JSON-RPC
// messages from an io.Reader and writes to an io.Writer.
//
// The handler is transport-only; it delegates protocol semantics to the
// engine and method semantics to the provided lspservice.Server.
type Handler struct {
	srv        lspservice.Server
	r          io.Reader
	w          io.Writer
	l          *slog.Logger
	hs         *handshake.Machine
	engineOpts []engine.EngineOption
}

// NewHandler constructs a stdio Handler with defaults and applies options.
func NewHandler(srv lspservice.Server, opts ...Option) *Handler {
	h := &Handler{
		srv: srv,
		r:   os.Stdin,
		w:   os.Stdout,
		l:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.hs == nil {
		h.hs = handshake.NewMachine()
	}
	return h
}

// Handshake returns the lifecycle machine of the connection.
func (h *Handler) Handshake() *handshake.Machine { return h.hs }

// Serve runs the connection until the session exits, the input ends or ctx
// is cancelled. It is safe to call at most once per Handler.
//
// Reaching end of input without an exit notification, or cancelling ctx,
// forces the session to exit abnormally.
func (h *Handler) Serve(ctx context.Context) error {
	stream := jsonrpc2.NewBufferedStream(&readWriteCloser{r: h.r, w: h.w}, jsonrpc2.VSCodeObjectCodec{})

	writer := engine.MessageWriterFunc(func(ctx context.Context, msg json.RawMessage) error {
		return stream.WriteObject(msg)
	})
	eng := engine.New(h.srv, writer, append(h.engineOpts, engine.WithHandshake(h.hs))...)
	log := h.l.With(slog.String("conn", eng.ConnID()))

	// The read loop blocks on input and cannot be interrupted, so it runs
	// outside the group and feeds it through channels.
	msgs := make(chan json.RawMessage)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			var raw json.RawMessage
			if err := stream.ReadObject(&raw); err != nil {
				readErr <- err
				return
			}
			select {
			case msgs <- raw:
			case <-stop:
				return
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-eng.Done():
				return errExited
			case err := <-readErr:
				if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
					log.Info("stdio.read.eof")
					eng.Handshake().ForceExit("input closed")
					return errExited
				}
				log.Error("stdio.read.fail", slog.String("err", err.Error()))
				eng.Handshake().ForceExit("read error")
				return fmt.Errorf("read: %w", err)
			case raw := <-msgs:
				if err := eng.HandleMessage(gctx, raw); err != nil {
					log.Error("stdio.write.fail", slog.String("err", err.Error()))
					eng.Handshake().ForceExit("write error")
					return fmt.Errorf("write: %w", err)
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			eng.Handshake().ForceExit("context cancelled")
		}
		eng.Close(context.Cause(gctx))
		return nil
	})

	err := g.Wait()
	eng.Wait()

	if cerr := stream.Close(); cerr != nil {
		log.Debug("stdio.close.fail", slog.String("err", cerr.Error()))
	}

	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, errExited):
		report, _ := eng.Handshake().Exit()
		log.Info("stdio.serve.done", slog.Bool("abnormal", report.Abnormal), slog.String("reason", report.Reason))
		return report.Err()
	default:
		return err
	}
}

// readWriteCloser joins the input and output streams into the single
// connection jsonrpc2 frames messages on. Close closes whichever side
// supports it.
type readWriteCloser struct {
	r io.Reader
	w io.Writer
}

func (rw *readWriteCloser) Read(b []byte) (int, error) { return rw.r.Read(b) }

func (rw *readWriteCloser) Write(b []byte) (int, error) { return rw.w.Write(b) }

func (rw *readWriteCloser) Close() error {
	var err error
	if c, ok := rw.r.(io.Closer); ok {
		err = multierr.Append(err, c.Close())
	}
	if c, ok := rw.w.(io.Closer); ok {
		err = multierr.Append(err, c.Close())
	}
	return err
}
