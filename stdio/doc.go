// Package stdio serves one language server connection over a pair of byte
// streams, by default os.Stdin and os.Stdout. Messages are framed with
// Content-Length headers as editors expect.
//
// Characteristics
//
//	Connection model : 1 process <-> 1 client
//	Framing          : Content-Length headers (VS Code object codec)
//	Lifecycle        : initialize, initialized, shutdown, exit
//	Concurrency      : requests run in parallel, notifications in order
//
// Example:
//
//	mux := lspservice.NewMux()
//	lspservice.Handle(mux, hoverInfo, hover)
//	srv := lspservice.NewServer(
//	    lspservice.WithServerInfo(lsp.ServerInfo{Name: "my-server"}),
//	    lspservice.WithMux(mux),
//	)
//	err := stdio.NewHandler(srv).Serve(context.Background())
//	if errors.Is(err, handshake.ErrAbnormalExit) { os.Exit(1) }
//
// Serve returns nil after a clean shutdown and exit, and
// handshake.ErrAbnormalExit when the session ended any other way.
package stdio
