package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vango-dev/whistle/internal/config"
	"github.com/vango-dev/whistle/pkg/client"
	"github.com/vango-dev/whistle/pkg/dom/memdom"
	"github.com/vango-dev/whistle/pkg/transport"
)

func runCmd(load func() (*config.Config, error)) *cobra.Command {
	var (
		location  string
		socketURL string
		debugAddr string
	)

	cmd := &cobra.Command{
		Use:   "run <page.html>",
		Short: "Mount the programs of a page and keep them in sync",
		Long: `Parse an HTML page, mount every element carrying data-whistle-program
and apply the server's patches until interrupted.

Commands are read from stdin:
  fire <path> <event> [value]   dispatch an event at a path below <body>
  back                          go back one history entry
  tree                          print the page
  programs                      list the mounted programs
  quit                          leave every program and exit

Examples:
  whistle run page.html
  whistle run page.html --socket ws://localhost:4000/ws
  whistle run page.html --debug-addr 127.0.0.1:9090`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if socketURL != "" {
				cfg.Socket.URL = socketURL
			}
			if debugAddr != "" {
				cfg.Debug.Addr = debugAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := cfg.NewLogger(cmd.ErrOrStderr())
			return runPage(ctx, cfg, args[0], location, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().StringVar(&location, "location", "/", "URI the page is located at")
	cmd.Flags().StringVar(&socketURL, "socket", "", "Default socket URL (overrides socket.url)")
	cmd.Flags().StringVar(&debugAddr, "debug-addr", "", "Debug server address (overrides debug.addr)")

	return cmd
}

// socketFactory builds WebSocket-backed sockets that share one loop,
// logger and metrics.
func socketFactory(cfg *config.Config, doc *memdom.Document, loop client.Scheduler, logger *slog.Logger, metrics *client.Metrics) client.SocketFactory {
	sc := cfg.ClientConfig()
	topts := transport.OptionsFromConfig(sc)
	topts.Logger = logger
	return func(url string) *client.Socket {
		return client.NewSocket(url, transport.New(topts), doc, client.SocketOptions{
			Config:  sc.Clone(),
			Loop:    loop,
			Logger:  logger,
			Metrics: metrics,
		})
	}
}

func runPage(ctx context.Context, cfg *config.Config, pagePath, location string, in io.Reader, out io.Writer, logger *slog.Logger) error {
	doc, err := loadPage(pagePath, location)
	if err != nil {
		return err
	}
	points, err := scanMountPoints(doc, cfg.Socket.URL)
	if err != nil {
		return err
	}
	if err := requireSockets(points); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	metrics := client.NewMetrics(client.WithRegistry(registry))

	loop := client.NewLoop(client.DefaultLoopBuffer)
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go loop.Run(loopCtx)
	run := func(f func()) error { return loop.Do(loopCtx, f) }

	sess := newSession(doc, socketFactory(cfg, doc, loop, logger, metrics), logger)
	var mountErr error
	if err := run(func() { mountErr = sess.mount(points) }); err != nil {
		return err
	}
	if mountErr != nil {
		return mountErr
	}
	success(out, "Mounted %d programs", len(points))

	if cfg.Debug.Addr != "" {
		srv := &http.Server{
			Addr:              cfg.Debug.Addr,
			Handler:           debugRouter(sess, registry, run),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("debug server failed", "addr", cfg.Debug.Addr, "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		success(out, "Debug server on http://%s", cfg.Debug.Addr)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	err = commandLoop(ctx, lines, sess, run, out)

	var closeErr error
	if runErr := run(func() { closeErr = sess.close() }); runErr != nil {
		return runErr
	}
	fmt.Fprintln(out, "  Left all programs")
	if err != nil {
		return err
	}
	return closeErr
}

// commandLoop executes commands until quit or ctx ends. A closed input
// leaves the session running until ctx ends.
func commandLoop(ctx context.Context, lines <-chan string, sess *session, run runner, out io.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			var (
				quit   bool
				cmdErr error
			)
			if err := run(func() { quit, cmdErr = sess.exec(line, out) }); err != nil {
				return err
			}
			if cmdErr != nil {
				warn(out, "%v", cmdErr)
			}
			if quit {
				return nil
			}
		}
	}
}
