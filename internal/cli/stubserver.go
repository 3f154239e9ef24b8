package cli

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/adminctl/internal/errors"
	"github.com/rileyhilliard/adminctl/internal/logger"
	"github.com/rileyhilliard/adminctl/internal/stubapi"
)

// stubBasePath matches the default api.base_url.
const stubBasePath = "/api/admin"

const stubShutdownTimeout = 10 * time.Second

// StubOptions configures the stub API server.
type StubOptions struct {
	Addr      string
	Seed      uint64
	Users     int
	Orgs      int
	FailEvery int
	Latency   time.Duration
	Token     string
}

var stubOpts = StubOptions{
	Addr:  ":8787",
	Seed:  1,
	Users: 250,
	Orgs:  40,
}

var stubServerCmd = &cobra.Command{
	Use:   "stub-server",
	Short: "Serve a seeded fake admin API",
	Long: `Serve an in-memory admin API with deterministic seeded data, for
demos and for trying the dashboard's retry behavior.

Mutations change the in-memory data until the server stops.

Examples:
  adminctl stub-server
  adminctl stub-server --addr 127.0.0.1:9000 --users 1000
  adminctl stub-server --fail-every 3 --latency 300ms`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSkipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ln, err := net.Listen("tcp", stubOpts.Addr)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Can't listen on "+stubOpts.Addr,
				"Pick a free port with --addr.")
		}
		return ServeStub(cmd.Context(), ln, stubOpts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(stubServerCmd)
	f := stubServerCmd.Flags()
	f.StringVar(&stubOpts.Addr, "addr", stubOpts.Addr, "listen address")
	f.Uint64Var(&stubOpts.Seed, "seed", stubOpts.Seed, "random seed for generated data")
	f.IntVar(&stubOpts.Users, "users", stubOpts.Users, "number of users to generate")
	f.IntVar(&stubOpts.Orgs, "orgs", stubOpts.Orgs, "number of organizations to generate")
	f.IntVar(&stubOpts.FailEvery, "fail-every", 0, "fail every Nth metrics request with 503 (0 disables)")
	f.DurationVar(&stubOpts.Latency, "latency", 0, "delay added to every response")
	f.StringVar(&stubOpts.Token, "token", "", "require this bearer token")
}

// StubHandler mounts the stub API under stubBasePath.
func StubHandler(opts StubOptions) http.Handler {
	zl := logger.Zerolog("stub-api")
	store := stubapi.NewStore(opts.Seed, opts.Users, opts.Orgs, nil)
	srv := stubapi.New(store, stubapi.Options{
		Token:     opts.Token,
		FailEvery: opts.FailEvery,
		Latency:   opts.Latency,
		Logger:    &zl,
	})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Mount(stubBasePath, srv.Router())
	return r
}

// ServeStub serves the stub API on ln until ctx is done, then shuts down
// gracefully.
func ServeStub(ctx context.Context, ln net.Listener, opts StubOptions, out io.Writer) error {
	log := logger.Zerolog("stub-server")
	server := &http.Server{
		Handler:           StubHandler(opts),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	fmt.Fprintf(out, "Stub API listening on http://%s%s\n", ln.Addr(), stubBasePath)
	log.Info().
		Str("addr", ln.Addr().String()).
		Uint64("seed", opts.Seed).
		Int("users", opts.Users).
		Int("orgs", opts.Orgs).
		Int("fail_every", opts.FailEvery).
		Msg("stub api started")

	select {
	case err := <-errCh:
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrAPI, "Stub API server failed", "")
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), stubShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.WrapWithCode(err, errors.ErrAPI, "Stub API didn't shut down cleanly", "")
	}
	log.Info().Msg("stub api stopped")
	return nil
}
