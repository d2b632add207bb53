package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/chirp/internal/api"
	"github.com/harrylevesque/chirp/internal/app"
	"github.com/harrylevesque/chirp/internal/certs"
	"github.com/harrylevesque/chirp/internal/config"
	"github.com/harrylevesque/chirp/internal/crypto"
	"github.com/harrylevesque/chirp/internal/logging"
	"github.com/harrylevesque/chirp/internal/render"
	"github.com/harrylevesque/chirp/internal/session"
)

// EnvMasterKey holds a hex master key that replaces the key file.
const EnvMasterKey = "CHIRP_MASTER_KEY"

// Env is everything a command needs, built from the configuration.
type Env struct {
	Config *config.Config
	Log    *logging.Logger
	State  *session.State
	Client *api.Client
	App    *app.App
	Out    *render.Renderer
}

// NewEnv wires the client stack for cfg and resumes the saved session.
func NewEnv(cfg *config.Config, out, errOut io.Writer) (*Env, error) {
	log, err := logging.New(logging.Options{App: "chirp", Level: cfg.LogLevel, File: cfg.LogFile, Console: errOut})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "logging", err)
	}
	r, err := render.New(cfg.Format, out)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "output", err)
	}

	httpClient := &http.Client{}
	if cfg.CADir != "" {
		tlsCfg, err := certs.NewCertManager(cfg.CADir, log.Logger).TLSConfig()
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "loading CA certificates", err)
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = tlsCfg
		httpClient.Transport = transport
	}

	key, err := sessionKey(cfg)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "session key", err)
	}

	state := session.New()
	d := api.NewDispatcher(cfg.Server, state,
		api.WithHTTPClient(httpClient),
		api.WithLogger(log.With().Str("component", "dispatcher").Logger()),
	)
	client := api.NewClient(d)
	store := &session.FileStore{Path: cfg.SessionFile, Key: key}
	a := app.New(client,
		app.WithStore(store),
		app.WithPageSize(cfg.PageSize),
		app.WithLogger(log.With().Str("component", "app").Logger()),
	)
	if err := a.Resume(); err != nil {
		// A file sealed for another key or machine cannot be recovered.
		log.Warn().Err(err).Str("path", cfg.SessionFile).Msg("discarding unreadable session")
		if err := store.Clear(); err != nil {
			return nil, WrapExitError(ExitCommandError, "removing session file", err)
		}
	}

	log.Debug().Str("server", cfg.Server).Str("config", cfg.File()).Bool("logged_in", state.IsLoggedIn()).Msg("environment ready")
	return &Env{Config: cfg, Log: log, State: state, Client: client, App: a, Out: r}, nil
}

// sessionKey derives the session file key from the master key and this
// machine's fingerprint.
func sessionKey(cfg *config.Config) ([]byte, error) {
	var (
		master []byte
		err    error
	)
	if hexKey := os.Getenv(EnvMasterKey); hexKey != "" {
		master, err = crypto.ParseHexKey(hexKey)
	} else {
		master, err = crypto.LoadOrCreateKeyFile(cfg.KeyFile)
	}
	if err != nil {
		return nil, err
	}
	return crypto.DeriveSessionKey(master, crypto.DeviceFingerprint())
}

// Context bounds a command by the configured timeout.
func (e *Env) Context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if e.Config.Timeout > 0 {
		return context.WithTimeout(ctx, e.Config.Timeout)
	}
	return context.WithCancel(ctx)
}

// RequireLogin fails with ExitAuth when there is no session.
func (e *Env) RequireLogin() (int64, error) {
	id, ok := e.State.MyProfileID()
	if !e.State.IsLoggedIn() || !ok {
		return 0, WrapExitError(ExitAuth, "run `chirp login <api-key>` first", app.ErrNotLoggedIn)
	}
	return id, nil
}

// Close releases the log file.
func (e *Env) Close() error {
	if err := e.Log.Close(); err != nil {
		return fmt.Errorf("closing log: %w", err)
	}
	return nil
}
