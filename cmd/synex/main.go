package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/naveenspark/synex/internal/browser"
	"github.com/naveenspark/synex/internal/config"
	"github.com/naveenspark/synex/internal/logging"
	"github.com/naveenspark/synex/internal/selfupdate"
	"github.com/naveenspark/synex/internal/tui"
	"github.com/naveenspark/synex/pkg/auth"
	"github.com/naveenspark/synex/pkg/client"
	"github.com/naveenspark/synex/pkg/session"
	"github.com/naveenspark/synex/pkg/tokencache"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const binaryName = "synex"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// wiring is everything a subcommand may need, built once from config.
type wiring struct {
	cfg     config.Config
	log     zerolog.Logger
	cache   tokencache.Cache
	gateway *auth.Gateway
	closers []io.Closer
}

func (w *wiring) Close() {
	for i := len(w.closers) - 1; i >= 0; i-- {
		w.closers[i].Close() //nolint:errcheck
	}
}

func newWiring(cfg config.Config, log zerolog.Logger) (*wiring, error) {
	w := &wiring{cfg: cfg, log: log}

	switch cfg.TokenStore {
	case config.StoreRedis:
		rdb, err := tokencache.DialRedis(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		w.closers = append(w.closers, rdb)
		w.cache = tokencache.NewRedis(rdb, cfg.RedisPrefix)
	case config.StoreMemory:
		w.cache = tokencache.NewMemory()
	default:
		w.cache = tokencache.NewFile(cfg.TokenFile)
	}

	cache := w.cache
	api := client.New(cfg.APIURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(log),
		client.WithTokenSource(func(ctx context.Context) string {
			tok, _, err := cache.Get(ctx, tokencache.KeyAccessToken)
			if err != nil {
				log.Warn().Err(err).Msg("read cached access token")
			}
			return tok
		}),
	)
	w.gateway = auth.NewGateway(api, session.NewStore(cache), cache, auth.WithLogger(log))
	return w, nil
}

// setup loads config and opens the log file. The TUI owns the terminal, so
// logging always goes to the file; if it cannot be opened, logs are dropped.
func setup() (*wiring, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, f, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v (logging disabled)\n", err)
	}
	w, err := newWiring(cfg, log.With().Str("version", version).Logger())
	if err != nil {
		if f != nil {
			f.Close() //nolint:errcheck
		}
		return nil, err
	}
	if f != nil {
		w.closers = append([]io.Closer{f}, w.closers...)
	}
	return w, nil
}

func run(args []string, out io.Writer) error {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "version", "-v":
			fmt.Fprintln(out, binaryName+" "+version)
			return nil
		case "help", "--help", "-h":
			printHelp(out)
			return nil
		case "--update-done":
			if len(args) >= 3 {
				printUpdateSuccess(out, args[1], args[2])
			}
			return nil
		}
	}

	w, err := setup()
	if err != nil {
		return err
	}
	defer w.Close()

	ctx := context.Background()
	if len(args) > 0 {
		switch args[0] {
		case "logout":
			return runLogout(ctx, w, out)
		case "status":
			return runStatus(ctx, w, out, time.Now())
		case "open":
			return runOpen(w, out)
		case "update":
			return runUpdate(ctx, w, out)
		default:
			printHelp(out)
			return fmt.Errorf("unknown command %q", args[0])
		}
	}
	return runTUI(w)
}

func runTUI(w *wiring) error {
	var authn auth.Authenticator = w.gateway
	if w.cfg.DemoLogin {
		w.log.Info().Msg("demo login enabled, using built-in allow-list")
		authn = auth.NewDemoAllowList()
	}

	app := tui.NewApp(tui.Options{
		Auth:         authn,
		Recovery:     w.gateway,
		Sessions:     w.gateway,
		DashboardURL: w.cfg.DashboardURL,
		Version:      version,
		Updates:      selfupdate.New(w.cfg.ReleaseRepo, binaryName),
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func runLogout(ctx context.Context, w *wiring, out io.Writer) error {
	pair, err := w.gateway.PersistedTokens(ctx)
	if err != nil {
		return err
	}
	if pair.Empty() {
		fmt.Fprintln(out, "Already logged out.")
		return nil
	}
	if err := w.gateway.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "Logged out.")
	return nil
}

func runStatus(ctx context.Context, w *wiring, out io.Writer, now time.Time) error {
	pair, err := w.gateway.PersistedTokens(ctx)
	if err != nil {
		return err
	}
	if pair.AccessToken == "" {
		fmt.Fprintln(out, "Not signed in.")
		return nil
	}

	fmt.Fprintf(out, "API:      %s\n", w.cfg.APIURL)
	fmt.Fprintf(out, "Store:    %s\n", storeLabel(w.cfg))
	claims, err := session.AccessClaims(pair.AccessToken)
	switch {
	case err != nil:
		fmt.Fprintln(out, "Access:   present (opaque)")
	case claims.ExpiresAt.IsZero():
		fmt.Fprintf(out, "Access:   %s, no expiry\n", subjectOr(claims.Subject))
	case claims.Expired(now):
		fmt.Fprintf(out, "Access:   %s, expired %s\n", subjectOr(claims.Subject), claims.ExpiresAt.Local().Format(time.RFC1123))
	default:
		fmt.Fprintf(out, "Access:   %s, valid until %s\n", subjectOr(claims.Subject), claims.ExpiresAt.Local().Format(time.RFC1123))
	}
	if pair.RefreshToken != "" {
		fmt.Fprintln(out, "Refresh:  present")
	} else {
		fmt.Fprintln(out, "Refresh:  missing")
	}
	return nil
}

func subjectOr(sub string) string {
	if sub == "" {
		return "unknown subject"
	}
	return sub
}

func storeLabel(cfg config.Config) string {
	switch cfg.TokenStore {
	case config.StoreRedis:
		return "redis (" + cfg.RedisPrefix + ")"
	case config.StoreMemory:
		return "memory"
	}
	return "file " + cfg.TokenFile
}

func runOpen(w *wiring, out io.Writer) error {
	if err := browser.Open(w.cfg.DashboardURL); err != nil {
		fmt.Fprintf(out, "Could not open browser. Visit this URL manually:\n  %s\n", w.cfg.DashboardURL)
	}
	return nil
}

func runUpdate(ctx context.Context, w *wiring, out io.Writer) error {
	if version == "dev" {
		fmt.Fprintln(out, "dev build, install a release to enable updates")
		return nil
	}

	// Resolve the real binary path (follow symlinks).
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("runUpdate: find executable: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("runUpdate: resolve symlinks: %w", err)
	}

	u := selfupdate.New(w.cfg.ReleaseRepo, binaryName)
	rel, err := u.Latest(ctx)
	if err != nil {
		return fmt.Errorf("runUpdate: %w", err)
	}
	current := strings.TrimPrefix(version, "v")
	if !selfupdate.IsNewerVersion(rel.Version(), current) {
		printAlreadyCurrent(out, "v"+current)
		return nil
	}

	w.log.Info().Str("from", current).Str("to", rel.Version()).Msg("installing update")
	if err := u.Install(ctx, rel, execPath); err != nil {
		if errors.Is(err, selfupdate.ErrPermission) {
			return fmt.Errorf("%w, try with sudo", err)
		}
		return fmt.Errorf("runUpdate: %w", err)
	}

	// Re-exec into the new binary so its code prints the success message.
	execErr := syscall.Exec(execPath, []string{binaryName, "--update-done", "v" + current, "v" + rel.Version()}, os.Environ())
	if execErr != nil {
		printUpdateSuccess(out, "v"+current, "v"+rel.Version())
	}
	return nil
}

func printHelp(out io.Writer) {
	fmt.Fprint(out, `synex - terminal client for the Synex dashboard

Usage:
  synex            sign in and open the dashboard (interactive)
  synex status     show the saved session
  synex logout     clear saved tokens
  synex open       open the web dashboard
  synex update     install the latest release
  synex version    show version
  synex help       show this help

Environment:
  SYNEX_API_URL, SYNEX_DASHBOARD_URL, SYNEX_TOKEN_STORE (file|redis|memory),
  SYNEX_TOKEN_FILE, SYNEX_REDIS_URL, SYNEX_REDIS_PREFIX, SYNEX_REQUEST_TIMEOUT,
  SYNEX_LOG_LEVEL, SYNEX_LOG_FILE, SYNEX_DEMO_LOGIN, SYNEX_RELEASE_REPO
  Values may also be set in a .env file in the working directory.
`)
}
