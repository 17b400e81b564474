// Command pairchat is a terminal client for a two-person chat. It asks for a
// display name, resolves the pair code of the user and shows the pair's
// messages live.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GetStream/pairchat/chat"
	"github.com/GetStream/pairchat/config"
	"github.com/GetStream/pairchat/docstore"
	"github.com/GetStream/pairchat/onboarding"
	"github.com/GetStream/pairchat/postgres"
	"github.com/GetStream/pairchat/redis"
	"github.com/GetStream/pairchat/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pairchat: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	uid := flag.String("uid", "", "user id (a new one is generated when empty)")
	pair := flag.String("pair", "", "pair code to store on the user profile")
	locale := flag.String("locale", cfg.Locale, "welcome screen language (en or ja)")
	flag.Parse()

	if *pair != "" {
		if err := validatePairCode(*pair); err != nil {
			return err
		}
	}

	logger, err := cfg.Logger(os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	loc, err := onboarding.LookupLocale(*locale)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lines := readLines(os.Stdin)

	name, err := welcome(ctx, lines, os.Stdout, loc, logger)
	if err != nil {
		return err
	}

	if *uid == "" {
		*uid = uuid.NewString()
	}
	logger = logger.With("uid", *uid)
	logger.Info("Signed in", "username", name)

	pg, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()
	if err := pg.CreateSchema(ctx); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	rdb, err := redis.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer rdb.Close()

	if err := ensureUser(ctx, pg, *uid, *pair); err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	store := docstore.New(logger, pg, rdb, rdb)
	defer store.Close()
	view := &terminalView{out: os.Stdout, uid: *uid, loc: time.Local}
	screen := chat.NewScreen(staticAuth{uid: *uid}, store, view, chat.WithLogger(logger), chat.WithLocation(time.Local))
	screen.Mount(ctx)
	defer func() {
		screen.Unmount()
		screen.Wait()
	}()

	return chatLoop(ctx, lines, os.Stdout, screen, pg, *uid, logger)
}

func ensureUser(ctx context.Context, pg *postgres.Postgres, uid, pair string) error {
	if pair != "" {
		if _, err := pg.UpsertUser(ctx, uid, pair); err != nil {
			return fmt.Errorf("store pair code: %w", err)
		}
		return nil
	}
	_, err := pg.GetUser(ctx, uid)
	if errors.Is(err, chat.ErrNotFound) {
		_, err = pg.UpsertUser(ctx, uid, "")
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	return nil
}

// welcome runs the welcome screen until a name is accepted.
func welcome(ctx context.Context, lines <-chan string, out io.Writer, locale onboarding.Locale, logger *slog.Logger) (string, error) {
	for {
		nav := &navigator{}
		screen := onboarding.NewScreen(locale, nav, terminalAlerter{out: out}, logger)
		fmt.Fprintf(out, "%s\n%s", locale.Banner, locale.PromptText())

		var line string
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case l, ok := <-lines:
			if !ok {
				return "", io.EOF
			}
			line = l
		}

		if strings.TrimSpace(line) == "/lang" {
			screen.SwitchLanguage()
		} else if err := screen.Submit(line); err != nil {
			continue
		}

		switch nav.screen {
		case locale.MainScreen:
			return nav.username(), nil
		case onboarding.English.AlternateScreen:
			locale = onboarding.Japanese
		case onboarding.Japanese.AlternateScreen:
			locale = onboarding.English
		}
	}
}

// pairCodeTag keeps a code usable as one segment of pairs/{code}/messages.
const pairCodeTag = "required,max=64,printascii,excludesall=/"

var val = validator.New()

func validatePairCode(code string) error {
	if verrs := val.Validate(code, pairCodeTag); len(verrs) > 0 {
		return fmt.Errorf("invalid pair code %q: fails %q", code, verrs[0].Tag)
	}
	return nil
}

func chatLoop(ctx context.Context, lines <-chan string, out io.Writer, screen *chat.Screen, pg *postgres.Postgres, uid string, logger *slog.Logger) error {
	for {
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = l
		}

		switch cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " "); cmd {
		case "/quit":
			return nil
		case "/pair":
			code := strings.TrimSpace(arg)
			if err := validatePairCode(code); err != nil {
				logger.Warn("Rejected pair code", "pair_code", code, "error", err.Error())
				fmt.Fprintf(out, "%v\n", err)
				continue
			}
			if _, err := pg.UpsertUser(ctx, uid, code); err != nil {
				logger.Error("Could not store pair code", "error", err.Error())
				continue
			}
			screen.SetPairCode(code)
		default:
			screen.SetCompose(line)
			screen.Send(ctx)
		}
	}
}

func readLines(r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			out <- sc.Text()
		}
	}()
	return out
}

func serveMetrics(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server stopped", "error", err.Error())
		}
	}()
	return srv
}
