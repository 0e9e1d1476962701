package main

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/eyecare-portal/internal/client"
	"github.com/jwalitptl/eyecare-portal/internal/session"
	"github.com/jwalitptl/eyecare-portal/pkg/errors"
	"github.com/jwalitptl/eyecare-portal/pkg/logger"
)

// Config is read from EYECARE_* environment variables.
type Config struct {
	APIURL             string `envconfig:"API_URL" default:"http://localhost:8000"`
	SessionFile        string `envconfig:"SESSION_FILE"`
	LogLevel           string `envconfig:"LOG_LEVEL" default:"warn"`
	BackfillConfidence bool   `envconfig:"BACKFILL_CONFIDENCE" default:"true"`
}

const usage = `usage: eyecare <command> [flags]

commands:
  signin   --email --password     sign in and remember the patient id
  signup                          create an account interactively
  logout                          forget the patient id
  status                          show whether a patient id is stored
  predict  <image>                classify a retinal scan
  history                         list past predictions
  doctors  [--lat --lng]          list nearby eye specialists
  report   --disease              generate a report for a condition
`

func main() {
	var cfg Config
	if err := envconfig.Process("eyecare", &cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, message(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, args []string, in io.Reader, out, errOut io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(errOut, usage)
		return stderrors.New("no command given")
	}

	l := logger.New(&logger.Config{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Output: errOut,
	})

	a, err := newApp(cfg, l, in, out)
	if err != nil {
		return err
	}

	cmd, ok := a.commands()[args[0]]
	if !ok {
		fmt.Fprint(errOut, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return cmd(ctx, args[1:])
}

func newApp(cfg Config, l zerolog.Logger, in io.Reader, out io.Writer) (*app, error) {
	path := cfg.SessionFile
	if path == "" {
		p, err := session.DefaultFilePath()
		if err != nil {
			return nil, fmt.Errorf("failed to locate session file: %w", err)
		}
		path = p
	}

	c, err := client.New(client.Config{
		BaseURL:            cfg.APIURL,
		BackfillConfidence: cfg.BackfillConfidence,
	}, client.WithLogger(logger.Component(l, "client")))
	if err != nil {
		return nil, err
	}

	return &app{
		client: c,
		sess:   session.New(session.NewFileBackend(path), session.UserIDKey, l, nil),
		in:     bufio.NewReader(in),
		out:    out,
		logger: l,
	}, nil
}

// message prefers the user-facing text of an application error.
func isAppError(err error) bool {
	var appErr *errors.AppError
	return stderrors.As(err, &appErr)
}

func message(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
