package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fxconvert/internal/adapters/ratesapi"
	"fxconvert/internal/config"
	"fxconvert/internal/converter"
	"fxconvert/internal/terminal"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

func main() {
	appCfg, err := config.Init()
	if err != nil {
		logrus.WithError(err).Fatal("Config initialization failed")
	}

	// Logs go to stderr so they don't interleave with the converter output.
	logrus.SetOutput(os.Stderr)
	if lvl, parseErr := logrus.ParseLevel(appCfg.Logging.Level); parseErr == nil {
		logrus.SetLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpTimeout := time.Duration(appCfg.HTTPClient.TimeoutSeconds) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	source := ratesapi.NewClient(&http.Client{Timeout: httpTimeout}, appCfg.RatesAPI.BaseURL)
	conv := converter.New(source, converter.WithLogger(logrus.WithField("host", "cli")))

	// Prompt only when a person is typing; piped input runs silently.
	var prompt io.Writer
	if term.IsTerminal(int(os.Stdin.Fd())) {
		prompt = os.Stdout
	}
	renderer := terminal.NewRenderer(color.Output, color.NoColor)

	session := terminal.NewSession(conv, renderer, os.Stdin, prompt)
	if runErr := session.Run(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
		logrus.WithError(runErr).Fatal("Converter session failed")
	}
}
