// Command lmsctl is a terminal client for the course marketplace API. The
// session survives between invocations in the configured session backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-lms-client/client"
	"github.com/jrsteele09/go-lms-client/internal/config"
	"github.com/jrsteele09/go-lms-client/internal/logging"
	"github.com/jrsteele09/go-lms-client/lms"
	"github.com/jrsteele09/go-lms-client/notify"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const usage = `usage: lmsctl <command> [flags]

commands:
  login       -role student|teacher -email EMAIL -password PASSWORD
  logout
  whoami
  categories
  courses     [-search TEXT] [-category ID] [-page N]
  course      -id ID
  profile
  get         PATH
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	c := config.New()
	logger := logging.New(c.GetLogLevel(), c.GetEnv())

	console := notify.NewConsole(os.Stdout, true)
	redirect := notify.NewAwaiter(console)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, c, logger, console, redirect, os.Args[1], os.Args[2:])
	stop()

	if errors.Is(err, client.ErrSessionExpired) {
		// The redirect to the entry page is scheduled after the redirect delay.
		redirect.Wait(c.GetRedirectDelay() + time.Second)
		os.Exit(3)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s%v%s\n", notify.Red, err, notify.ResetColor)
		os.Exit(1)
	}
}

type app struct {
	api     *lms.API
	client  *client.Client
	console *notify.Console
}

func run(ctx context.Context, c config.Config, logger zerolog.Logger, console *notify.Console, navigator notify.Navigator, command string, args []string) error {
	sessions, closeSessions, err := openSessions(ctx, c)
	if err != nil {
		return err
	}
	defer closeSessions()

	opts := []client.Option{
		client.WithHTTPClient(&http.Client{Timeout: c.GetHTTPTimeout()}),
		client.WithLogger(logger),
		client.WithNotifier(console),
		client.WithNavigator(navigator),
		client.WithRedirectDelay(c.GetRedirectDelay()),
		client.WithRefreshPath(c.GetRefreshPath()),
	}
	if limit := c.GetRateLimit(); limit > 0 {
		opts = append(opts, client.WithRateLimiter(rate.NewLimiter(rate.Limit(limit), c.GetRateBurst())))
	}

	cl, err := client.New(c.GetAPIBaseURL(), sessions, opts...)
	if err != nil {
		return err
	}
	a := &app{api: lms.New(cl, sessions), client: cl, console: console}

	switch command {
	case "login":
		displayAppname(c.GetAppName())
		return a.login(ctx, args)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami(sessions.State())
	case "categories":
		return a.categories(ctx)
	case "courses":
		return a.courses(ctx, args)
	case "course":
		return a.course(ctx, args)
	case "profile":
		return a.profile(ctx)
	case "get":
		return a.get(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
