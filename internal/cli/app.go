package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/ecotrajet/carpool/internal/apiclient"
	"github.com/ecotrajet/carpool/internal/community"
	"github.com/ecotrajet/carpool/internal/config"
	"github.com/ecotrajet/carpool/internal/domain"
	"github.com/ecotrajet/carpool/internal/session"
)

// App carries what every command needs: configuration, the session store
// and where to write.
type App struct {
	cfg     config.Config
	out     io.Writer
	log     *slog.Logger
	session *session.FileStore
}

// NewApp returns an App writing command output to out.
func NewApp(cfg config.Config, out io.Writer, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	return &App{
		cfg:     cfg,
		out:     out,
		log:     log,
		session: session.NewFileStore(cfg.SessionFile),
	}
}

// Run executes one command line (without the program name).
func (a *App) Run(ctx context.Context, args []string) error {
	return a.Root().Execute(ctx, args, a.out)
}

// Root returns the command tree.
func (a *App) Root() *Command {
	return &Command{
		Name:    "ecotrajet",
		Summary: "Browse carpool trips, manage reservations and communities.",
		Subcommands: []*Command{
			a.loginCommand(),
			a.logoutCommand(),
			a.whoamiCommand(),
			a.tripsCommand(),
			a.reservationsCommand(),
			a.communitiesCommand(),
			a.exportCommand(),
		},
	}
}

func (a *App) client() (*apiclient.Client, error) {
	c, err := apiclient.New(a.cfg.APIBaseURL,
		apiclient.WithTimeout(a.cfg.HTTPTimeout),
		apiclient.WithTokenSource(a.session),
		apiclient.WithLogger(a.log),
	)
	if err != nil {
		return nil, fmt.Errorf("cli: %w", err)
	}
	return c, nil
}

func (a *App) currentUser() (domain.User, error) {
	u, err := session.CurrentUser(a.session)
	if err != nil {
		return domain.User{}, fmt.Errorf("cli: read session: %w", err)
	}
	return u, nil
}

// communityModel builds and loads a membership model over the configured
// source. The memory source starts from the fixtures on every run.
func (a *App) communityModel(ctx context.Context) (*community.Model, error) {
	user, err := a.currentUser()
	if err != nil {
		return nil, err
	}

	var src community.Source
	switch a.cfg.CommunitySource {
	case config.CommunitySourceRemote:
		c, err := a.client()
		if err != nil {
			return nil, err
		}
		src = community.NewRemoteSource(c, user)
	default:
		mem, err := community.NewFixtureSource()
		if err != nil {
			return nil, fmt.Errorf("cli: %w", err)
		}
		src = mem
	}

	m := community.NewModel(src, user, community.WithLogger(a.log))
	if err := m.Load(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func parseID(args []string, what string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one %s id", what)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s id %q", what, args[0])
	}
	return id, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(domain.DateLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return &d, nil
}
