package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/ecotrajet/carpool/internal/community"
	"github.com/ecotrajet/carpool/internal/domain"
)

func (a *App) communitiesCommand() *Command {
	return &Command{
		Name:    "communities",
		Summary: "Browse, join and create communities",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "List joined and available communities",
				Run:     a.listCommunities,
			},
			{
				Name:    "join",
				Summary: "Join an available community",
				Usage:   "ecotrajet communities join <id>",
				Run:     a.joinCommunity,
			},
			{
				Name:    "leave",
				Summary: "Leave a joined community",
				Usage:   "ecotrajet communities leave <id>",
				Run:     a.leaveCommunity,
			},
			a.communitiesCreateCommand(),
			a.communitiesShowCommand(),
		},
	}
}

func (a *App) listCommunities(ctx context.Context, _ []string) error {
	m, err := a.communityModel(ctx)
	if err != nil {
		return err
	}
	st := m.State()
	fmt.Fprintln(a.out, "Joined:")
	renderCommunities(a.out, st.Joined)
	fmt.Fprintln(a.out, "\nAvailable:")
	renderCommunities(a.out, st.Available)
	return nil
}

func communityID(args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", errors.New("expected exactly one community id")
	}
	return args[0], nil
}

func (a *App) joinCommunity(ctx context.Context, args []string) error {
	id, err := communityID(args)
	if err != nil {
		return err
	}
	m, err := a.communityModel(ctx)
	if err != nil {
		return err
	}
	c, err := m.Join(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Joined %s\n", c.Title)
	return nil
}

func (a *App) leaveCommunity(ctx context.Context, args []string) error {
	id, err := communityID(args)
	if err != nil {
		return err
	}
	m, err := a.communityModel(ctx)
	if err != nil {
		return err
	}
	c, err := m.Leave(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Left %s\n", c.Title)
	return nil
}

func (a *App) communitiesCreateCommand() *Command {
	var name, kind, location, description string
	return &Command{
		Name:    "create",
		Summary: "Create a community and become its first member",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("create", pflag.ContinueOnError)
			fs.StringVar(&name, "name", "", "community name")
			fs.StringVar(&kind, "type", "", "Entreprise, Étudiants, Loisirs or Général")
			fs.StringVar(&location, "location", "", "area the community covers")
			fs.StringVar(&description, "description", "", "what the community is about")
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			t := domain.CommunityType(kind)
			if parsed, err := domain.ParseCommunityType(kind); err == nil {
				t = parsed
			}
			m, err := a.communityModel(ctx)
			if err != nil {
				return err
			}
			c, err := m.Create(ctx, domain.CommunityDraft{
				Name:        name,
				Type:        t,
				Location:    location,
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Community %s created (id %s)\n", c.Title, c.ID)
			return nil
		},
	}
}

func (a *App) communitiesShowCommand() *Command {
	var tab string
	return &Command{
		Name:    "show",
		Summary: "Show a community",
		Usage:   "ecotrajet communities show <id> [--tab overview|members|trips]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("show", pflag.ContinueOnError)
			fs.StringVar(&tab, "tab", string(community.TabOverview), "section to show: overview, members or trips")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			id, err := communityID(args)
			if err != nil {
				return err
			}
			t, err := community.ParseTab(tab)
			if err != nil {
				return err
			}
			m, err := a.communityModel(ctx)
			if err != nil {
				return err
			}
			if _, err := m.View(id); err != nil {
				return err
			}
			if err := m.SetTab(t); err != nil {
				return err
			}
			renderCommunityDetail(a.out, m.State())
			return nil
		},
	}
}
