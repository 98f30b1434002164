package commands

import (
	"VaultNote/internal/cli/bootstrap"
	"VaultNote/internal/config"
	"context"
	"fmt"
	"time"
)

type sentCmd struct{}

func (sentCmd) Name() string        { return "sent" }
func (sentCmd) Description() string { return "List notes created from this machine" }
func (sentCmd) Usage() string       { return "sent" }

func (sentCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	r, cleanup, err := bootstrap.OpenSentRepo(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	list, err := r.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(Out, "No notes")
		return nil
	}
	now := time.Now().Unix()
	for _, n := range list {
		state := "active"
		if n.ExpiresAt != 0 && n.ExpiresAt < now {
			state = "expired"
		}
		title := n.Title
		if title == "" {
			title = "-"
		}
		fmt.Fprintf(Out, "%s  %s  %-7s  %s\n", n.ID, time.Unix(n.CreatedAt, 0).Format("2006-01-02 15:04"), state, title)
	}
	return nil
}

func init() { RegisterCmd(sentCmd{}) }
