package commands

import (
	"VaultNote/internal/cli/bootstrap"
	"VaultNote/internal/cli/service"
	"VaultNote/internal/config"
	"context"
	"fmt"
)

type destroyCmd struct{}

func (destroyCmd) Name() string { return "destroy" }
func (destroyCmd) Description() string {
	return "Delete a note now (token taken from local history if omitted)"
}
func (destroyCmd) Usage() string { return "destroy <id|link> [token]" }

func (destroyCmd) Details() string {
	return `Without a token the one saved by 'create' in local history is used.
Notes created with --no-destroy-token can be destroyed by anyone who has the id.`
}

func (destroyCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	l, err := service.ParseLink(args[0])
	if err != nil {
		return err
	}
	var token string
	if len(args) == 2 {
		token = args[1]
	}

	history, cleanup, herr := bootstrap.OpenSentRepo(cfg)
	if herr == nil {
		defer func() { _ = cleanup() }()
		if sent, err := history.Get(l.ID); err == nil {
			if token == "" {
				token = sent.DestroyToken
			}
			if l.Server == "" {
				l.Server = sent.Server
			}
		}
	}

	if err := service.NewNoteClient(cfg.ServerURL).Destroy(ctx, l.Server, l.ID, token); err != nil {
		return err
	}
	if herr == nil {
		_ = history.Delete(l.ID)
	}
	fmt.Fprintln(Out, "Note destroyed")
	return nil
}

func init() { RegisterCmd(destroyCmd{}) }
