package commands

import (
	"VaultNote/internal/cli/service"
	"VaultNote/internal/config"
	"context"
	"fmt"
)

type purgeCmd struct{}

func (purgeCmd) Name() string        { return "purge" }
func (purgeCmd) Description() string { return "Run server cleanup of expired and consumed notes" }
func (purgeCmd) Usage() string       { return "purge <secret>" }

func (purgeCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	n, err := service.NewNoteClient(cfg.ServerURL).Purge(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Purged %d notes\n", n)
	return nil
}

func init() { RegisterCmd(purgeCmd{}) }
