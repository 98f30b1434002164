package commands

import (
	"VaultNote/internal/cli/service"
	"VaultNote/internal/config"
	"context"
	"fmt"
	"time"
)

type readCmd struct{}

func (readCmd) Name() string        { return "read" }
func (readCmd) Description() string { return "Fetch and decrypt a note (consumes one read)" }
func (readCmd) Usage() string       { return "read <link>" }

func (readCmd) Details() string {
	return `Every successful read consumes one of the note's reads.
For a password-protected note the password is asked on the terminal,
or read as one line from stdin: echo "$PW" | vaultnote read <link>`
}

// Пароль не принимается аргументом, чтобы не оседать в истории шелла и в ps:
// его спрашивают с терминала либо читают строкой из stdin.
func (readCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	password := func() (string, error) { return readPassword("Password: ") }

	n, err := service.NewNoteClient(cfg.ServerURL).Read(ctx, args[0], password)
	if err != nil {
		return err
	}

	if n.Title != nil {
		fmt.Fprintf(Out, "Title: %s\n", *n.Title)
	}
	author := n.AuthorName
	if n.AuthorEmail != "" {
		author += " <" + n.AuthorEmail + ">"
	}
	fmt.Fprintf(Out, "From: %s\n", author)
	if n.RemainingReads != nil {
		fmt.Fprintf(Out, "Reads left: %d\n", *n.RemainingReads)
	}
	if n.ExpiresAt != nil {
		fmt.Fprintf(Out, "Expires at: %s\n", n.ExpiresAt.Local().Format(time.RFC3339))
	}
	for _, a := range n.Attachments {
		fmt.Fprintf(Out, "Attachment: %s (%d bytes)\n", a.Name, a.Size)
	}
	fmt.Fprintln(Out)
	fmt.Fprintln(Out, string(n.Plaintext))
	return nil
}

func init() { RegisterCmd(readCmd{}) }
