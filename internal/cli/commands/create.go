package commands

import (
	"VaultNote/internal/cli/bootstrap"
	"VaultNote/internal/cli/model"
	"VaultNote/internal/cli/service"
	"VaultNote/internal/config"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

type createCmd struct{}

func (createCmd) Name() string        { return "create" }
func (createCmd) Description() string { return "Encrypt a note locally and print the share link" }
func (createCmd) Usage() string {
	return "create [--password] [--max-reads N] [--duration M] [--max-views N] [--title T] [--author-name N] [--author-email E] [--no-destroy-token] <text|@file>"
}

func (createCmd) Details() string {
	return `The text is the last argument; @path reads a file, @- reads stdin.
Limits are off unless given, and each must be at least 1:
  --max-reads N   burn after N successful reads
  --duration M    expire M minutes after creation
  --max-views N   refuse reads once N views were counted
--password asks for a password twice; the link then carries no key.
The destroy token is kept in local history for 'vaultnote destroy'.`
}

func (createCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	withPassword := fs.Bool("password", false, "protect the note with a password")
	maxReads := fs.Int("max-reads", 0, "burn after N reads")
	duration := fs.Int("duration", 0, "expire after M minutes")
	maxViews := fs.Int64("max-views", 0, "hard cap on views")
	title := fs.String("title", "", "note title")
	authorName := fs.String("author-name", "", "author name")
	authorEmail := fs.String("author-email", "", "author email")
	noToken := fs.Bool("no-destroy-token", false, "anyone with the id may destroy the note")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	if fs.NArg() != 1 {
		return ErrUsage
	}
	// явно заданный лимит обязан быть положительным; без флага лимита нет
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if (set["max-reads"] && *maxReads < 1) || (set["duration"] && *duration < 1) || (set["max-views"] && *maxViews < 1) {
		return ErrUsage
	}

	text, err := readContent(fs.Arg(0))
	if err != nil {
		return err
	}
	if len(text) == 0 {
		return errors.New("note is empty")
	}

	opts := service.CreateOptions{NoDestroyToken: *noToken}
	if set["max-reads"] {
		opts.MaxReads = maxReads
	}
	if set["duration"] {
		opts.DurationMinutes = duration
	}
	if set["max-views"] {
		opts.MaxViews = maxViews
	}
	if *title != "" {
		opts.Title = title
	}
	if *authorName != "" {
		opts.AuthorName = authorName
	}
	if *authorEmail != "" {
		opts.AuthorEmail = authorEmail
	}
	if *withPassword {
		if opts.Password, err = readNewPassword(); err != nil {
			return err
		}
	}

	created, err := service.NewNoteClient(cfg.ServerURL).Create(ctx, text, opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(Out, created.Link)
	if created.DestroyToken != "" {
		fmt.Fprintf(Out, "Destroy token: %s\n", created.DestroyToken)
	}
	if created.ExpiresAt != nil {
		fmt.Fprintf(Out, "Expires at: %s\n", created.ExpiresAt.Local().Format(time.RFC3339))
	}

	saveHistory(cfg, created, *title)
	return nil
}

// readContent берёт текст из аргумента, из файла (@path) или из stdin (@-).
func readContent(arg string) ([]byte, error) {
	if !strings.HasPrefix(arg, "@") {
		return []byte(arg), nil
	}
	path := strings.TrimPrefix(arg, "@")
	if path == "-" {
		return io.ReadAll(In)
	}
	return os.ReadFile(path)
}

// saveHistory запоминает id и токен удаления; сбой истории не ломает создание.
func saveHistory(cfg *config.Config, c *service.Created, title string) {
	r, cleanup, err := bootstrap.OpenSentRepo(cfg)
	if err != nil {
		fmt.Fprintf(Out, "warning: local history unavailable: %v\n", err)
		return
	}
	defer func() { _ = cleanup() }()

	n := model.SentNote{
		ID:           c.ID,
		Server:       cfg.ServerURL,
		DestroyToken: c.DestroyToken,
		Title:        title,
		CreatedAt:    time.Now().Unix(),
	}
	if c.ExpiresAt != nil {
		n.ExpiresAt = c.ExpiresAt.Unix()
	}
	if err := r.Save(n); err != nil {
		fmt.Fprintf(Out, "warning: failed to save local history: %v\n", err)
	}
}

func init() { RegisterCmd(createCmd{}) }
