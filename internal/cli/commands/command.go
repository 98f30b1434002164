package commands

import (
	"VaultNote/internal/config"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ErrUsage is returned by a command when arguments are invalid and usage should be shown.
var ErrUsage = errors.New("usage")

// Command is one step of the note workflow: create, share, read, destroy.
type Command interface {
	Name() string
	// Description is the one-line summary shown in the command list.
	Description() string
	// Usage is the argument synopsis, e.g. "read <link>".
	Usage() string
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

// Detailed is implemented by commands that have more to say in "help <command>".
type Detailed interface {
	Details() string
}

var registry = map[string]Command{}

// Out — общий writer для вывода CLI. По умолчанию os.Stdout, в тестах переназначается.
var Out io.Writer = os.Stdout

// RegisterCmd adds a command to the registry. Called from init() of each command.
func RegisterCmd(cmd Command) {
	registry[cmd.Name()] = cmd
}

func Get(name string) (Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// List returns all registered commands sorted by name.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// helpSections раскладывает команды по ролям: отправитель, получатель, оператор.
var helpSections = []struct {
	title string
	names []string
}{
	{"Sending a note", []string{"create", "sent", "destroy"}},
	{"Receiving a note", []string{"read"}},
	{"Operating a server", []string{"purge"}},
}

// FormatGlobalUsage builds the top-level help: commands grouped by role plus a worked example.
func FormatGlobalUsage() string {
	var b strings.Builder
	b.WriteString("VaultNote: encrypted notes that burn after reading\n\n")
	b.WriteString("The note is encrypted on this machine; the server never sees the key.\n")
	b.WriteString("Share the printed link. The part after '#' is the key, or the note\n")
	b.WriteString("asks for a password when created with --password.\n\n")
	b.WriteString("Usage:\n  vaultnote [--base-url <host:port>] [--https] [--client-db <path>] <command> [args]\n")

	listed := map[string]bool{}
	for _, s := range helpSections {
		var rows []Command
		for _, n := range s.names {
			if c, ok := Get(n); ok {
				rows = append(rows, c)
				listed[n] = true
			}
		}
		writeSection(&b, s.title, rows)
	}
	var rest []Command
	for _, c := range List() {
		if !listed[c.Name()] {
			rest = append(rest, c)
		}
	}
	writeSection(&b, "Other", rest)

	b.WriteString("\nExample:\n")
	b.WriteString("  vaultnote create --max-reads 1 --duration 60 \"db password: hunter2\"\n")
	b.WriteString("  vaultnote read 'http://localhost:8081/n/<id>#<key>'\n")
	b.WriteString("  vaultnote destroy <id>\n")
	b.WriteString("\nRun 'vaultnote help <command>' for details.\n")
	return b.String()
}

func writeSection(b *strings.Builder, title string, cmds []Command) {
	if len(cmds) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, c := range cmds {
		fmt.Fprintf(b, "  %-10s %s\n", c.Name(), c.Description())
		fmt.Fprintf(b, "  %-10s vaultnote %s\n", "", c.Usage())
	}
}

// FormatCommandUsage is the "help <command>" page.
func FormatCommandUsage(c Command) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage: vaultnote %s\n\n%s\n", c.Usage(), c.Description())
	if d, ok := c.(Detailed); ok {
		fmt.Fprintf(&b, "\n%s\n", strings.TrimRight(d.Details(), "\n"))
	}
	return b.String()
}
