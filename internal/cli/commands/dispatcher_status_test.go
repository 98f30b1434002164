package commands

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"VaultNote/internal/cli/api"
	"VaultNote/internal/config"
)

// fakeCmd позволяет управлять возвратом ошибок из Run
type fakeCmd struct {
	name, usage, desc string
	run               func(ctx context.Context, cfg *config.Config, args []string) error
}

func (f fakeCmd) Name() string        { return f.name }
func (f fakeCmd) Description() string { return f.desc }
func (f fakeCmd) Usage() string       { return f.usage }
func (f fakeCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	return f.run(ctx, cfg, args)
}

// перехват stdout на время теста
func withStdoutCapture(t *testing.T, fn func()) string {
	t.Helper()
	old := Out
	var buf bytes.Buffer
	Out = &buf
	defer func() { Out = old }()
	fn()
	return buf.String()
}

func TestDispatcher_HelpAndUnknown(t *testing.T) {
	// зарегистрированы create/read/destroy/purge/sent из init()
	out := withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{}) })
	for _, want := range []string{"Sending a note:", "Receiving a note:", "Operating a server:", "vaultnote read <link>", "Example:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("global help must contain %q, got:\n%s", want, out)
		}
	}
	// read описан в секции получателя, а не отправителя
	if strings.Index(out, "Receiving a note:") > strings.Index(out, "vaultnote read <link>") {
		t.Fatalf("read must be listed under the recipient section:\n%s", out)
	}

	out = withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{"help"}) })
	if !strings.Contains(out, "Usage:") {
		t.Fatalf("usage expected")
	}

	var code int
	out = withStdoutCapture(t, func() { code = Dispatch(context.Background(), &config.Config{}, []string{"help", "create"}) })
	if code != ExitOK {
		t.Fatalf("expected 0 for help create, got %d", code)
	}
	if !strings.Contains(out, "Usage: vaultnote create") || !strings.Contains(out, "--max-reads N") {
		t.Fatalf("create details expected, got:\n%s", out)
	}

	out = withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{"help", "nope"}) })
	if !strings.Contains(out, "Unknown command") {
		t.Fatalf("unknown command message expected")
	}

	_ = withStdoutCapture(t, func() { code = Dispatch(context.Background(), &config.Config{}, []string{"no-such"}) })
	if code != ExitUsage {
		t.Fatalf("expected 2 for unknown command, got %d", code)
	}
}

func TestDispatcher_RunPaths(t *testing.T) {
	// зарегистрируем временную команду
	cmdOK := fakeCmd{name: "x", usage: "x", desc: "", run: func(_ context.Context, _ *config.Config, _ []string) error { return nil }}
	RegisterCmd(cmdOK)
	if code := Dispatch(context.Background(), &config.Config{}, []string{"x"}); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}

	cmdUsage := fakeCmd{name: "u", usage: "u <arg>", desc: "", run: func(_ context.Context, _ *config.Config, _ []string) error { return ErrUsage }}
	RegisterCmd(cmdUsage)
	out := withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{"u"}) })
	if !strings.Contains(out, "Usage: vaultnote u <arg>") {
		t.Fatalf("usage text expected")
	}

	cmdErr := fakeCmd{name: "e", usage: "e", desc: "", run: func(_ context.Context, _ *config.Config, _ []string) error { return fmt.Errorf("boom") }}
	RegisterCmd(cmdErr)
	out = withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{"e"}) })
	if !strings.Contains(out, "e error: boom") {
		t.Fatalf("error line expected, got: %s", out)
	}
}

func TestDispatcher_UnavailableNote(t *testing.T) {
	for _, e := range []error{api.ErrGone, api.ErrNotFound, fmt.Errorf("read: %w", api.ErrGone)} {
		RegisterCmd(fakeCmd{name: "gone", usage: "gone", run: func(_ context.Context, _ *config.Config, _ []string) error { return e }})
		var code int
		out := withStdoutCapture(t, func() { code = Dispatch(context.Background(), &config.Config{}, []string{"gone"}) })
		if code != ExitUnavailable {
			t.Fatalf("%v: expected exit %d, got %d", e, ExitUnavailable, code)
		}
		if !strings.Contains(out, "no longer available") {
			t.Fatalf("%v: unavailable message expected, got: %s", e, out)
		}
	}
	delete(registry, "gone")
}
