package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/fresh-editor/fresh/internal/chunktree"
	"github.com/fresh-editor/fresh/internal/debug"
	"github.com/fresh-editor/fresh/internal/editor"
	"github.com/fresh-editor/fresh/internal/errors"
	"github.com/fresh-editor/fresh/internal/keymap"
	"github.com/fresh-editor/fresh/internal/recovery"
	"github.com/fresh-editor/fresh/internal/scriptctl"
)

func init() {
	// don't import `go.uber.org/automaxprocs` to disable the log output
	_, _ = maxprocs.Set()
}

// ErrOK short-circuits main()'s error classification the same way
// restic's cmdRoot sometimes returns a sentinel to mean "exit cleanly
// from a subcommand that already printed its own message".
var ErrOK = errors.New("ok")

var cmdRoot = &cobra.Command{
	Use:   "fresh [FILE[:LINE[:COL]]]",
	Short: "A terminal text editor",
	Long: `
fresh is a terminal text editor with chunked rope storage, tree-sitter
powered highlighting and indentation, multi-cursor editing, and
crash recovery.
`,
	Args:              cobra.MaximumNArgs(1),
	SilenceErrors:     true,
	SilenceUsage:      true,
	DisableAutoGenTag: true,

	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return globalOptions.PreRun()
	},

	RunE: runEditor,
}

func init() {
	globalOptions.AddFlags(cmdRoot.PersistentFlags())
}

func runEditor(cmd *cobra.Command, args []string) error {
	if globalOptions.ScriptSchema {
		return printScriptSchema()
	}

	var target OpenTarget
	if len(args) == 1 {
		t, err := parseOpenTarget(args[0])
		if err != nil {
			return errors.Fatal(err.Error())
		}
		target = t
	}

	ed := editor.New()
	if target.Path != "" && !target.IsDir {
		if _, err := ed.OpenFile(target.Path, chunktree.DefaultConfig); err != nil {
			return errors.Fatalf("opening %s: %v", target.Path, err)
		}
	}

	bindings, err := keymap.LoadMap(globalOptions.config.Keybindings)
	if err != nil {
		return errors.Fatalf("invalid keybindings in config: %v", err)
	}

	var recoverySvc *recovery.Service
	if !globalOptions.NoSession {
		recoverySvc, err = recovery.NewWithConfig(recovery.Config{
			Enabled:              true,
			AutoSaveIntervalSecs: 2,
			MaxRecoveryAgeSecs:   uint64(globalOptions.config.RecoveryLimit) * 24 * 60 * 60,
		})
		if err != nil {
			debug.Log("recovery: failed to initialize, continuing without it: %v", err)
		} else if err := recoverySvc.StartSession(); err != nil {
			debug.Log("recovery: failed to start session: %v", err)
		} else {
			defer recoverySvc.EndSession()
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	if globalOptions.ScriptMode {
		host := newScriptHost(ed, globalOptions.ScriptWidth, globalOptions.ScriptHeight, bindings)
		server := scriptctl.NewServer(host)
		return server.Run(os.Stdin, os.Stdout)
	}

	return runInteractive(ctx, ed, bindings)
}

func runInteractive(ctx context.Context, ed *editor.Editor, bindings *keymap.Bindings) error {
	term, err := newRawTerminal()
	if err != nil {
		return errors.Wrap(err, "entering raw terminal mode")
	}
	defer term.Close()

	input := newStdinInputSource()
	host := newScriptHost(ed, 80, 24, bindings)
	loop := &editor.Loop{
		Input: input,
		Handle: func(ev editor.InputEvent) {
			if ev.Kind != editor.EventKey {
				return
			}
			key, ok := ev.Data.(keymap.Key)
			if !ok {
				return
			}
			if key.Code == keymap.CodeEscape {
				return
			}
			host.HandleKey(key)
		},
		Render: func() {},
	}
	loop.Run(ctx)
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()
	return ctx, cancel
}

func printScriptSchema() error {
	schema := map[string]any{
		"commands": []string{
			"render", "key", "mouse_click", "type_text", "status",
			"get_buffer", "open_file", "wait_for", "quit", "export_test",
		},
		"responses": []string{"screen", "status", "buffer", "ok", "error"},
	}
	return json.NewEncoder(os.Stdout).Encode(schema)
}

func main() {
	debug.Log("fresh %s compiled with %v on %v/%v",
		version, runtime.Version(), runtime.GOOS, runtime.GOARCH)

	ctx := context.Background()
	err := cmdRoot.ExecuteContext(ctx)

	if err == ErrOK {
		err = nil
	}

	var exitMessage string
	switch {
	case errors.IsFatal(err):
		exitMessage = err.Error()
	case err != nil:
		exitMessage = fmt.Sprintf("%+v", err)
	}

	var exitCode int
	switch {
	case err == nil:
		exitCode = 0
	case errors.Is(err, context.Canceled):
		exitCode = 130
	default:
		exitCode = 1
	}

	if exitCode != 0 {
		fmt.Fprintln(os.Stderr, exitMessage)
	}
	os.Exit(exitCode)
}
