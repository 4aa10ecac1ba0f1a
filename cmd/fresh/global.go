package main

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/fresh-editor/fresh/internal/config"
	"github.com/fresh-editor/fresh/internal/errors"
	"github.com/fresh-editor/fresh/internal/recovery"
)

var version = "0.1.0-dev (compiled manually)"

// GlobalOptions holds every global flag, populated by AddFlags and
// resolved once by PreRun - the same split restic's GlobalOptions uses
// between flag binding and post-parse validation/defaulting.
type GlobalOptions struct {
	NoPlugins    bool
	ConfigPath   string
	LogFile      string
	EventLogFile string
	ScriptMode   bool
	ScriptWidth  int
	ScriptHeight int
	ScriptSchema bool
	NoSession    bool

	config  config.Config
	watcher *config.Watcher
}

func (opts *GlobalOptions) AddFlags(f *pflag.FlagSet) {
	f.BoolVar(&opts.NoPlugins, "no-plugins", false, "disable the plugin host")
	f.StringVar(&opts.ConfigPath, "config", "", "`path` to the config file (default: the data directory's config.yaml)")
	f.StringVar(&opts.LogFile, "log-file", "", "`path` to write diagnostic logs to")
	f.StringVar(&opts.EventLogFile, "event-log", "", "`path` to write a structured event log to")
	f.BoolVar(&opts.ScriptMode, "script-mode", false, "run the script-control protocol over stdin/stdout instead of a terminal UI")
	f.IntVar(&opts.ScriptWidth, "script-width", 80, "virtual terminal width in script mode")
	f.IntVar(&opts.ScriptHeight, "script-height", 24, "virtual terminal height in script mode")
	f.BoolVar(&opts.ScriptSchema, "script-schema", false, "print the script-control protocol's JSON schema and exit")
	f.BoolVar(&opts.NoSession, "no-session", false, "disable crash-recovery session tracking")
}

// defaultConfigPath resolves where the config file lives when --config
// isn't given: the recovery data directory (they share the XDG base
// directory), not a separate location.
func defaultConfigPath() (string, error) {
	dir, err := recovery.DataDir()
	if err != nil {
		return "", err
	}
	return dir + string(os.PathSeparator) + "config.yaml", nil
}

// PreRun resolves the config path (falling back to the default data
// directory location) and loads it, watching it for hot-reload in every
// mode, script mode included. A malformed config file is logged, not
// fatal, per this subsystem's Configuration error kind.
func (opts *GlobalOptions) PreRun() error {
	path := opts.ConfigPath
	if path == "" {
		p, err := defaultConfigPath()
		if err != nil {
			return errors.Wrap(err, "resolving default config path")
		}
		path = p
	}

	opts.watcher = config.NewWatcher(path)
	opts.watcher.Start()
	opts.config = opts.watcher.Current()
	return nil
}

var globalOptions = GlobalOptions{}
