package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/srlehn/wlconn/internal"
	"github.com/srlehn/wlconn/internal/config"
	"github.com/srlehn/wlconn/internal/environ"
	"github.com/srlehn/wlconn/internal/errors"
	"github.com/srlehn/wlconn/internal/logx"
)

var rootCmd = &cobra.Command{
	Use:              filepath.Base(os.Args[0]),
	Short:            "wlconn connect to the Wayland compositor",
	Long:             "wlconn connects to the Wayland compositor named by the environment (WAYLAND_SOCKET, WAYLAND_DISPLAY, XDG_RUNTIME_DIR)",
	SilenceUsage:     true,
	TraverseChildren: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, `debug`, `d`, false, `debug errors`)
	rootCmd.PersistentFlags().BoolVarP(&silentFlag, `silent`, `s`, false, `silence errors`)
	rootCmd.PersistentFlags().StringVarP(&logFileFlag, `log-file`, `l`, ``, `log file`)
	rootCmd.PersistentFlags().StringVarP(&configFlag, `config`, `c`, ``, `yaml settings file`)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	debugFlag      bool
	silentFlag     bool
	logFileFlag    string
	configFlag     string
	cpuProfileFlag string
	cpuProfilefunc func(profileFile string) func()
)

// session holds what every subcommand needs: the environment snapshot with
// the settings file applied, the logger and the resources to release.
type session struct {
	env    environ.Properties
	cfg    config.Config
	logger *slog.Logger
	closer internal.Closer
}

var _ logx.LoggerProvider = (*session)(nil)

func (s *session) Logger() *slog.Logger {
	if s == nil {
		return nil
	}
	return s.logger
}

func (s *session) Close() error {
	if s == nil {
		return nil
	}
	return s.closer.Close()
}

func newSession() (*session, error) {
	s := &session{
		env:    environ.Process(),
		logger: logx.Discard(),
		closer: internal.NewCloser(),
	}
	if len(configFlag) > 0 {
		cfg, err := config.ApplyFile(configFlag, s.env)
		if err != nil {
			return nil, errors.New(err)
		}
		s.cfg = cfg
	}
	logFile := s.cfg.Log.File
	if len(logFileFlag) > 0 {
		logFile = logFileFlag
	}
	if len(logFile) > 0 {
		logger, cleanup, err := logx.OpenFile(logFile, debugFlag || s.cfg.Log.Debug)
		if err != nil {
			return nil, err
		}
		s.logger = logger
		s.closer.OnClose(cleanup)
		logx.Debug(`logger initialized`, s, `path`, logFile)
	}
	return s, nil
}

type sessionFunc func(cmd *cobra.Command, s *session) error

func run(cmd *cobra.Command, fn sessionFunc) {
	os.Exit(execute(cmd, fn))
}

// execute runs fn and returns the process exit code.
func execute(cmd *cobra.Command, fn sessionFunc) (exitCode int) {
	stderr := cmd.ErrOrStderr()
	var s *session
	defer func() {
		if r := recover(); r != nil {
			exitCode = 1
			if !silentFlag {
				if stackFramer, ok := r.(interface{ ErrorStack() string }); ok {
					fmt.Fprintln(stderr, "\n"+stackFramer.ErrorStack())
				} else {
					fmt.Fprintln(stderr, r)
					debug.PrintStack()
				}
			}
		}
		if err := s.Close(); err != nil && exitCode == 0 {
			report(stderr, err)
			exitCode = 1
		}
	}()
	if fn == nil {
		report(stderr, errors.NilParam())
		return 1
	}
	if len(cpuProfileFlag) > 0 && cpuProfilefunc != nil {
		if stop := cpuProfilefunc(cpuProfileFlag); stop != nil {
			defer stop()
		}
	}
	s, err := newSession()
	if err == nil {
		err = fn(cmd, s)
	}
	if err != nil {
		logx.IsErr(err, s, slog.LevelError)
		report(stderr, err)
		return 1
	}
	return 0
}

func report(w io.Writer, err error) {
	if silentFlag || err == nil {
		return
	}
	if debugFlag {
		fmt.Fprintln(w, errors.ErrorStack(err))
		return
	}
	fmt.Fprintln(w, err.Error())
}
