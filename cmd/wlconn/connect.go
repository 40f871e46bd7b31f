package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/srlehn/wlconn/internal/logx"
	"github.com/srlehn/wlconn/wayland"
)

var (
	connectRoundtrip bool
	connectTimeout   time.Duration
)

func init() {
	connectCmd.Flags().BoolVarP(&connectRoundtrip, `roundtrip`, `r`, false, `wait for the compositor to answer a sync request before releasing`)
	connectCmd.Flags().DurationVarP(&connectTimeout, `timeout`, `t`, 0, `roundtrip timeout, overrides roundtrip_timeout of the settings file`)
	rootCmd.AddCommand(connectCmd)
}

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "connect to the compositor and release the connection",
	Long:  "connect to the compositor and release the connection. exits with status 1 if no compositor is available.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, connectFunc)
	},
}

func connectFunc(cmd *cobra.Command, s *session) error {
	conn, err := wayland.ConnectToEnv(
		wayland.SetEnviron(s.env),
		wayland.SetLogger(s.logger),
	)
	if err != nil {
		return err
	}
	defer conn.Close()

	if connectRoundtrip {
		timeout := connectTimeout
		if timeout == 0 {
			if timeout, err = s.cfg.Timeout(); err != nil {
				return err
			}
		}
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		if err := conn.Roundtrip(ctx); err != nil {
			return err
		}
	}
	logx.Info(`connected to compositor`, s, `endpoint`, conn.Endpoint().String())
	if !silentFlag {
		fmt.Fprintf(cmd.OutOrStdout(), "connected to %s\n", conn.Endpoint())
	}
	return conn.Close()
}
