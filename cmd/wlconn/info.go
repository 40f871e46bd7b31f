package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srlehn/wlconn/internal/util"
	"github.com/srlehn/wlconn/wm"
	"github.com/srlehn/wlconn/wm/wmimpl"
)

func init() {
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "list display server properties",
	Long:  "connect to the display server of the session (Wayland, X11 as fallback) and list its properties",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, infoFunc)
	},
}

func infoFunc(cmd *cobra.Command, s *session) error {
	if wm.Impl() == nil {
		wm.SetImpl(wmimpl.ImplWithLogger(s.logger))
	}
	conn, err := wm.NewConn(s.env)
	if err != nil {
		return err
	}
	s.closer.AddClosers(conn)
	res, err := conn.Resources()
	if err != nil {
		return err
	}
	props := res.ExportProperties()
	w := cmd.OutOrStdout()
	for _, k := range util.MapsKeysSorted(props) {
		fmt.Fprintf(w, "%s: %s\n", k, props[k])
	}
	return nil
}
