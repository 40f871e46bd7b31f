package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srlehn/wlconn/wayland"
)

func init() {
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "print the compositor socket without connecting",
	Long:  "print the compositor socket named by the environment without connecting",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, resolveFunc)
	},
}

func resolveFunc(cmd *cobra.Command, s *session) error {
	ep, err := wayland.ResolveEndpoint(s.env)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	switch ep.Kind {
	case wayland.EndpointFD:
		fmt.Fprintf(w, "kind: %s\nfd: %d\n", ep.Kind, ep.FD)
	default:
		fmt.Fprintf(w, "kind: %s\ndisplay: %s\npath: %s\n", ep.Kind, ep.Display, ep.Path)
	}
	return nil
}
