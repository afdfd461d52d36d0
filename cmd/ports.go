package main

import (
	"fmt"

	"launch_control/internal/transport"

	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports to find the igniter board",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ports, err := transport.ListPorts()
		if err != nil {
			return fmt.Errorf("list serial ports: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(ports) == 0 {
			fmt.Fprintln(out, "no serial ports found")
			return nil
		}
		for _, p := range ports {
			fmt.Fprintln(out, p.String())
		}
		return nil
	},
}
