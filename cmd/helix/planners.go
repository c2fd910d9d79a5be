package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var plannersCmd = &cobra.Command{
	Use:   "planners",
	Short: "List registered planners with their admission state",
	RunE:  runPlanners,
}

func init() {
	rootCmd.AddCommand(plannersCmd)
}

func runPlanners(cmd *cobra.Command, args []string) error {
	f, _, err := newEngine()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	f.Discover(ctx)

	snaps := f.Snapshots()
	if len(snaps) == 0 {
		fmt.Println("no planners registered")
		return nil
	}

	fmt.Printf("%-16s %-12s %-14s %-14s %-12s %s\n",
		"NAME", "TIER", "ADMISSION", "SELF-TEST", "RELIABILITY", "CAPABILITIES")
	for _, s := range snaps {
		fmt.Printf("%-16s %-12s %-14s %-14s %-12.2f %s\n",
			s.Record.Name,
			s.Record.Tier,
			s.Admission,
			s.SelfTest,
			s.Reliability,
			strings.Join(s.Record.Capabilities, ","))
		if s.QuarantineReason != "" {
			fmt.Printf("  reason: %s\n", s.QuarantineReason)
		}
	}
	return nil
}
