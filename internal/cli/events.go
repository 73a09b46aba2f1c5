package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ravik/cct/internal/events"
)

var eventsLimit int

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent entries from the audit log",
	RunE: func(cmd *cobra.Command, args []string) error {
		recent, err := auditLog.Recent(eventsLimit)
		if err != nil {
			return err
		}
		if len(recent) == 0 {
			fmt.Println("No events recorded yet.")
			return nil
		}

		headerColor.Println("TIME                       TYPE            DETAIL")
		for _, e := range recent {
			fmt.Printf("%-26s %-15s %s\n", e.Time, e.Type, eventDetail(e))
		}
		return nil
	},
}

func eventDetail(e events.Event) string {
	switch {
	case e.Hook != "":
		return fmt.Sprintf("%s %s %s", e.Hook, e.Decision, truncateStr(e.Command, 50))
	case e.Target != "":
		return fmt.Sprintf("%s %s", e.Target, truncateStr(e.Command, 50))
	case e.Project != "":
		return fmt.Sprintf("%s %s", e.Project, e.Detail)
	}
	return e.Detail
}

func init() {
	eventsCmd.Flags().IntVarP(&eventsLimit, "num", "n", 20, "number of events to show")
}
