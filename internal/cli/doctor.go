package cli

import (
	"github.com/spf13/cobra"

	"github.com/ravik/cct/internal/doctor"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check external dependencies and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctor.Run(cfg)
	},
}
