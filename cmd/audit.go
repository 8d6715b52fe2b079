package cmd

import (
	"fmt"

	"faucetd/config"

	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Dump the write-through claim audit trail",
	Long:  "Prints every claim audit row from storage in insertion order. These rows are written at claim time, independently of state snapshots.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFaucetConfig(configPath)
		if err != nil {
			return err
		}

		st, err := openFaucetStore(cfg)
		if err != nil {
			return err
		}
		defer st.MustClose()

		records, err := st.ListClaimRecords()
		if err != nil {
			return err
		}

		for i, r := range records {
			fmt.Printf("%6d  %s  %d\n", i, r.Address, r.Amount)
		}
		fmt.Printf("%d claim(s) total\n", len(records))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
