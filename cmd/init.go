package cmd

import (
	"fmt"

	"faucetd/config"
	"faucetd/faucet"
	"faucetd/snapshot"

	"github.com/spf13/cobra"
)

var initSeedAdmins []string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the first faucet state snapshot",
	Long:  "Initializes a fresh faucet state with the configured seed admins and persists it. Fails if state already exists.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFaucetConfig(configPath)
		if err != nil {
			return err
		}

		seedAdmins := cfg.Faucet.SeedAdmins
		if len(initSeedAdmins) > 0 {
			seedAdmins = initSeedAdmins
		}

		st, err := openFaucetStore(cfg)
		if err != nil {
			return err
		}
		defer st.MustClose()

		has, err := st.HasState()
		if err != nil {
			return err
		}
		if has {
			return fmt.Errorf("faucet state already exists in %s", cfg.DataDir)
		}

		svc := faucet.NewService(st)
		if err := svc.Initialize(seedAdmins, deployDefaults(cfg)); err != nil {
			return err
		}

		mgr := snapshot.NewManager(svc, st)
		if err := mgr.Suspend(); err != nil {
			return err
		}

		fmt.Printf("Initialized faucet state in %s with %d admin(s)\n", cfg.DataDir, len(seedAdmins))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringSliceVar(&initSeedAdmins, "admin", []string{}, "Seed admin identity (base58), repeatable; overrides config seed admins")
}
