package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <workflow.flow.json>",
	Short: "Execute a workflow file",
	Long:  `Loads a .flow.json document, fires its entry nodes and waits for the trigger cascade to finish, then prints each node's outputs.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		engine, cleanup, err := cli.BuildEngine(cfg, newLogger(cfg))
		if err != nil {
			fmt.Printf("Error initializing weft: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		entry, _ := cmd.Flags().GetString("node")
		if err := cli.RunWorkflow(cmd.Context(), engine, args[0], entry, os.Stdout); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("node", "", "Run a specific node instead of the workflow entry points")
}
