package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/internal/cli"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <workflow.flow.json>",
	Short: "Check a workflow file for problems",
	Long:  `Verifies structural integrity (node ids, edge endpoints) and required fields against the known node kinds, including discovered plugins.`,
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

		wf, err := cli.LoadWorkflowFile(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		problems := cli.ValidateWorkflow(wf, engine.Registry())
		if len(problems) == 0 {
			fmt.Printf("%s is valid (%d nodes, %d edges)\n", args[0], len(wf.Nodes), len(wf.Edges))
			return
		}
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
