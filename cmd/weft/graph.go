package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/internal/cli"
	"github.com/weftlabs/weft/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <workflow.flow.json>",
	Short: "Export the workflow graph visualization",
	Long:  `Reads a workflow file and outputs a Mermaid diagram (graph TD) of its trigger and data edges.`,
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

		fmt.Print(graph.GenerateMermaid(wf, engine.Registry(), nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
