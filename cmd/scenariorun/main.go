// Command scenariorun is the CLI front-end described in SPEC_FULL.md §6: it
// compiles a scenario file once, then feeds it either a single input given
// as a second argument or newline-delimited JSON from standard input, one
// invocation per line.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	scenarioengine "github.com/BDNK1/scenarioengine"
	"github.com/BDNK1/scenarioengine/engine"
)

var rootCmd = &cobra.Command{
	Use:   "scenariorun <scenario.json> [input]",
	Short: "Compile a scenario graph and run input through it",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  run,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	scenarioPath := args[0]

	interp, err := scenarioengine.CreateInterpreter(scenarioPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	ctx := context.Background()

	if len(args) == 2 {
		return invokeLine(ctx, interp, args[1], cmd.OutOrStdout())
	}

	scanner := bufio.NewScanner(os.Stdin)
	exitNonZero := false
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := invokeLine(ctx, interp, line, cmd.OutOrStdout()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			exitNonZero = true
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if exitNonZero {
		return fmt.Errorf("one or more invocations failed")
	}
	return nil
}

func invokeLine(ctx context.Context, interp engine.Interpreter, input string, out io.Writer) error {
	output, err := scenarioengine.Invoke(ctx, interp, input)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(out, string(encoded))
	return err
}
