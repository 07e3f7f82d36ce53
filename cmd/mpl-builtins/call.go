package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mercator-hq/mpl-builtins/pkg/cli"
	"mercator-hq/mpl-builtins/pkg/mpl/ast"
	"mercator-hq/mpl-builtins/pkg/mpl/value"
	"mercator-hq/mpl-builtins/pkg/telemetry/logging"
)

// argsSource names the synthesized call in diagnostics.
const argsSource = "<args>"

var callFlags struct {
	strict   bool
	yamlArgs bool
	strings  bool
	format   string
}

var callCmd = &cobra.Command{
	Use:   "call <builtin> [arg...]",
	Short: "Call a builtin",
	Long: `Call one builtin and print its result.

Each argument is a JSON value. With --yaml-args arguments are YAML, and with
--strings each argument is taken as a plain string. Errors are reported
against the call as it would be written in a policy, e.g.
base64.decode("@@").

Examples:
  # Decode base64
  mpl-builtins call base64.decode '"aGVsbG8="'

  # Plain string arguments
  mpl-builtins call -s urlquery.decode_object 'a=1&b=2&a=3'

  # Validate against a schema, failing on a broken schema
  mpl-builtins call --strict json.match_schema '{"a": 1}' '{"type": "object"}'

  # Print the result as YAML
  mpl-builtins call -s json.unmarshal '{"a": [1, 2]}' --format yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().BoolVar(&callFlags.strict, "strict", false, "raise on schema compile failures (overrides builtins.strict)")
	callCmd.Flags().BoolVar(&callFlags.yamlArgs, "yaml-args", false, "parse arguments as YAML instead of JSON")
	callCmd.Flags().BoolVarP(&callFlags.strings, "strings", "s", false, "take every argument as a plain string")
	callCmd.Flags().StringVar(&callFlags.format, "format", "json", "result format: json, yaml")
}

func runCall(cmd *cobra.Command, args []string) error {
	name, rawArgs := args[0], args[1:]

	values, texts, err := parseCallArgs(rawArgs, callFlags.yamlArgs, callFlags.strings)
	if err != nil {
		return err
	}

	rt, err := newBuiltinRuntime(appConfig, appLogger)
	if err != nil {
		return cli.NewCommandError("call", err)
	}
	defer rt.Close(cmd.Context())

	strict := rt.dispatcher.Strict()
	if cmd.Flags().Changed("strict") {
		strict = callFlags.strict
	}

	ctx := logging.WithRequestID(cmd.Context(), uuid.NewString())
	call := ast.SynthesizeCall(argsSource, name, texts)
	result, err := rt.dispatcher.Call(ctx, name, call.Loc, call.Params, values, strict)
	if err != nil {
		return cli.NewCallError(name, err)
	}

	return writeValue(cmd.OutOrStdout(), result, callFlags.format)
}

// parseCallArgs converts command-line arguments to values. It also returns
// the source text of each argument as it appears in the synthesized call.
func parseCallArgs(args []string, yamlArgs, asStrings bool) ([]value.Value, []string, error) {
	values := make([]value.Value, len(args))
	texts := make([]string, len(args))

	for i, arg := range args {
		var (
			v   value.Value
			err error
		)
		switch {
		case asStrings:
			v = value.String(arg)
		case yamlArgs:
			v, err = value.FromYAML([]byte(arg))
		default:
			v, err = value.FromJSON([]byte(arg))
		}
		if err != nil {
			return nil, nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		values[i] = v

		if asStrings {
			texts[i] = strconv.Quote(arg)
		} else {
			texts[i] = arg
		}
	}

	return values, texts, nil
}

func writeValue(w io.Writer, v value.Value, format string) error {
	var (
		data []byte
		err  error
	)
	switch cli.OutputFormat(format) {
	case cli.FormatJSON, "":
		data, err = value.ToJSON(v)
		data = append(data, '\n')
	case cli.FormatYAML:
		data, err = value.ToYAML(v)
	default:
		return fmt.Errorf("unsupported result format %q (use json or yaml)", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = w.Write(data)
	return err
}
