package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/hookr/datarecording"
	"github.com/sarchlab/hookr/hooking"
	"github.com/sarchlab/hookr/tracing"
)

var traceCmd = &cobra.Command{
	Use:   "trace [manifest] [args...]",
	Short: "Raise a hook on a fresh entity and trace the dispatch.",
	Long: "`trace [manifest] --type T --hook H [args...]` creates an entity " +
		"of type T, raises H with the given arguments, logs every callback, " +
		"and records the dispatch in a database.",
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		typeName, _ := cmd.Flags().GetString("type")
		hookName, _ := cmd.Flags().GetString("hook")
		around, _ := cmd.Flags().GetBool("around")
		db, _ := cmd.Flags().GetString("db")
		driver, _ := cmd.Flags().GetString("driver")

		_, types := mustBuild(args[0])
		entity := mustCreateEntity(types, typeName)
		recorder := mustOpenRecorder(driver, db)

		err := traceRaise(entity, recorder, hookName, around,
			parseArgs(args[1:]))
		if err != nil {
			fatalf("Error raising %s: %v", hookName, err)
		}
	},
}

// traceRaise raises the hook with the tracers and the logging listener
// attached. The recorded rows are flushed before it returns, whether the
// raise fails or not.
func traceRaise(
	entity *hooking.Entity,
	recorder datarecording.DataRecorder,
	hook string,
	around bool,
	args []any,
) error {
	execRecorder := datarecording.NewExecRecorder(recorder)
	execRecorder.Start()
	defer execRecorder.End()

	tracing.CollectTrace(entity,
		tracing.NewLogTracer(slog.Default(), tracing.WallClock{}, nil))
	tracing.CollectTrace(entity,
		tracing.NewDBTracer(tracing.WallClock{}, recorder))

	_, err := entity.AddListener(loggingListener(entity.Type()),
		hooking.WithHandle("hookr_trace"))
	if err != nil {
		return err
	}

	return raise(entity, hook, around, args)
}

func init() {
	rootCmd.AddCommand(traceCmd)

	traceCmd.Flags().String("type", "", "The type of the entity.")
	traceCmd.Flags().String("hook", "", "The hook to raise.")
	traceCmd.Flags().Bool("around", false,
		"Raise as a chain around a terminal that echoes the arguments.")
	traceCmd.Flags().String("db", os.Getenv(envDB),
		"The database to record the trace in. For sqlite3, the file name "+
			"without extension. Defaults to $"+envDB+".")
	traceCmd.Flags().String("driver", envOr(envDriver, "sqlite3"),
		"The database driver, sqlite3 or mysql. Defaults to $"+envDriver+".")

	_ = traceCmd.MarkFlagRequired("type")
	_ = traceCmd.MarkFlagRequired("hook")
}

func mustCreateEntity(
	types map[string]*hooking.Type,
	typeName string,
) *hooking.Entity {
	t, ok := types[typeName]
	if !ok {
		fatalf("Type %q is not declared", typeName)
	}

	return t.NewEntity(typeName+"_0", nil)
}

func mustOpenRecorder(driver, db string) datarecording.DataRecorder {
	if driver == "sqlite3" {
		return datarecording.New(db)
	}

	recorder, err := datarecording.Open(driver, db)
	if err != nil {
		fatalf("Error opening database: %v", err)
	}

	return recorder
}

// loggingListener logs the arguments of every hook of t.
func loggingListener(t *hooking.Type) hooking.HandlerTable {
	listener := t.NoopListener()

	for name := range listener {
		listener[name] = func(args ...any) error {
			slog.Info("hook raised", "hook", name, "args", args)
			return nil
		}
	}

	return listener
}

func raise(e *hooking.Entity, hook string, around bool, args []any) error {
	if !around {
		return e.Raise(hook, args...)
	}

	result, err := e.RaiseAround(hook, func(args ...any) (any, error) {
		return args, nil
	}, args...)
	if err != nil {
		return err
	}

	fmt.Printf("%v\n", result)

	return nil
}

// parseArgs decodes each argument as a YAML scalar, so that numbers and
// booleans reach the callbacks with their own types.
func parseArgs(raw []string) []any {
	args := make([]any, 0, len(raw))

	for _, r := range raw {
		var v any
		if err := yaml.Unmarshal([]byte(r), &v); err != nil || v == nil {
			v = r
		}

		args = append(args, v)
	}

	return args
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return fallback
}

// fatalf reports the error and exits through atexit, so that the recorders
// flush their buffered rows.
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	atexit.Exit(1)
}
