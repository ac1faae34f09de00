package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sarchlab/hookr/hooking"
	"github.com/sarchlab/hookr/monitoring"
	"github.com/sarchlab/hookr/tracing"
)

var benchCmd = &cobra.Command{
	Use:   "bench [manifest] [args...]",
	Short: "Measure the dispatch time of a hook.",
	Long: "`bench [manifest] --type T --hook H -n N [args...]` raises H " +
		"N times on an entity of type T and reports the average time.",
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		typeName, _ := cmd.Flags().GetString("type")
		hookName, _ := cmd.Flags().GetString("hook")
		n, _ := cmd.Flags().GetUint64("n")
		withMonitor, _ := cmd.Flags().GetBool("monitor")
		port, _ := cmd.Flags().GetInt("port")
		openBrowser, _ := cmd.Flags().GetBool("browser")

		_, types := mustBuild(args[0])
		entity := mustCreateEntity(types, typeName)
		eventArgs := parseArgs(args[1:])

		_, err := entity.AddListener(entity.Type().NoopListener(),
			hooking.WithHandle("hookr_bench"))
		if err != nil {
			fatalf("Error adding listener: %v", err)
		}

		tracer := tracing.NewAverageTimeTracer(tracing.WallClock{},
			tracing.HookFilter(hookName))
		tracing.CollectTrace(entity, tracer)

		monitor := monitoring.NewMonitor()
		monitor.RegisterType(entity.Type())
		monitor.RegisterEntity(entity)

		if withMonitor {
			if port != 0 {
				monitor.WithPortNumber(port)
			}

			if openBrowser {
				monitor.WithBrowser()
			}

			monitor.StartServer()
		}

		bar := monitor.CreateProgressBar(hookName, n)
		defer monitor.CompleteProgressBar(bar)

		for i := uint64(0); i < n; i++ {
			bar.IncrementInProgress(1)

			monitor.Dispatch(func() {
				err = entity.Raise(hookName, eventArgs...)
			})

			if err != nil {
				fatalf("Error raising %s: %v", hookName, err)
			}

			bar.MoveInProgressToFinished(1)
		}

		fmt.Printf("%s: %d raises, average %v, total %v\n",
			hookName, tracer.TotalCount(), tracer.AverageTime(),
			tracer.TotalTime())
	},
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().String("type", "", "The type of the entity.")
	benchCmd.Flags().String("hook", "", "The hook to raise.")
	benchCmd.Flags().Uint64P("n", "n", 1000, "The number of raises.")
	benchCmd.Flags().Bool("monitor", false,
		"Serve the monitoring API while the benchmark runs.")
	benchCmd.Flags().Bool("browser", false,
		"Open the monitoring API in a web browser.")
	benchCmd.Flags().Int("port", monitorPortFromEnv(),
		"The monitoring port. Defaults to $"+envMonitorPort+".")

	_ = benchCmd.MarkFlagRequired("type")
	_ = benchCmd.MarkFlagRequired("hook")
}

func monitorPortFromEnv() int {
	port, err := strconv.Atoi(envOr(envMonitorPort, "0"))
	if err != nil {
		return 0
	}

	return port
}
