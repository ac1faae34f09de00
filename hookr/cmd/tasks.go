package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/hookr/datarecording"
	"github.com/sarchlab/hookr/tracing"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks [recording]",
	Short: "List the dispatches recorded by trace.",
	Long: "`tasks [recording] [--hook H] [--errors]` prints the dispatch " +
		"tasks stored in a SQLite recording, oldest first.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		hookName, _ := cmd.Flags().GetString("hook")
		failedOnly, _ := cmd.Flags().GetBool("errors")
		limit, _ := cmd.Flags().GetInt("limit")

		filename := args[0]
		if !strings.HasSuffix(filename, ".sqlite3") {
			filename += ".sqlite3"
		}

		reader, err := datarecording.NewReader(filename)
		if err != nil {
			fatalf("Error opening recording: %v", err)
		}
		defer reader.Close()

		err = listTasks(os.Stdout, reader,
			taskFilter(hookName, failedOnly, limit))
		if err != nil {
			fatalf("Error reading tasks: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(tasksCmd)

	tasksCmd.Flags().String("hook", "", "Only list the raises of this hook.")
	tasksCmd.Flags().Bool("errors", false, "Only list failed raises.")
	tasksCmd.Flags().Int("limit", 0, "The maximum number of tasks to list.")
}

func taskFilter(hook string, failedOnly bool, limit int) datarecording.Filter {
	var (
		conds []string
		args  []any
	)

	if hook != "" {
		conds = append(conds, "What = ?")
		args = append(args, hook)
	}

	if failedOnly {
		conds = append(conds, "Error != ''")
	}

	return datarecording.Filter{
		Where:   strings.Join(conds, " AND "),
		Args:    args,
		OrderBy: "StartTime",
		Limit:   limit,
	}
}

func listTasks(
	w io.Writer,
	reader *datarecording.Reader,
	filter datarecording.Filter,
) error {
	tasks, err := datarecording.ReadTable[tracing.TaskTableEntry](
		context.Background(), reader, tracing.TaskTableName, filter)
	if err != nil {
		return err
	}

	for _, t := range tasks {
		fmt.Fprintf(w, "%s %s %s.%s callbacks=%d %.6fs",
			t.ID, t.Kind, t.Location, t.What, t.NumSteps,
			t.EndTime-t.StartTime)

		if t.ParentID != "" {
			fmt.Fprintf(w, " parent=%s", t.ParentID)
		}

		if t.Error != "" {
			fmt.Fprintf(w, " error=%q", t.Error)
		}

		fmt.Fprintln(w)
	}

	return nil
}
