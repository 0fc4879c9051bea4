package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/tasktrack/internal/application/dto"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/task"
)

func newScheduleCmd(st *rootState) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print scheduled tasks and subtasks by start time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := st.openContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			items := c.GetTaskUseCase().GetPrioritizedTasks(ctx)
			return newPresenter(format, cmd.OutOrStdout()).
				PresentSuccess("Prioritized tasks", dto.ToTaskDTOs(items))
		},
	}
	cmd.Flags().StringVar(&format, "format", "cli", "output format: cli or json")
	return cmd
}

func newHistoryCmd(st *rootState) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recently viewed items, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := st.openContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			items := c.GetTaskUseCase().GetHistory(ctx)
			return newPresenter(format, cmd.OutOrStdout()).
				PresentSuccess("History", dto.ToTaskDTOs(items))
		},
	}
	cmd.Flags().StringVar(&format, "format", "cli", "output format: cli or json")
	return cmd
}

func newListCmd(st *rootState) *cobra.Command {
	var format, kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored items without touching the view history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter model.TaskType
			if kind != "" {
				t, err := model.ParseTaskType(kind)
				if err != nil {
					return err
				}
				filter = t
			}

			ctx := cmd.Context()
			c, err := st.openContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			uc := c.GetTaskUseCase()
			var items []task.Item
			if filter == "" || filter == model.TaskTypeTask {
				for _, t := range uc.ListTasks(ctx) {
					items = append(items, t)
				}
			}
			if filter == "" || filter == model.TaskTypeEpic {
				for _, e := range uc.ListEpics(ctx) {
					items = append(items, e)
				}
			}
			if filter == "" || filter == model.TaskTypeSubtask {
				for _, s := range uc.ListSubtasks(ctx) {
					items = append(items, s)
				}
			}
			return newPresenter(format, cmd.OutOrStdout()).
				PresentSuccess(fmt.Sprintf("%d items", len(items)), dto.ToTaskDTOs(items))
		},
	}
	cmd.Flags().StringVar(&format, "format", "cli", "output format: cli or json")
	cmd.Flags().StringVar(&kind, "type", "", "only TASK, EPIC or SUBTASK")
	return cmd
}
