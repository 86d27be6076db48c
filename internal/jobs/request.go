// Package jobs creates scheduled notebook jobs through the Databricks Jobs 2.1 API.
package jobs

import "github.com/djlord-it/checkerhub/internal/domain"

const (
	notebookSourceWorkspace = "WORKSPACE"
	formatMultiTask         = "MULTI_TASK"
	maxConcurrentRuns       = 1
)

// Settings are the workspace-wide parts of every job.
type Settings struct {
	NotebookPath string
	ClusterID    string
	Timezone     string
}

// CreateRequest is the body of POST /api/2.1/jobs/create.
type CreateRequest struct {
	Name              string   `json:"name"`
	Tasks             []Task   `json:"tasks"`
	Schedule          Schedule `json:"schedule"`
	MaxConcurrentRuns int      `json:"max_concurrent_runs"`
	Format            string   `json:"format"`
}

type Task struct {
	TaskKey           string       `json:"task_key"`
	NotebookTask      NotebookTask `json:"notebook_task"`
	ExistingClusterID string       `json:"existing_cluster_id"`
}

type NotebookTask struct {
	NotebookPath   string         `json:"notebook_path"`
	BaseParameters BaseParameters `json:"base_parameters"`
	Source         string         `json:"source"`
}

// BaseParameters are read by the checker notebook as widgets.
type BaseParameters struct {
	DB                  string `json:"db"`
	Table               string `json:"table"`
	Checkers            string `json:"checkers"`
	FiltrationCondition string `json:"filtration_condition"`
	ColumnsDuplication  string `json:"columns_duplication"`
	ColumnsNulls        string `json:"columns_nulls"`
	Actuality           string `json:"actuality"`
}

type Schedule struct {
	QuartzCronExpression string `json:"quartz_cron_expression"`
	TimezoneID           string `json:"timezone_id"`
}

// BuildCreateRequest assembles a single-task job that runs the checker
// notebook on the existing cluster at cronExpr.
func BuildCreateRequest(job domain.CheckerJob, cronExpr string, s Settings) CreateRequest {
	return CreateRequest{
		Name: job.CheckerName,
		Tasks: []Task{{
			TaskKey: job.CheckerName,
			NotebookTask: NotebookTask{
				NotebookPath: s.NotebookPath,
				BaseParameters: BaseParameters{
					DB:                  job.DB,
					Table:               job.Table,
					Checkers:            job.Checkers,
					FiltrationCondition: job.FiltrationCondition,
					ColumnsDuplication:  job.DuplicationColumns,
					ColumnsNulls:        job.NullColumns,
					Actuality:           job.Actuality,
				},
				Source: notebookSourceWorkspace,
			},
			ExistingClusterID: s.ClusterID,
		}},
		Schedule: Schedule{
			QuartzCronExpression: cronExpr,
			TimezoneID:           s.Timezone,
		},
		MaxConcurrentRuns: maxConcurrentRuns,
		Format:            formatMultiTask,
	}
}
