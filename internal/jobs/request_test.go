package jobs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djlord-it/checkerhub/internal/domain"
)

func sampleJob() domain.CheckerJob {
	return domain.CheckerJob{
		CheckerName:         "orders-nulls",
		DB:                  "sales",
		Table:               "orders",
		Checkers:            `["nulls","duplicates"]`,
		FiltrationCondition: "dt >= '2024-01-01'",
		DuplicationColumns:  `["id"]`,
		NullColumns:         `["amount"]`,
		Actuality:           `{"column":"dt","days":1}`,
	}
}

func sampleSettings() Settings {
	return Settings{
		NotebookPath: "/Repos/dq/checker",
		ClusterID:    "0115-093000-abcd1234",
		Timezone:     "Europe/London",
	}
}

func TestBuildCreateRequest_WireShape(t *testing.T) {
	req := BuildCreateRequest(sampleJob(), "0 30 9 ? * Mon,Wed", sampleSettings())

	raw, err := json.Marshal(req)
	require.NoError(t, err)

	want := `{
		"name": "orders-nulls",
		"tasks": [{
			"task_key": "orders-nulls",
			"notebook_task": {
				"notebook_path": "/Repos/dq/checker",
				"base_parameters": {
					"db": "sales",
					"table": "orders",
					"checkers": "[\"nulls\",\"duplicates\"]",
					"filtration_condition": "dt >= '2024-01-01'",
					"columns_duplication": "[\"id\"]",
					"columns_nulls": "[\"amount\"]",
					"actuality": "{\"column\":\"dt\",\"days\":1}"
				},
				"source": "WORKSPACE"
			},
			"existing_cluster_id": "0115-093000-abcd1234"
		}],
		"schedule": {
			"quartz_cron_expression": "0 30 9 ? * Mon,Wed",
			"timezone_id": "Europe/London"
		},
		"max_concurrent_runs": 1,
		"format": "MULTI_TASK"
	}`
	assert.JSONEq(t, want, string(raw))
}

func TestBuildCreateRequest_EmptyFieldsStillSent(t *testing.T) {
	req := BuildCreateRequest(domain.CheckerJob{CheckerName: "c"}, "0 0 * * * ?", sampleSettings())

	raw, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	params := decoded["tasks"].([]any)[0].(map[string]any)["notebook_task"].(map[string]any)["base_parameters"].(map[string]any)
	for _, key := range []string{"db", "table", "checkers", "filtration_condition", "columns_duplication", "columns_nulls", "actuality"} {
		assert.Contains(t, params, key)
		assert.Equal(t, "", params[key], key)
	}
}
