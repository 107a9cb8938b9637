package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/dag-engine/pkg/config"
)

const validYAML = `
jobs:
  - job_id: fetch
    func_key: fetch_page
    description: 抓取页面
  - job_id: parse
    func_key: parse_page

workflows:
  - workflow_id: daily_report
    description: 每日报表
    cron: "0 0 2 * * *"
    tasks:
      - task_id: fetch_home
        job_id: fetch
        params:
          url: "https://example.com"
      - task_id: parse_home
        job_id: parse
        dependencies: [fetch_home]
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflows.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Jobs, 2)
	assert.Equal(t, "fetch_page", cfg.GetJobByID("fetch").FuncKey)
	assert.Nil(t, cfg.GetJobByID("missing"))

	wf := cfg.GetWorkflowByID("daily_report")
	require.NotNil(t, wf)
	assert.Equal(t, "0 0 2 * * *", wf.Cron)
	require.Len(t, wf.Tasks, 2)
	assert.Equal(t, "https://example.com", wf.Tasks[0].Params["url"])
	assert.Equal(t, []string{"fetch_home"}, wf.Tasks[1].Dependencies)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := config.Parse([]byte("jobs: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "job缺少func_key",
			yaml: `
jobs:
  - job_id: fetch
workflows:
  - workflow_id: w
    tasks:
      - {task_id: a, job_id: fetch}
`,
			want: "缺少func_key",
		},
		{
			name: "job_id重复",
			yaml: `
jobs:
  - {job_id: fetch, func_key: f}
  - {job_id: fetch, func_key: g}
workflows:
  - workflow_id: w
    tasks:
      - {task_id: a, job_id: fetch}
`,
			want: "job_id重复",
		},
		{
			name: "引用未定义的job",
			yaml: `
jobs:
  - {job_id: fetch, func_key: f}
workflows:
  - workflow_id: w
    tasks:
      - {task_id: a, job_id: missing}
`,
			want: "未定义的job",
		},
		{
			name: "依赖未定义的task",
			yaml: `
jobs:
  - {job_id: fetch, func_key: f}
workflows:
  - workflow_id: w
    tasks:
      - {task_id: a, job_id: fetch, dependencies: [b]}
`,
			want: "未定义的task",
		},
		{
			name: "task依赖自身",
			yaml: `
jobs:
  - {job_id: fetch, func_key: f}
workflows:
  - workflow_id: w
    tasks:
      - {task_id: a, job_id: fetch, dependencies: [a]}
`,
			want: "依赖自身",
		},
		{
			name: "cron表达式无效",
			yaml: `
jobs:
  - {job_id: fetch, func_key: f}
workflows:
  - workflow_id: w
    cron: "not a cron"
    tasks:
      - {task_id: a, job_id: fetch}
`,
			want: "cron表达式无效",
		},
		{
			name: "workflow没有task",
			yaml: `
jobs:
  - {job_id: fetch, func_key: f}
workflows:
  - workflow_id: w
    tasks: []
`,
			want: "没有任何task",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := config.Parse([]byte(c.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.want)
		})
	}
}
