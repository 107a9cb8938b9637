package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/LENAX/dag-engine/pkg/cli/output"
	"github.com/LENAX/dag-engine/pkg/core/engine"
	"github.com/LENAX/dag-engine/pkg/storage"
	"github.com/LENAX/dag-engine/pkg/storage/sqlite"
)

var (
	runParams []string
	runDBPath string
)

// runCmd 本地执行一次workflow
var runCmd = &cobra.Command{
	Use:   "run <workflow-id>",
	Short: "执行一次Workflow",
	Long:  `加载配置文件并同步执行指定的workflow，执行结束后打印运行结果。`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workflowID := args[0]
		cfg, err := loadConfig()
		if err != nil {
			output.Error("%v", err)
			return err
		}

		params, err := parseParams(runParams)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		opts := []engine.Option{}
		if runDBPath != "" {
			repo, db, err := sqlite.NewRunRepo(runDBPath)
			if err != nil {
				output.Error("打开运行历史数据库失败: %v", err)
				return err
			}
			defer db.Close()
			opts = append(opts, engine.WithRunRepository(repo))
		}

		eng := engine.NewEngine(registry, opts...)
		defer eng.Close()
		if err := eng.LoadConfig(cfg); err != nil {
			output.Error("加载配置失败: %v", err)
			return err
		}

		start := time.Now()
		record, runErr := eng.RunWorkflow(context.Background(), workflowID, params)
		if record == nil {
			output.Error("%v", runErr)
			return runErr
		}

		if outputJSON {
			if err := output.PrintJSON(record); err != nil {
				return err
			}
			return runErr
		}

		duration := time.Since(start).Round(time.Millisecond)
		switch record.Status {
		case storage.StatusSucceeded:
			output.Success("执行成功: run=%s, 耗时%s", record.RunID, duration)
		default:
			output.Error("执行失败: run=%s, 节点=%s, 耗时%s", record.RunID, record.FailedNode, duration)
			output.Error("%s", record.Error)
		}
		return runErr
	},
}

// parseParams 解析 key=value 形式的运行参数
func parseParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("参数格式无效: %s, 应为key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}

func init() {
	runCmd.Flags().StringArrayVarP(&runParams, "param", "p", nil, "运行参数，key=value，可重复")
	runCmd.Flags().StringVar(&runDBPath, "db", "", "SQLite运行历史数据库路径（默认不记录）")
}
