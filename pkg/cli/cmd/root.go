// Package cmd 实现dag-engine的各个CLI子命令。
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/LENAX/dag-engine/pkg/core/task"
)

var (
	// 全局参数
	configPath string
	outputJSON bool

	// registry 由main注入，内置函数之外的任务函数也注册在这里
	registry task.FunctionRegistry
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "dag-engine",
	Short: "DAG Engine CLI - DAG工作流调度引擎命令行工具",
	Long: `DAG Engine CLI 是一个基于有向无环图的工作流调度工具。

支持的功能：
  - 校验YAML工作流配置
  - 本地执行一次Workflow
  - 启动HTTP API服务（含定时调度与事件推送）

使用示例：
  # 校验配置文件
  dag-engine validate -c workflows.yaml

  # 执行Workflow
  dag-engine run -c workflows.yaml etl-daily

  # 启动HTTP服务
  dag-engine server -c workflows.yaml --port 8080`,
}

// Execute 执行根命令
func Execute(reg task.FunctionRegistry) {
	registry = reg
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "工作流配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&outputJSON, "json", "j", false, "使用JSON格式输出")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(versionCmd)
}
