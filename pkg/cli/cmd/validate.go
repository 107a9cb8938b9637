package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LENAX/dag-engine/pkg/cli/output"
	"github.com/LENAX/dag-engine/pkg/config"
	"github.com/LENAX/dag-engine/pkg/core/engine"
)

// validateCmd 校验配置文件
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "校验工作流配置文件",
	Long:  `解析并校验YAML配置，同时对每个workflow构图检测环。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			output.Error("%v", err)
			return err
		}

		// 仅靠Validate不够，还要真正构图冻结才能发现环
		eng := engine.NewEngine(registry)
		defer eng.Close()
		if err := eng.LoadConfig(cfg); err != nil {
			output.Error("配置无效: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(cfg)
		}

		output.Success("配置有效: %d个job, %d个workflow", len(cfg.Jobs), len(cfg.Workflows))
		table := output.NewTable("WORKFLOW_ID", "TASKS", "CRON", "DESCRIPTION")
		for _, wf := range cfg.Workflows {
			cron := wf.Cron
			if cron == "" {
				cron = "-"
			}
			table.AddRow(wf.WorkflowID, fmt.Sprintf("%d", len(wf.Tasks)), cron, wf.Description)
		}
		table.Render()
		return nil
	},
}

func loadConfig() (*config.Config, error) {
	if strings.TrimSpace(configPath) == "" {
		return nil, fmt.Errorf("请通过 -c 指定配置文件")
	}
	return config.Load(configPath)
}
