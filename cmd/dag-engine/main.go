package main

import (
	"log"

	"github.com/LENAX/dag-engine/pkg/cli/cmd"
	"github.com/LENAX/dag-engine/pkg/core/task"
)

func main() {
	registry := task.NewRegistry()
	if err := task.RegisterBuiltins(registry); err != nil {
		log.Fatalf("注册内置函数失败: %v", err)
	}
	cmd.Execute(registry)
}
