package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/LENAX/dag-engine/pkg/api"
	"github.com/LENAX/dag-engine/pkg/cli/output"
	"github.com/LENAX/dag-engine/pkg/core/engine"
	"github.com/LENAX/dag-engine/pkg/storage/sqlite"
)

var (
	serverHost   string
	serverPort   int
	serverDBPath string
	serverCron   bool
)

// serverCmd 启动HTTP API服务
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动HTTP API服务",
	Long:  `启动HTTP API服务，提供workflow管理、执行、运行历史查询与事件WebSocket推送。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := []engine.Option{}
		if serverDBPath != "" {
			repo, db, err := sqlite.NewRunRepo(serverDBPath)
			if err != nil {
				output.Error("打开运行历史数据库失败: %v", err)
				return err
			}
			defer db.Close()
			opts = append(opts, engine.WithRunRepository(repo))
		}

		eng := engine.NewEngine(registry, opts...)
		defer eng.Close()

		// 配置文件可选，也可以启动后通过API上传
		if configPath != "" {
			cfg, err := loadConfig()
			if err != nil {
				output.Error("%v", err)
				return err
			}
			if err := eng.LoadConfig(cfg); err != nil {
				output.Error("加载配置失败: %v", err)
				return err
			}
			log.Printf("[Server] 已加载%d个workflow", len(cfg.Workflows))

			if serverCron {
				for _, wf := range cfg.Workflows {
					if wf.Cron == "" {
						continue
					}
					if err := eng.Cron().RegisterWorkflow(wf.WorkflowID); err != nil {
						output.Error("注册定时workflow失败: %v", err)
						return err
					}
					log.Printf("[Server] 定时workflow已注册: %s (%s)", wf.WorkflowID, wf.Cron)
				}
				eng.Cron().Start()
			}
		}

		router := api.SetupRouter(eng, Version)
		server := &http.Server{
			Addr:         fmt.Sprintf("%s:%d", serverHost, serverPort),
			Handler:      router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()
		log.Printf("[Server] DAG Engine Server started on %s:%d", serverHost, serverPort)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-errCh:
			output.Error("服务器错误: %v", err)
			return err
		case <-quit:
		}

		log.Println("[Server] 正在关闭服务...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[Server] 关闭服务器失败: %v", err)
		}
		log.Println("[Server] 服务已停止")
		return nil
	},
}

func init() {
	serverCmd.Flags().StringVar(&serverHost, "host", "0.0.0.0", "监听地址")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "监听端口")
	serverCmd.Flags().StringVar(&serverDBPath, "db", "", "SQLite运行历史数据库路径（默认不记录）")
	serverCmd.Flags().BoolVar(&serverCron, "cron", true, "为带cron表达式的workflow启用定时调度")
}
