package task

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os/exec"
	"time"
)

// RegisterBuiltins 注册内置任务函数（对外导出）
//
// 内置函数让纯配置驱动的工作流无需编写Go代码即可运行：
//
//	builtin.log    打印message参数
//	builtin.sleep  休眠duration参数指定的时长，如"500ms"
//	builtin.shell  通过sh -c执行cmd参数
//	builtin.http_get  请求url参数，响应体写入结果区
func RegisterBuiltins(reg FunctionRegistry) error {
	builtins := map[string]Func{
		"builtin.log":      builtinLog,
		"builtin.sleep":    builtinSleep,
		"builtin.shell":    builtinShell,
		"builtin.http_get": builtinHTTPGet,
	}
	for key, fn := range builtins {
		if err := reg.Register(key, fn); err != nil {
			return err
		}
	}
	return nil
}

func builtinLog(tc *TaskContext, params map[string]string) error {
	log.Printf("[Task] run=%s message=%s", tc.RunID, params["message"])
	return nil
}

func builtinSleep(_ *TaskContext, params map[string]string) error {
	d, err := time.ParseDuration(params["duration"])
	if err != nil {
		return fmt.Errorf("duration参数无效: %w", err)
	}
	time.Sleep(d)
	return nil
}

func builtinShell(_ *TaskContext, params map[string]string) error {
	command := params["cmd"]
	if command == "" {
		return fmt.Errorf("缺少cmd参数")
	}
	out, err := exec.Command("sh", "-c", command).CombinedOutput()
	if err != nil {
		return fmt.Errorf("命令执行失败: %v, 输出: %s", err, out)
	}
	return nil
}

func builtinHTTPGet(tc *TaskContext, params map[string]string) error {
	url := params["url"]
	if url == "" {
		return fmt.Errorf("缺少url参数")
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("请求失败: %s 返回 %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}
	key := params["result_key"]
	if key == "" {
		key = url
	}
	tc.PutResult(key, string(body))
	return nil
}
