package task

import (
	"fmt"
	"sync"
)

// FunctionRegistry 任务函数注册中心接口（对外导出）
// 配置文件中的func_key通过它解析为可执行的任务函数
type FunctionRegistry interface {
	// Register 注册函数，funcKey重复时返回错误
	Register(funcKey string, fn Func) error
	// Get 按funcKey查找函数
	Get(funcKey string) (Func, bool)
	// Keys 返回所有已注册的funcKey
	Keys() []string
}

// memoryRegistry 内存实现（小写，不导出）
type memoryRegistry struct {
	functions sync.Map // funcKey -> Func
}

// NewRegistry 创建内存FunctionRegistry（对外导出的工厂方法）
func NewRegistry() FunctionRegistry {
	return &memoryRegistry{}
}

// Register 实现FunctionRegistry接口
func (r *memoryRegistry) Register(funcKey string, fn Func) error {
	if funcKey == "" {
		return fmt.Errorf("funcKey不能为空")
	}
	if fn == nil {
		return fmt.Errorf("函数不能为空: %s", funcKey)
	}
	if _, loaded := r.functions.LoadOrStore(funcKey, fn); loaded {
		return fmt.Errorf("函数已注册: %s", funcKey)
	}
	return nil
}

// Get 实现FunctionRegistry接口
func (r *memoryRegistry) Get(funcKey string) (Func, bool) {
	v, ok := r.functions.Load(funcKey)
	if !ok {
		return nil, false
	}
	return v.(Func), true
}

// Keys 实现FunctionRegistry接口
func (r *memoryRegistry) Keys() []string {
	keys := make([]string, 0)
	r.functions.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	return keys
}
