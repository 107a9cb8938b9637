package task

import (
	"fmt"
	"regexp"
)

var placeholderPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ExpandParams 把静态参数中的 ${key} 占位符替换为运行参数的值（对外导出）
//
// 返回替换后的新map，static本身不被修改，同一个workflow可以反复执行。
// 任何占位符找不到对应的运行参数时返回错误，错误里列出全部未解析的
// 占位符名称
func ExpandParams(static map[string]string, runParams map[string]string) (map[string]string, error) {
	expanded := make(map[string]string, len(static))
	var unresolved []string
	for key, value := range static {
		expanded[key] = placeholderPattern.ReplaceAllStringFunc(value, func(match string) string {
			name := match[2 : len(match)-1]
			actual, ok := runParams[name]
			if !ok {
				unresolved = append(unresolved, name)
				return match
			}
			return actual
		})
	}
	if len(unresolved) > 0 {
		return nil, fmt.Errorf("以下占位符未找到对应的参数值: %v", unresolved)
	}
	return expanded, nil
}
