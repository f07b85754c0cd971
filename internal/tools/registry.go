package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// Variant 一个可调用的工具：名称、参数声明和处理函数
type Variant struct {
	Name    string
	Info    *schema.ToolInfo
	Handler tool.InvokableTool
}

// NewVariant 从 eino 工具读取声明信息
func NewVariant(ctx context.Context, handler tool.InvokableTool) (Variant, error) {
	info, err := handler.Info(ctx)
	if err != nil {
		return Variant{}, fmt.Errorf("read tool info: %w", err)
	}
	if info == nil || info.Name == "" {
		return Variant{}, errors.New("tool info has no name")
	}
	return Variant{Name: info.Name, Info: info, Handler: handler}, nil
}

// Registry 固定的工具集合，按名称分发
type Registry struct {
	variants []Variant
	index    map[string]int
}

func NewRegistry(variants ...Variant) (*Registry, error) {
	r := &Registry{
		variants: make([]Variant, 0, len(variants)),
		index:    make(map[string]int, len(variants)),
	}
	for _, v := range variants {
		if _, dup := r.index[v.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", v.Name)
		}
		r.index[v.Name] = len(r.variants)
		r.variants = append(r.variants, v)
	}
	return r, nil
}

// Infos 返回传给模型的工具声明，顺序与注册顺序一致
func (r *Registry) Infos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(r.variants))
	for _, v := range r.variants {
		infos = append(infos, v.Info)
	}
	return infos
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.variants))
	for _, v := range r.variants {
		names = append(names, v.Name)
	}
	return names
}

func (r *Registry) Lookup(name string) (Variant, bool) {
	i, ok := r.index[name]
	if !ok {
		return Variant{}, false
	}
	return r.variants[i], true
}

// Invoke 按名称执行工具，arguments 为 JSON
func (r *Registry) Invoke(ctx context.Context, name, arguments string) (string, error) {
	v, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return v.Handler.InvokableRun(ctx, arguments)
}

var (
	ErrToolNotFound = errors.New("tool not found")
	ErrToolTimeout  = errors.New("tool timed out")
)
