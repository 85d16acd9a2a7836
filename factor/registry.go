/*
- @Author: aztec
- @Date: 2024-02-06 09:41:20
- @Description: 因子注册表。因子名 -> 构造函数
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package factor

import (
	"fmt"
	"slices"
)

type Builder func(cfg Config) (Factor, error)

type Registry struct {
	builders map[string]Builder
	metas    map[string]Meta
}

func NewRegistry() *Registry {
	return &Registry{builders: map[string]Builder{}, metas: map[string]Meta{}}
}

// 注册因子。重名直接panic，注册发生在初始化阶段
func (r *Registry) Register(name string, b Builder) {
	if _, ok := r.builders[name]; ok {
		panic(fmt.Sprintf("factor %s registered twice", name))
	}
	r.builders[name] = b
	if f, err := b(Config{}); err == nil {
		r.metas[name] = f.Meta()
	}
}

func (r *Registry) New(name string, cfg Config) (Factor, error) {
	b, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown factor %q", name)
	}
	f, err := b(cfg)
	if err != nil {
		return nil, fmt.Errorf("build factor %s: %w", name, err)
	}
	return f, nil
}

func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// 已注册的因子名（升序）
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for n := range r.builders {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// 默认参数下的元信息
func (r *Registry) Meta(name string) (Meta, bool) {
	m, ok := r.metas[name]
	return m, ok
}
