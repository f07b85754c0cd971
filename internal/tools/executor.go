package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/liuscraft/airline-agent/internal/logging"
)

const DefaultTimeout = 2 * time.Second

// Status 单次工具调用的结果类型
type Status int

const (
	StatusOK Status = iota
	StatusTimedOut
	StatusFaulted
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusTimedOut:
		return "TimedOut"
	case StatusFaulted:
		return "Faulted"
	default:
		return "Unknown"
	}
}

// Outcome 工具调用结果
type Outcome struct {
	Call   schema.ToolCall
	Status Status
	Result string
	Err    error
}

// Reportable 超时或没有结果的调用不回传给模型
func (o Outcome) Reportable() bool {
	switch o.Status {
	case StatusFaulted:
		return true
	case StatusOK:
		return hasResult(o.Result)
	default:
		return false
	}
}

// Content 作为 tool 消息内容
func (o Outcome) Content() string {
	if o.Status == StatusFaulted {
		return fmt.Sprintf("error: %v", o.Err)
	}
	return o.Result
}

func hasResult(result string) bool {
	trimmed := strings.TrimSpace(result)
	return trimmed != "" && trimmed != "null"
}

// Executor 带超时的工具执行器
type Executor struct {
	registry *Registry
	timeout  time.Duration
}

func NewExecutor(registry *Registry, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{registry: registry, timeout: timeout}
}

func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// ExecuteAll 并发执行，结果顺序与 calls 一致；单个失败不影响其他调用
func (e *Executor) ExecuteAll(ctx context.Context, calls []schema.ToolCall) []Outcome {
	outcomes := make([]Outcome, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call schema.ToolCall) {
			defer wg.Done()
			outcomes[i] = e.Execute(ctx, call)
		}(i, call)
	}
	wg.Wait()
	return outcomes
}

func (e *Executor) Execute(ctx context.Context, call schema.ToolCall) Outcome {
	name := call.Function.Name
	logging.Debugf("[Tool] executing %s args=%s", name, call.Function.Arguments)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("tool %s panicked: %v", name, r)}
			}
		}()
		out, err := e.registry.Invoke(callCtx, name, call.Function.Arguments)
		done <- result{out: out, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			if errors.Is(r.err, context.DeadlineExceeded) {
				logging.Errorf("[Tool] %s timed out after %v", name, e.timeout)
				return Outcome{Call: call, Status: StatusTimedOut, Err: ErrToolTimeout}
			}
			logging.Errorf("[Tool] error executing %s: %v", name, r.err)
			return Outcome{Call: call, Status: StatusFaulted, Err: r.err}
		}
		logging.Debugf("[Tool] %s -> %s", name, r.out)
		return Outcome{Call: call, Status: StatusOK, Result: r.out}
	case <-callCtx.Done():
		logging.Errorf("[Tool] %s timed out after %v", name, e.timeout)
		return Outcome{Call: call, Status: StatusTimedOut, Err: fmt.Errorf("%w: %s", ErrToolTimeout, name)}
	}
}

// Reportable 过滤掉不需要回传的调用
func Reportable(outcomes []Outcome) []Outcome {
	kept := make([]Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Reportable() {
			kept = append(kept, o)
		}
	}
	return kept
}
