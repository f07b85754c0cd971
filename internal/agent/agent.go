package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/liuscraft/airline-agent/internal/logging"
	"github.com/liuscraft/airline-agent/internal/tools"
)

var ErrAgentNotInitialized = errors.New("agent is not initialized")

// Config ChatAgent 配置，全部由调用方显式传入
type Config struct {
	Model         model.ToolCallingChatModel
	Tools         *tools.Registry
	ToolTimeout   time.Duration
	MaxToolRounds int
	SystemPrompt  string
}

// ChatAgent 单个会话的客服 Agent，不支持并发调用
type ChatAgent struct {
	cfg          Config
	orchestrator *Orchestrator
}

func NewChatAgent(cfg Config) *ChatAgent {
	return &ChatAgent{cfg: cfg}
}

// Initialize 创建只包含 system 消息的上下文，并把工具声明绑定到模型
func (a *ChatAgent) Initialize(ctx context.Context) error {
	if a.cfg.Model == nil {
		return errors.New("chat model is required")
	}

	registry := a.cfg.Tools
	if registry == nil {
		registry = tools.NewAirlineRegistry()
	}
	prompt := a.cfg.SystemPrompt
	if prompt == "" {
		prompt = SystemPrompt()
	}
	logging.Infof("[Agent] system prompt: %s", prompt)

	chatModel, err := a.cfg.Model.WithTools(registry.Infos())
	if err != nil {
		return fmt.Errorf("bind tools: %w", err)
	}

	a.orchestrator = newOrchestrator(
		chatModel,
		tools.NewExecutor(registry, a.cfg.ToolTimeout),
		NewConversation(prompt),
		a.cfg.MaxToolRounds,
	)
	logging.Infof("[Agent] initialized with tools %v", registry.Names())
	return nil
}

// ChatResponse 处理一条用户输入，返回最终回复；空字符串表示没有回复
func (a *ChatAgent) ChatResponse(ctx context.Context, message string) (string, error) {
	if a.orchestrator == nil {
		return "", ErrAgentNotInitialized
	}
	logging.StartTurn()
	return a.orchestrator.Respond(ctx, message)
}

func (a *ChatAgent) Reset() {
	if a.orchestrator == nil {
		return
	}
	a.orchestrator.conversation = nil
	a.orchestrator = nil
}

func (a *ChatAgent) Orchestrator() (*Orchestrator, error) {
	if a.orchestrator == nil {
		return nil, ErrAgentNotInitialized
	}
	return a.orchestrator, nil
}

func (a *ChatAgent) ChatContext() (ChatContext, error) {
	if a.orchestrator == nil {
		return nil, ErrAgentNotInitialized
	}
	return contextView{conv: a.orchestrator.conversation}, nil
}

// Messages 上下文快照
func (a *ChatAgent) Messages() ([]*schema.Message, error) {
	if a.orchestrator == nil {
		return nil, ErrAgentNotInitialized
	}
	return a.orchestrator.conversation.Messages(), nil
}
