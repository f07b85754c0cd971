package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/liuscraft/airline-agent/internal/logging"
	"github.com/liuscraft/airline-agent/internal/tools"
)

// Orchestrator 一轮对话的控制循环：流式补全 → 工具调用 → 再次补全，直到得到文本回复
type Orchestrator struct {
	chatModel     model.ToolCallingChatModel
	executor      *tools.Executor
	conversation  *Conversation
	maxToolRounds int
	state         turnStateMachine
}

func newOrchestrator(chatModel model.ToolCallingChatModel, executor *tools.Executor, conversation *Conversation, maxToolRounds int) *Orchestrator {
	return &Orchestrator{
		chatModel:     chatModel,
		executor:      executor,
		conversation:  conversation,
		maxToolRounds: maxToolRounds,
	}
}

func (o *Orchestrator) State() TurnState {
	return o.state.current
}

// Respond 处理一条用户输入。返回空字符串表示模型没有给出回复；
// 工具错误不会返回，补全服务的错误会原样向上返回
func (o *Orchestrator) Respond(ctx context.Context, userText string) (string, error) {
	o.conversation.Append(schema.UserMessage(userText))
	o.enter(StateStreamingResponse)

	for round := 0; ; round++ {
		text, calls, err := o.collect(ctx)
		if err != nil {
			o.state.abort()
			return "", err
		}

		if text != "" {
			if len(calls) > 0 {
				logging.Debugf("[Agent] text reply received, dropping %d tool calls from the same stream", len(calls))
			}
			o.conversation.Append(schema.AssistantMessage(text, nil))
			o.enter(StateDone)
			return text, nil
		}

		if len(calls) == 0 {
			break
		}
		if o.maxToolRounds > 0 && round >= o.maxToolRounds {
			logging.Errorf("[Agent] tool round limit %d reached", o.maxToolRounds)
			break
		}

		o.enter(StateExecutingTools)
		outcomes := tools.Reportable(o.executor.ExecuteAll(ctx, calls))
		if len(outcomes) == 0 {
			break
		}
		o.appendToolOutcomes(outcomes)
		o.enter(StateStreamingResponse)
	}

	logging.Errorf("[Agent] unable to respond")
	o.enter(StateAwaitingUser)
	return "", nil
}

func (o *Orchestrator) enter(to TurnState) {
	from := o.state.current
	if !o.state.transition(to) {
		logging.Warnf("[Agent] invalid state transition %s -> %s", from, to)
		o.state.current = to
	}
}

// collect 读完整个流，再决定是文本回复还是工具调用
func (o *Orchestrator) collect(ctx context.Context) (string, []schema.ToolCall, error) {
	stream, err := o.chatModel.Stream(ctx, o.conversation.Messages())
	if err != nil {
		return "", nil, fmt.Errorf("stream completion: %w", err)
	}
	defer stream.Close()

	var buf strings.Builder
	var toolChunks []*schema.Message
	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("receive completion chunk: %w", err)
		}
		if msg == nil {
			continue
		}
		if msg.Content != "" {
			buf.WriteString(msg.Content)
		}
		if len(msg.ToolCalls) > 0 {
			toolChunks = append(toolChunks, &schema.Message{Role: schema.Assistant, ToolCalls: msg.ToolCalls})
		}
	}

	calls, err := mergeToolCalls(toolChunks)
	if err != nil {
		return "", nil, err
	}
	return buf.String(), calls, nil
}

// mergeToolCalls 按 index 合并分片的工具调用
func mergeToolCalls(chunks []*schema.Message) ([]schema.ToolCall, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	merged, err := schema.ConcatMessages(chunks)
	if err != nil {
		return nil, fmt.Errorf("merge tool call chunks: %w", err)
	}

	calls := make([]schema.ToolCall, 0, len(merged.ToolCalls))
	for _, tc := range merged.ToolCalls {
		if tc.Function.Name == "" {
			logging.Warnf("[Agent] skipping tool call without name: %+v", tc)
			continue
		}
		if tc.ID == "" {
			tc.ID = "call_" + uuid.NewString()
		}
		if tc.Type == "" {
			tc.Type = "function"
		}
		calls = append(calls, tc)
	}
	return calls, nil
}

// appendToolOutcomes 先写入一条列出所有调用的 assistant 消息，再逐个写入 tool 结果
func (o *Orchestrator) appendToolOutcomes(outcomes []tools.Outcome) {
	requests := make([]schema.ToolCall, 0, len(outcomes))
	for _, oc := range outcomes {
		requests = append(requests, oc.Call)
	}
	o.conversation.Append(schema.AssistantMessage("", requests))

	for _, oc := range outcomes {
		logging.Debugf("[Agent] tool %s (%s) -> %s", oc.Call.Function.Name, oc.Status, oc.Content())
		o.conversation.Append(schema.ToolMessage(oc.Content(), oc.Call.ID, schema.WithToolName(oc.Call.Function.Name)))
	}
}
