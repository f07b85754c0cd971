package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// scriptedModel 每次 Stream 按顺序返回预设的分片
type scriptedModel struct {
	mu        sync.Mutex
	streams   [][]*schema.Message
	streamErr error
	recvErr   error
	inputs    [][]*schema.Message
	tools     []*schema.ToolInfo
}

func newScriptedModel(streams ...[]*schema.Message) *scriptedModel {
	return &scriptedModel{streams: streams}
}

func (m *scriptedModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	return nil, errors.New("generate not supported")
}

func (m *scriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.inputs = append(m.inputs, input)
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	if m.recvErr != nil {
		sr, sw := schema.Pipe[*schema.Message](2)
		sw.Send(schema.AssistantMessage("partial", nil), nil)
		sw.Send(nil, m.recvErr)
		sw.Close()
		return sr, nil
	}

	var chunks []*schema.Message
	if len(m.streams) > 0 {
		chunks = m.streams[0]
		m.streams = m.streams[1:]
	}
	return schema.StreamReaderFromArray(chunks), nil
}

func (m *scriptedModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tools = tools
	return m, nil
}

func (m *scriptedModel) streamCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

func textChunks(parts ...string) []*schema.Message {
	chunks := make([]*schema.Message, 0, len(parts))
	for _, p := range parts {
		chunks = append(chunks, schema.AssistantMessage(p, nil))
	}
	return chunks
}

func toolCallChunk(id, name, args string) *schema.Message {
	return schema.AssistantMessage("", []schema.ToolCall{{
		ID:       id,
		Type:     "function",
		Function: schema.FunctionCall{Name: name, Arguments: args},
	}})
}

// airlineModel 根据上下文给出固定反应的模型，用于端到端测试
type airlineModel struct {
	tools []*schema.ToolInfo
}

func (m *airlineModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	return nil, errors.New("generate not supported")
}

func (m *airlineModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	last := input[len(input)-1]
	switch {
	case last.Role == schema.Tool:
		var booking struct {
			FlightNumber string `json:"flight_number"`
		}
		if err := json.Unmarshal([]byte(last.Content), &booking); err != nil {
			return nil, err
		}
		return schema.StreamReaderFromArray(textChunks("Your flight number is ", "**"+booking.FlightNumber+"**", ".")), nil
	case last.Role == schema.User && strings.Contains(last.Content, "booking number is 123"):
		idx := 0
		return schema.StreamReaderFromArray([]*schema.Message{
			schema.AssistantMessage("", []schema.ToolCall{{Index: &idx, ID: "call_1", Type: "function", Function: schema.FunctionCall{Name: "get_booking_info"}}}),
			schema.AssistantMessage("", []schema.ToolCall{{Index: &idx, Function: schema.FunctionCall{Arguments: `{"booking_`}}}),
			schema.AssistantMessage("", []schema.ToolCall{{Index: &idx, Function: schema.FunctionCall{Arguments: `number":"123"}`}}}),
		}), nil
	default:
		return schema.StreamReaderFromArray(textChunks("Hello! How can I assist you ", "with your airline inquiries today?")), nil
	}
}

func (m *airlineModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	m.tools = tools
	return m, nil
}
