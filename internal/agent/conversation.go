package agent

import (
	"github.com/cloudwego/eino/schema"
)

// ChatContext 对话上下文的只读视图
type ChatContext interface {
	Len() int
	At(i int) *schema.Message
	Messages() []*schema.Message
}

// Conversation 按时间顺序追加的消息序列，第一条总是 system 消息
type Conversation struct {
	messages []*schema.Message
}

func NewConversation(systemPrompt string) *Conversation {
	return &Conversation{
		messages: []*schema.Message{schema.SystemMessage(systemPrompt)},
	}
}

func (c *Conversation) Append(msgs ...*schema.Message) {
	for _, msg := range msgs {
		if msg == nil {
			continue
		}
		c.messages = append(c.messages, cloneMessage(msg))
	}
}

func (c *Conversation) Len() int {
	return len(c.messages)
}

// At 返回副本，越界返回 nil
func (c *Conversation) At(i int) *schema.Message {
	if i < 0 || i >= len(c.messages) {
		return nil
	}
	return cloneMessage(c.messages[i])
}

func (c *Conversation) Messages() []*schema.Message {
	out := make([]*schema.Message, len(c.messages))
	for i, msg := range c.messages {
		out[i] = cloneMessage(msg)
	}
	return out
}

func (c *Conversation) Last() *schema.Message {
	return c.At(len(c.messages) - 1)
}

func cloneMessage(msg *schema.Message) *schema.Message {
	cp := *msg
	if msg.ToolCalls != nil {
		cp.ToolCalls = make([]schema.ToolCall, len(msg.ToolCalls))
		copy(cp.ToolCalls, msg.ToolCalls)
	}
	return &cp
}

type contextView struct {
	conv *Conversation
}

func (v contextView) Len() int { return v.conv.Len() }
func (v contextView) At(i int) *schema.Message { return v.conv.At(i) }
func (v contextView) Messages() []*schema.Message { return v.conv.Messages() }
