package agent

import "slices"

// TurnState 一轮对话的处理阶段
type TurnState int

const (
	StateAwaitingUser TurnState = iota
	StateStreamingResponse
	StateExecutingTools
	StateDone
)

func (s TurnState) String() string {
	switch s {
	case StateAwaitingUser:
		return "AWAITING_USER"
	case StateStreamingResponse:
		return "STREAMING_RESPONSE"
	case StateExecutingTools:
		return "EXECUTING_TOOLS"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

var validTransitions = map[TurnState][]TurnState{
	StateAwaitingUser:      {StateStreamingResponse},
	StateStreamingResponse: {StateDone, StateExecutingTools, StateAwaitingUser},
	StateExecutingTools:    {StateStreamingResponse, StateAwaitingUser},
	StateDone:              {StateStreamingResponse},
}

// turnStateMachine 状态机
type turnStateMachine struct {
	current TurnState
}

func (sm *turnStateMachine) canTransition(to TurnState) bool {
	validTo, ok := validTransitions[sm.current]
	if !ok {
		return false
	}
	return slices.Contains(validTo, to)
}

func (sm *turnStateMachine) transition(to TurnState) bool {
	if sm.canTransition(to) {
		sm.current = to
		return true
	}
	return false
}

// abort 出错时回到等待输入
func (sm *turnStateMachine) abort() {
	sm.current = StateAwaitingUser
}
