package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/gorilla/websocket"
	"github.com/liuscraft/airline-agent/internal/agent"
	"github.com/liuscraft/airline-agent/internal/config"
	"github.com/liuscraft/airline-agent/internal/llm"
	"github.com/liuscraft/airline-agent/internal/logging"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "config file path (.json or .toml)")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	appConfig, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := appConfig.ValidateKeys(true); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Init(logging.Config{
		Level:  appConfig.Logging.Level,
		Format: appConfig.Logging.Format,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	logging.SetTraceID(logging.NewTraceID())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	chatModel, err := llm.NewChatModel(ctx, llm.Config{
		APIKey:  appConfig.LLM.APIKey,
		BaseURL: appConfig.LLM.BaseURL,
		Model:   appConfig.LLM.Model,
	})
	if err != nil {
		logging.Fatalf("Failed to create chat model: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/chat", newChatHandler(agentFactory(chatModel, appConfig.Agent)))

	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logging.Infof("Chat server listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Fatalf("Server error: %v", err)
	}
}

// agentFactory 每个连接一个独立的 ChatAgent
func agentFactory(chatModel model.ToolCallingChatModel, cfg config.AgentConfig) func() *agent.ChatAgent {
	return func() *agent.ChatAgent {
		return agent.NewChatAgent(agent.Config{
			Model:         chatModel,
			ToolTimeout:   cfg.ToolTimeout.Std(),
			MaxToolRounds: cfg.MaxToolRounds,
		})
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// newChatHandler 每条文本帧是一次用户输入，回复以文本帧返回
func newChatHandler(newAgent func() *agent.ChatAgent) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Warnf("[Server] upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		ctx := r.Context()
		chatAgent := newAgent()
		if err := chatAgent.Initialize(ctx); err != nil {
			logging.Errorf("[Server] initialize agent: %v", err)
			closeWith(conn, websocket.CloseInternalServerErr, "agent unavailable")
			return
		}
		defer chatAgent.Reset()
		logging.Infof("[Server] conversation started from %s", r.RemoteAddr)

		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logging.Warnf("[Server] read: %v", err)
				}
				return
			}
			if msgType != websocket.TextMessage {
				continue
			}

			reply, err := chatAgent.ChatResponse(ctx, string(data))
			if err != nil {
				logging.Errorf("[Server] chat response: %v", err)
				closeWith(conn, websocket.CloseInternalServerErr, "completion failed")
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
				logging.Warnf("[Server] write: %v", err)
				return
			}
		}
	})
}

func closeWith(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
