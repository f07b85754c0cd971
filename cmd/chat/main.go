package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/liuscraft/airline-agent/internal/agent"
	"github.com/liuscraft/airline-agent/internal/config"
	"github.com/liuscraft/airline-agent/internal/llm"
	"github.com/liuscraft/airline-agent/internal/logging"
)

// chatter 对话接口，测试中替换
type chatter interface {
	ChatResponse(ctx context.Context, message string) (string, error)
}

func main() {
	configPath := flag.String("config", config.DefaultPath, "config file path (.json or .toml)")
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

	chatAgent := agent.NewChatAgent(agent.Config{
		Model:         chatModel,
		ToolTimeout:   appConfig.Agent.ToolTimeout.Std(),
		MaxToolRounds: appConfig.Agent.MaxToolRounds,
	})
	if err := chatAgent.Initialize(ctx); err != nil {
		logging.Fatalf("Failed to initialize agent: %v", err)
	}
	defer chatAgent.Reset()

	if err := run(ctx, os.Stdin, os.Stdout, chatAgent); err != nil {
		logging.Errorf("Chat loop stopped: %v", err)
		logging.Sync()
		os.Exit(1)
	}
}

// run 逐行读取输入，遇到 exit / quit 或输入结束时退出
func run(ctx context.Context, in io.Reader, out io.Writer, chat chatter) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "User: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "exit" || line == "quit" {
			return nil
		}

		reply, err := chat.ChatResponse(ctx, line)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Agent: ", reply)
	}
}
