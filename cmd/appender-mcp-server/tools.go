package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"file-appender/internal/event"
	"file-appender/internal/runtime"
)

// AppendTextParams параметры для добавления строки
type AppendTextParams struct {
	AgentID string `json:"agent_id" mcp:"id of the file appender agent"`
	Text    string `json:"text" mcp:"text to append as a new line (may contain newlines)"`
}

// AgentStatusParams параметры для запроса состояния агента
type AgentStatusParams struct {
	AgentID string `json:"agent_id" mcp:"id of the file appender agent"`
}

type runner interface {
	Deliver(ctx context.Context, agentID string, events []event.Event) error
	Status(ctx context.Context, agentID string) (runtime.Status, error)
}

// AppenderTools отдает агентов как MCP инструменты
type AppenderTools struct {
	runner runner
}

func registerTools(server *mcp.Server, t *AppenderTools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "append_text",
		Description: "Appends text as a new line to the remote file of a file appender agent",
	}, t.AppendText)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "agent_status",
		Description: "Reports whether a file appender agent is working",
	}, t.AgentStatus)
}

// AppendText доставляет одно событие агенту
func (t *AppenderTools) AppendText(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[AppendTextParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	if args.AgentID == "" {
		return errorResult("agent_id is required"), nil
	}

	ev := event.New(map[string]any{"text": args.Text, "source": "mcp"})
	log.Printf("📝 MCP append_text for %s, event %s", args.AgentID, ev.ID)

	if err := t.runner.Deliver(ctx, args.AgentID, []event.Event{ev}); err != nil {
		return errorResult(fmt.Sprintf("❌ Append failed: %v", err)), nil
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("✅ Appended %d bytes via agent %s (event %s)", len(args.Text), args.AgentID, ev.ID)},
		},
	}, nil
}

// AgentStatus возвращает состояние агента в JSON
func (t *AppenderTools) AgentStatus(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[AgentStatusParams]) (*mcp.CallToolResultFor[any], error) {
	st, err := t.runner.Status(ctx, params.Arguments.AgentID)
	if err != nil {
		return errorResult(fmt.Sprintf("❌ Status failed: %v", err)), nil
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

func errorResult(msg string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
