package tools

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/openai/openai-go"
)

// Notifier is the outbound notification sink consumed by the built-in
// tools. Delivery is best-effort; errors never cross this boundary.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Dispatcher executes tool invocations requested by the model. Handlers
// are registered at construction; an invocation naming an unregistered
// tool resolves to an empty result rather than an error, since tool
// catalogs may evolve independently of the registered handlers.
type Dispatcher struct {
	tools  map[string]*Tool
	order  []string
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher with the two built-in tools
// registered against the given notification sink.
func NewDispatcher(sink Notifier, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{tools: make(map[string]*Tool), logger: logger}
	d.register(recordUserDetailsTool(sink, logger))
	d.register(recordUnknownQuestionTool(sink, logger))
	return d
}

func (d *Dispatcher) register(t *Tool) {
	d.tools[t.Name()] = t
	d.order = append(d.order, t.Name())
}

// Catalog returns the tool definitions advertised to the model, in
// registration order.
func (d *Dispatcher) Catalog() []openai.ChatCompletionToolParam {
	defs := make([]openai.ChatCompletionToolParam, 0, len(d.order))
	for _, name := range d.order {
		defs = append(defs, d.tools[name].Definition())
	}
	return defs
}

// Dispatch executes one tool call synchronously and returns the tool
// message to reinject into the transcript, tagged with the call's
// correlation id. Dispatch never fails the conversation: unknown tools
// yield an empty object and handler errors become structured results.
func (d *Dispatcher) Dispatch(ctx context.Context, call openai.ChatCompletionMessageToolCall) openai.ChatCompletionMessageParamUnion {
	name := call.Function.Name
	d.logger.Info("tool called", "tool", name, "call_id", call.ID)

	tool, ok := d.tools[name]
	if !ok {
		d.logger.Warn("unknown tool requested", "tool", name)
		return openai.ToolMessage("{}", call.ID)
	}

	result, err := tool.run(ctx, json.RawMessage(call.Function.Arguments))
	if err != nil {
		d.logger.Warn("tool execution failed", "tool", name, "error", err)
		result = ToolError{ErrorType: "InvalidArguments", Message: err.Error()}
	}

	content, err := json.Marshal(result)
	if err != nil {
		d.logger.Error("tool result not serializable", "tool", name, "error", err)
		content = []byte("{}")
	}
	return openai.ToolMessage(string(content), call.ID)
}
