// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package tools holds the sandboxed tool gateway: the registry that maps
// operation names to implementations, and the file/directory/script
// components it dispatches to. Every failure is rendered into the same text
// channel as success, prefixed with "Error:"; no fault ever propagates to
// the caller as a raised error.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	apperrors "toolfence/internal/errors"
	"toolfence/internal/paths"
)

// Options configures a registry at construction time. Constants like the
// read cap and the script timeout are injected here rather than read from
// ambient globals, so tests can vary them per case.
type Options struct {
	// Root is the outer sandbox boundary. Caller-supplied working
	// directories are validated against it before being used as the inner
	// root of any operation. Defaults to the process working directory.
	Root string

	Limits      Limits
	Timeouts    TimeoutConfig
	Interpreter string
}

// Policy configures which tools may run. Deny wins over Allow; a non-nil
// Allow map acts as a whitelist.
type Policy struct {
	Allow map[string]bool
	Deny  map[string]bool
}

// ToolResult represents the outcome of one tool dispatch. Result always
// carries the caller-facing text; Error is the structured form for
// programmatic inspection. Summary is the one-line log entry in the shape
// the agent loop records.
type ToolResult struct {
	Function string
	Result   string
	Error    error
	Summary  string
}

// Registry holds all available tools with their implementations.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	policy Policy
	logger zerolog.Logger

	root        string
	limits      Limits
	timeouts    TimeoutConfig
	interpreter string
}

// NewRegistry creates a registry with all built-in tools allowed.
func NewRegistry(opts Options) (*Registry, error) {
	return NewRegistryWithPolicy(opts, Policy{})
}

// NewRegistryWithPolicy creates a registry with the provided policy. The
// outer root is resolved once here; it must exist.
func NewRegistryWithPolicy(opts Options, policy Policy) (*Registry, error) {
	rootDir := opts.Root
	if rootDir == "" {
		rootDir = "."
	}
	root, err := paths.ResolveRoot(rootDir)
	if err != nil {
		return nil, fmt.Errorf("invalid sandbox root: %w", err)
	}

	interpreter := opts.Interpreter
	if interpreter == "" {
		interpreter = DefaultInterpreter
	}
	timeouts := opts.Timeouts
	if timeouts.Default == 0 && timeouts.PerTool == nil {
		timeouts = DefaultTimeoutConfig()
	}

	r := &Registry{
		tools:       make(map[string]Tool),
		policy:      policy,
		logger:      zerolog.Nop(),
		root:        root,
		limits:      normalizeLimits(opts.Limits),
		timeouts:    timeouts,
		interpreter: interpreter,
	}
	registerBuiltInTools(r)
	return r, nil
}

// SetLogger installs a logger for dispatch tracing.
func (r *Registry) SetLogger(logger zerolog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Root returns the resolved outer sandbox boundary.
func (r *Registry) Root() string {
	return r.root
}

// RegisterTool adds a tool to the registry.
func (r *Registry) RegisterTool(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.Name()]; exists {
		return fmt.Errorf("tool %q already registered", tool.Name())
	}
	r.tools[tool.Name()] = tool
	return nil
}

// GetToolNames returns all tool names, sorted.
func (r *Registry) GetToolNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenAITools exports the registry as OpenAI tool definitions, in a
// deterministic order.
func (r *Registry) OpenAITools() []openai.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]openai.Tool, 0, len(names))
	for _, name := range names {
		tool := r.tools[name]
		defs = append(defs, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name(),
				Description: tool.Description(),
				Parameters:  tool.Parameters(),
			},
		})
	}
	return defs
}

// Execute runs the named tool. The returned result always carries renderable
// text; a panic inside a component degrades to an error string instead of
// crashing the session.
func (r *Registry) Execute(ctx context.Context, function string, args map[string]interface{}) (result *ToolResult) {
	start := time.Now()
	result = &ToolResult{Function: function}

	defer func() {
		if p := recover(); p != nil {
			err := apperrors.Newf(apperrors.CodeExecution, "Tool %q failed: %v", function, p)
			result.Error = err
			result.Result = renderError(err)
		}
		if result.Error != nil {
			result.Summary = fmt.Sprintf("TOOL_CALL %s FAILED: %v", function, result.Error)
		} else {
			result.Summary = fmt.Sprintf("TOOL_CALL %s ARGS %v", function, args)
		}
		r.logger.Debug().
			Str("tool", function).
			Dur("duration", time.Since(start)).
			Bool("failed", result.Error != nil).
			Msg("tool dispatched")
	}()

	tool, ok := r.getTool(function)
	if !ok {
		err := apperrors.Newf(apperrors.CodeUnknownTool, "Unknown tool %q.", function)
		result.Error = err
		result.Result = renderError(err)
		return result
	}

	if err := r.checkPolicy(function); err != nil {
		result.Error = err
		result.Result = renderError(err)
		return result
	}

	if err := tool.Validate(args); err != nil {
		verr := apperrors.New(apperrors.CodeValidation, err.Error())
		result.Error = verr
		result.Result = renderError(verr)
		return result
	}

	payload, err := tool.Execute(ctx, args)
	if err != nil {
		result.Error = err
		result.Result = renderError(err)
		return result
	}
	result.Result = payload
	return result
}

// ExecuteToolCall executes an OpenAI tool call payload, decoding its JSON
// arguments first. Malformed argument JSON becomes an error string, never a
// fault.
func (r *Registry) ExecuteToolCall(ctx context.Context, call openai.ToolCall) *ToolResult {
	name := call.Function.Name
	if name == "" {
		err := apperrors.New(apperrors.CodeValidation, "Tool call is missing a function name.")
		return &ToolResult{
			Function: "unknown_tool",
			Result:   renderError(err),
			Error:    err,
			Summary:  fmt.Sprintf("TOOL_CALL unknown_tool FAILED: %v", err),
		}
	}

	args, err := parseToolArgs(call.Function.Arguments)
	if err != nil {
		perr := apperrors.Newf(apperrors.CodeValidation,
			"Could not parse arguments for tool %q: %v", name, err)
		return &ToolResult{
			Function: name,
			Result:   renderError(perr),
			Error:    perr,
			Summary:  fmt.Sprintf("TOOL_CALL %s FAILED: invalid arguments %q", name, call.Function.Arguments),
		}
	}

	return r.Execute(ctx, name, args)
}

func (r *Registry) checkPolicy(name string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.policy.Deny[name] {
		return apperrors.Newf(apperrors.CodePermission, "Tool %q is disabled by policy.", name)
	}
	if r.policy.Allow != nil && !r.policy.Allow[name] {
		return apperrors.Newf(apperrors.CodePermission, "Tool %q is disabled by policy.", name)
	}
	return nil
}

func (r *Registry) getTool(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// renderError folds any component error into the uniform text channel.
// Callers distinguish success from failure by prefix inspection alone.
func renderError(err error) string {
	return "Error: " + err.Error()
}
