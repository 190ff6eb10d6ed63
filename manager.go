package dispatch

import (
	"context"
	"fmt"
	"sync/atomic"
)

// RegistrationState tracks the one-way lifecycle of the command tree.
// Transitions are monotonic: once the first execution or suggestion pass
// freezes the tree, registration is closed for good.
type RegistrationState int32

const (
	BeforeRegistration RegistrationState = iota
	Registering
	AfterRegistration
)

func (s RegistrationState) String() string {
	switch s {
	case BeforeRegistration:
		return "before-registration"
	case Registering:
		return "registering"
	case AfterRegistration:
		return "after-registration"
	default:
		return "unknown"
	}
}

// RegistrationHandler is notified of inserts and deletes so a host can
// mirror registration into a native command system. Returning false from
// CommandRegistered blocks the registration.
type RegistrationHandler[C any] interface {
	CommandRegistered(cmd *Command[C]) bool
	CommandUnregistered(cmd *Command[C])
}

// Manager owns the command tree, the execution coordinator, and the parser
// registry, and exposes the execute and suggest entry points.
type Manager[C any] struct {
	tree        *Tree[C]
	coordinator *ExecutionCoordinator[C]
	registry    *ParserRegistry[C]

	checker                        PermissionChecker[C]
	regHandler                     RegistrationHandler[C]
	suggestionFilter               SuggestionFilter
	enforceIntermediaryPermissions bool
	runtimeRegistration            bool

	state atomic.Int32
}

// Option configures a Manager at construction time.
type Option[C any] func(m *Manager[C])

// WithPermissionChecker supplies the host's leaf permission resolver.
func WithPermissionChecker[C any](checker PermissionChecker[C]) Option[C] {
	return func(m *Manager[C]) { m.checker = checker }
}

// WithRegistrationHandler installs the host's registration mirror.
func WithRegistrationHandler[C any](h RegistrationHandler[C]) Option[C] {
	return func(m *Manager[C]) { m.regHandler = h }
}

// WithSuggestionFilter replaces the default prefix filter for literal and
// flag suggestions.
func WithSuggestionFilter[C any](f SuggestionFilter) Option[C] {
	return func(m *Manager[C]) { m.suggestionFilter = f }
}

// WithIntermediaryPermissionEnforcement makes permission denials
// indistinguishable from unknown commands, so senders cannot probe for
// gated command names.
func WithIntermediaryPermissionEnforcement[C any]() Option[C] {
	return func(m *Manager[C]) { m.enforceIntermediaryPermissions = true }
}

// WithRuntimeRegistration permits inserting commands after the tree has
// served its first invocation. Concurrent registration and parsing is still
// unsupported; the host must quiesce invocations around late inserts.
func WithRuntimeRegistration[C any]() Option[C] {
	return func(m *Manager[C]) { m.runtimeRegistration = true }
}

// WithParsingExecutor sets the executor the parse stage runs on.
func WithParsingExecutor[C any](e Executor) Option[C] {
	return func(m *Manager[C]) { m.coordinator.parsingExecutor = e }
}

// WithSuggestionExecutor sets the executor suggestion passes run on.
func WithSuggestionExecutor[C any](e Executor) Option[C] {
	return func(m *Manager[C]) { m.coordinator.suggestionExecutor = e }
}

// WithExecutionExecutor sets the executor handlers run on.
func WithExecutionExecutor[C any](e Executor) Option[C] {
	return func(m *Manager[C]) { m.coordinator.executionExecutor = e }
}

// WithSynchronizedExecution serializes all handler executions across
// concurrent invocations sharing this manager, at the cost of serializing
// unrelated commands.
func WithSynchronizedExecution[C any]() Option[C] {
	return func(m *Manager[C]) {
		m.coordinator.synchronize = true
		m.coordinator.permits = make(chan struct{}, 1)
	}
}

// WithPostprocessor appends a hook run after successful parse and before
// handler execution.
func WithPostprocessor[C any](pp Postprocessor[C]) Option[C] {
	return func(m *Manager[C]) {
		m.coordinator.postprocessors = append(m.coordinator.postprocessors, pp)
	}
}

// NewManager builds a manager with direct (calling-goroutine) executors and
// prefix-filtered suggestions unless options say otherwise.
func NewManager[C any](opts ...Option[C]) *Manager[C] {
	m := &Manager[C]{
		coordinator: newCoordinator[C](),
		registry:    NewParserRegistry[C](),
	}
	m.tree = newTree(m)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Tree exposes the command tree for read-only introspection, e.g. help
// rendering.
func (m *Manager[C]) Tree() *Tree[C] { return m.tree }

// ParserRegistry returns the manager's named parser registry.
func (m *Manager[C]) ParserRegistry() *ParserRegistry[C] { return m.registry }

// State returns the current registration state.
func (m *Manager[C]) State() RegistrationState {
	return RegistrationState(m.state.Load())
}

// Register builds the command and inserts it.
func (m *Manager[C]) Register(b *CommandBuilder[C]) error {
	cmd, err := b.Build()
	if err != nil {
		return err
	}
	return m.InsertCommand(cmd)
}

// InsertCommand adds a fully built command to the tree. It fails when the
// registration state forbids it, when the registration handler vetoes it,
// or when the component chain is ambiguous against an existing sibling set.
func (m *Manager[C]) InsertCommand(cmd *Command[C]) error {
	if !m.transitionToRegistering() {
		return fmt.Errorf("%w: tree is %s", ErrRegistrationClosed, m.State())
	}
	if m.regHandler != nil && !m.regHandler.CommandRegistered(cmd) {
		return &RegistrationError{Command: cmd.Name(), Reason: "blocked by registration handler"}
	}
	return m.tree.insert(cmd)
}

// DeleteCommand removes a command and every tree node exclusively reachable
// through it, then notifies the registration handler.
func (m *Manager[C]) DeleteCommand(cmd *Command[C]) error {
	if err := m.tree.delete(cmd); err != nil {
		return err
	}
	if m.regHandler != nil {
		m.regHandler.CommandUnregistered(cmd)
	}
	return nil
}

// ExecuteCommand parses and executes raw input for a sender, delivering
// exactly one result on the returned channel. The first call freezes
// registration.
func (m *Manager[C]) ExecuteCommand(ctx context.Context, sender C, input string) <-chan ExecutionResult[C] {
	m.freezeRegistration()
	cctx := NewContext(ctx, sender, input, false)
	return m.coordinator.CoordinateExecution(m.tree, cctx, NewInput(input))
}

// Execute is the blocking convenience form of ExecuteCommand.
func (m *Manager[C]) Execute(ctx context.Context, sender C, input string) ExecutionResult[C] {
	return <-m.ExecuteCommand(ctx, sender, input)
}

// SuggestAsync produces completion candidates for partially typed input,
// delivering the list on the returned channel.
func (m *Manager[C]) SuggestAsync(ctx context.Context, sender C, input string) <-chan []Suggestion {
	m.freezeRegistration()
	cctx := NewContext(ctx, sender, input, true)
	return m.coordinator.CoordinateSuggestions(m.tree, cctx, NewInput(input))
}

// Suggest is the blocking convenience form of SuggestAsync.
func (m *Manager[C]) Suggest(ctx context.Context, sender C, input string) []Suggestion {
	return <-m.SuggestAsync(ctx, sender, input)
}

// HasPermission evaluates a composed permission for a sender.
func (m *Manager[C]) HasPermission(sender C, p Permission) bool {
	return m.hasPermission(sender, p)
}

func (m *Manager[C]) hasPermission(sender C, p Permission) bool {
	return hasPermission(sender, p, m.checker)
}

// transitionToRegistering moves BeforeRegistration → Registering, or keeps
// an existing Registering state. After the freeze it succeeds only when
// runtime registration was opted into.
func (m *Manager[C]) transitionToRegistering() bool {
	for {
		switch RegistrationState(m.state.Load()) {
		case Registering:
			return true
		case BeforeRegistration:
			if m.state.CompareAndSwap(int32(BeforeRegistration), int32(Registering)) {
				return true
			}
		case AfterRegistration:
			return m.runtimeRegistration
		}
	}
}

func (m *Manager[C]) freezeRegistration() {
	for {
		s := m.state.Load()
		if RegistrationState(s) == AfterRegistration {
			return
		}
		if m.state.CompareAndSwap(s, int32(AfterRegistration)) {
			return
		}
	}
}
