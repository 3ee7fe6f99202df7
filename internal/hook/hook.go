// Package hook implements the priority-ordered hook chain described in spec
// section 4.8: extensions register handlers against named hook points, and
// the Executor walks the chain honoring CONTINUE/SKIP/ABORT/REPLACE/RETRY
// flow-control actions, enforcing a per-handler timeout for synchronous
// handlers the way the teacher's callback dispatch enforces synchronicity.
package hook

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Action is the flow-control verdict a handler returns.
type Action string

const (
	ActionContinue Action = "continue"
	ActionSkip     Action = "skip"
	ActionAbort    Action = "abort"
	ActionReplace  Action = "replace"
	ActionRetry    Action = "retry"
)

// Context carries the run/session/node identity and mutable metadata a
// handler can read and annotate, mirroring the original's HookContext.
type Context struct {
	HookName  string
	RunID     string
	SessionID string
	NodeID    string
	NodeName  string
	AgentName string
	Phase     string

	Metadata map[string]any
}

// Result is a handler's verdict plus any replacement data.
type Result struct {
	Action   Action
	Data     map[string]any // set when Action == ActionReplace
	Metadata map[string]any
	Err      error // set when Action == ActionAbort
}

func Continue() Result                   { return Result{Action: ActionContinue} }
func Skip() Result                       { return Result{Action: ActionSkip} }
func Abort(err error) Result             { return Result{Action: ActionAbort, Err: err} }
func Replace(data map[string]any) Result { return Result{Action: ActionReplace, Data: data} }
func Retry() Result                      { return Result{Action: ActionRetry} }

// Handler is a registered extension callback. Async is false for handlers
// that must run synchronously (the registry still dispatches every handler
// in its own goroutine under Timeout, mirroring the teacher's
// sync-in-thread-pool-under-timeout pattern for blocking callback code).
type Handler func(ctx context.Context, hctx *Context, data map[string]any) (Result, map[string]any)

// Spec is one registered hook binding.
type Spec struct {
	HookName    string
	ExtensionID string
	MethodName  string
	Priority    int // lower runs first
	Timeout     time.Duration
	Handler     Handler
}

// AbortError is returned by Executor.Execute when a handler aborts the chain.
type AbortError struct {
	HookName    string
	ExtensionID string
	Err         error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("hook %s aborted by %s: %v", e.HookName, e.ExtensionID, e.Err)
}
func (e *AbortError) Unwrap() error { return e.Err }

// Registry stores specs per hook name, priority-ordered, rejecting a second
// registration from the same extension id against the same hook name.
type Registry struct {
	mu    sync.RWMutex
	specs map[string][]Spec // hookName -> specs, sorted by Priority
}

func NewRegistry() *Registry {
	return &Registry{specs: map[string][]Spec{}}
}

func (r *Registry) Register(s Spec) error {
	if s.HookName == "" {
		return fmt.Errorf("hook: HookName cannot be empty")
	}
	if s.Timeout <= 0 {
		s.Timeout = 5 * time.Second
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.specs[s.HookName] {
		if existing.ExtensionID == s.ExtensionID {
			return fmt.Errorf("hook %s: extension %q already registered", s.HookName, s.ExtensionID)
		}
	}
	r.specs[s.HookName] = append(r.specs[s.HookName], s)
	sort.SliceStable(r.specs[s.HookName], func(i, j int) bool {
		return r.specs[s.HookName][i].Priority < r.specs[s.HookName][j].Priority
	})
	return nil
}

func (r *Registry) Unregister(hookName, extensionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	specs := r.specs[hookName]
	out := specs[:0]
	for _, s := range specs {
		if s.ExtensionID != extensionID {
			out = append(out, s)
		}
	}
	r.specs[hookName] = out
}

func (r *Registry) HasHooks(hookName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.specs[hookName]) > 0
}

func (r *Registry) GetHooks(hookName string) []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Spec, len(r.specs[hookName]))
	copy(out, r.specs[hookName])
	return out
}
