package hook

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"
)

const maxRetries = 3

// Executor walks a hook's registered chain in priority order.
type Executor struct {
	registry *Registry
}

func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// Execute runs hookName's chain against data, returning the final verdict
// and the (possibly replaced) data. A no-hooks hook name short-circuits to
// ActionContinue without spawning anything.
func (e *Executor) Execute(ctx context.Context, hctx *Context, data map[string]any) (Result, map[string]any) {
	if !e.registry.HasHooks(hctx.HookName) {
		return Continue(), data
	}
	return e.executeWithRetry(ctx, hctx, data, 0)
}

func (e *Executor) executeWithRetry(ctx context.Context, hctx *Context, data map[string]any, attempt int) (Result, map[string]any) {
	mergedMeta := map[string]any{}
	for _, spec := range e.registry.GetHooks(hctx.HookName) {
		result, newData := e.invoke(ctx, spec, hctx, data)

		if result.Metadata != nil {
			maps.Copy(mergedMeta, result.Metadata)
		}

		switch result.Action {
		case ActionContinue:
			if newData != nil {
				data = newData
			}
		case ActionSkip:
			return result, data
		case ActionAbort:
			e.notifyError(ctx, hctx, spec, result.Err)
			return result, data
		case ActionReplace:
			data = result.Data
		case ActionRetry:
			if attempt >= maxRetries {
				return Result{Action: ActionAbort, Err: errRetryExhausted(hctx.HookName)}, data
			}
			return e.executeWithRetry(ctx, hctx, data, attempt+1)
		default:
			// Unrecognized verdict treated as continue, matching the
			// original's "anything else is a replace-with-itself" leniency.
		}
	}
	hctx.Metadata = mergedMeta
	return Continue(), data
}

// invoke dispatches a single handler under its configured timeout. Handlers
// are always run in their own goroutine so a slow or hung synchronous
// handler cannot stall the chain past its budget -- the same
// sync-in-thread-pool-under-timeout shape the original's before/after_model
// callbacks require.
func (e *Executor) invoke(ctx context.Context, spec Spec, hctx *Context, data map[string]any) (Result, map[string]any) {
	type out struct {
		res  Result
		data map[string]any
	}
	ch := make(chan out, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- out{res: Abort(errHandlerPanic(spec.ExtensionID, r))}
			}
		}()
		res, data := spec.Handler(ctx, hctx, data)
		ch <- out{res: res, data: data}
	}()

	select {
	case o := <-ch:
		return o.res, o.data
	case <-time.After(spec.Timeout):
		return Result{Action: ActionAbort, Err: errHandlerTimeout(spec.ExtensionID, spec.Timeout)}, data
	case <-ctx.Done():
		return Result{Action: ActionAbort, Err: ctx.Err()}, data
	}
}

// notifyError runs the non-recursive on_hook_error meta-chain: a single
// pass over handlers registered for "on_hook_error", never itself subject
// to retry or further error notification.
func (e *Executor) notifyError(ctx context.Context, hctx *Context, failed Spec, cause error) {
	if !e.registry.HasHooks("on_hook_error") {
		slog.Warn("hook aborted", "hook", hctx.HookName, "extension", failed.ExtensionID, "err", cause)
		return
	}
	errData := map[string]any{
		"failed_hook":      hctx.HookName,
		"failed_extension": failed.ExtensionID,
		"error":            cause.Error(),
	}
	for _, spec := range e.registry.GetHooks("on_hook_error") {
		_, _ = spec.Handler(ctx, &Context{HookName: "on_hook_error", RunID: hctx.RunID, SessionID: hctx.SessionID}, errData)
	}
}

func errRetryExhausted(hookName string) error {
	return fmt.Errorf("hook %s: retry budget exhausted after %d attempts", hookName, maxRetries)
}

func errHandlerPanic(extensionID string, r any) error {
	return fmt.Errorf("hook handler %q panicked: %v", extensionID, r)
}

func errHandlerTimeout(extensionID string, timeout time.Duration) error {
	return fmt.Errorf("hook handler %q exceeded timeout %s", extensionID, timeout)
}
