// Package hooks runs user supplied Tengo scripts at pipeline events.
package hooks

import (
	"context"
	"fmt"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// TengoExecutor handles the execution of Tengo scripts.
type TengoExecutor struct {
	scripts map[HookType]*tengo.Compiled
	mutex   sync.RWMutex
}

// NewTengoExecutor creates a new Tengo script executor.
func NewTengoExecutor() *TengoExecutor {
	return &TengoExecutor{
		scripts: make(map[HookType]*tengo.Compiled),
	}
}

// AddScript compiles script and registers it for hookType, replacing any
// previous script. The variables of Context are declared so that scripts can
// reference them.
func (e *TengoExecutor) AddScript(hookType HookType, script string) error {
	if !hookType.Valid() {
		return ErrUnsupportedHookType(string(hookType))
	}

	s := tengo.NewScript([]byte(script))
	s.SetImports(stdlib.GetModuleMap("fmt", "os", "text", "times", "json"))
	for name, value := range variables(Context{}) {
		if err := s.Add(name, value); err != nil {
			return fmt.Errorf("failed to declare %s: %w", name, err)
		}
	}

	compiled, err := s.Compile()
	if err != nil {
		return fmt.Errorf("%s: %w: %w", hookType, ErrHookScript, err)
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.scripts[hookType] = compiled
	return nil
}

// RemoveScript removes the script for the specified hooks type.
func (e *TengoExecutor) RemoveScript(hookType HookType) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	delete(e.scripts, hookType)
}

// HasScript checks if a script exists for the specified hooks type.
func (e *TengoExecutor) HasScript(hookType HookType) bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	_, exists := e.scripts[hookType]
	return exists
}

// Execute runs the script registered for hookType. It is a no-op when no
// script is registered. A script reports failure by assigning a non-empty
// string or an error to the variable err.
func (e *TengoExecutor) Execute(ctx context.Context, hookType HookType, hctx Context) error {
	e.mutex.RLock()
	base, exists := e.scripts[hookType]
	e.mutex.RUnlock()
	if !exists {
		return nil
	}

	// each run gets its own copy of the globals
	compiled := base.Clone()
	for name, value := range variables(hctx) {
		if err := compiled.Set(name, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", name, err)
		}
	}

	if err := compiled.RunContext(ctx); err != nil {
		return fmt.Errorf("%s: %w: %w", hookType, ErrHookExecution, err)
	}

	errVar := compiled.Get("err")
	switch v := errVar.Value().(type) {
	case error:
		return fmt.Errorf("%s: %w: %w", hookType, ErrHookScript, v)
	case string:
		if v != "" {
			return fmt.Errorf("%s: %w: %s", hookType, ErrHookScript, v)
		}
	}
	return nil
}

func variables(hctx Context) map[string]interface{} {
	date := ""
	if !hctx.Date.IsZero() {
		date = hctx.Date.String()
	}
	vars := hctx.Vars
	if vars == nil {
		vars = map[string]interface{}{}
	}
	return map[string]interface{}{
		"date":        date,
		"title":       hctx.Title,
		"explanation": hctx.Explanation,
		"mediaKind":   hctx.MediaKind,
		"mediaPath":   hctx.MediaPath,
		"vars":        vars,
		"err":         "",
	}
}
