// Package scripting runs user-supplied stop strategies in a sandboxed
// JavaScript VM. A script defines a single decide(state) function that
// returns truthy to keep playing; the simulation harness calls it before
// every continuation decision.
package scripting

import (
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/glitchplay/chance-engine-go/internal/games"
)

const (
	scriptInitTimeout = 2 * time.Second
	scriptCallTimeout = 250 * time.Millisecond
)

// VM wraps a goja runtime with sandbox restrictions. A VM owns its runtime
// and must not be shared across goroutines; the harness creates one per
// worker.
type VM struct {
	runtime *goja.Runtime
	decide  goja.Callable
}

// NewVM compiles source in a sandboxed runtime and resolves its decide()
// function. Scripts without a callable decide are rejected up front.
func NewVM(source string) (*VM, error) {
	vm := &VM{runtime: goja.New()}
	vm.blockGlobals()

	if err := vm.runWithTimeout(scriptInitTimeout, source); err != nil {
		return nil, fmt.Errorf("scripting: script initialization failed: %w", err)
	}

	decide, ok := goja.AssertFunction(vm.runtime.Get("decide"))
	if !ok {
		return nil, fmt.Errorf("scripting: script must define a decide(state) function")
	}
	vm.decide = decide
	return vm, nil
}

// blockGlobals removes runtime escape hatches. Math and JSON stay available.
func (vm *VM) blockGlobals() {
	for _, name := range []string{"eval", "Function", "require", "fetch", "XMLHttpRequest"} {
		vm.runtime.Set(name, goja.Undefined())
	}
}

func (vm *VM) runWithTimeout(timeout time.Duration, source string) error {
	timer := time.AfterFunc(timeout, func() {
		vm.runtime.Interrupt("script timeout")
	})
	defer timer.Stop()
	_, err := vm.runtime.RunString(source)
	return err
}

// Decide calls the script's decide(state) and interprets the result as a
// boolean. Script errors and timeouts surface as errors; the caller decides
// whether that stops the round or aborts the run.
func (vm *VM) Decide(s games.StepState) (bool, error) {
	timer := time.AfterFunc(scriptCallTimeout, func() {
		vm.runtime.Interrupt("script timeout")
	})
	defer timer.Stop()
	defer vm.runtime.ClearInterrupt()

	state := vm.runtime.NewObject()
	state.Set("step", s.Step)
	state.Set("level", s.Level)
	state.Set("multiplier", s.Multiplier)

	v, err := vm.decide(goja.Undefined(), state)
	if err != nil {
		return false, fmt.Errorf("scripting: decide call failed: %w", err)
	}
	return v.ToBoolean(), nil
}

// Strategy adapts the VM to games.Strategy. A script error stops the round
// (the safe direction: the player cashes out rather than playing on) and is
// retained for inspection via Err.
type Strategy struct {
	vm      *VM
	lastErr error
}

// NewStrategy compiles source into a ready-to-use strategy.
func NewStrategy(source string) (*Strategy, error) {
	vm, err := NewVM(source)
	if err != nil {
		return nil, err
	}
	return &Strategy{vm: vm}, nil
}

// Continue implements games.Strategy.
func (s *Strategy) Continue(state games.StepState) bool {
	ok, err := s.vm.Decide(state)
	if err != nil {
		s.lastErr = err
		return false
	}
	return ok
}

// Err returns the last script error, if any.
func (s *Strategy) Err() error { return s.lastErr }
