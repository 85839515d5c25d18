package actions

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Action is a named entry point the command line can launch.
type Action func(ctx context.Context) error

type Registry struct {
	lock    sync.RWMutex
	actions map[string]Action
}

func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]Action)}
}

func (r *Registry) Add(name string, action Action) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, exists := r.actions[name]; exists {
		return fmt.Errorf("action %s is already registered", name)
	}
	r.actions[name] = action
	return nil
}

func (r *Registry) Get(name string) (Action, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	action, ok := r.actions[name]
	if !ok {
		return nil, fmt.Errorf("unknown action %s, known actions: %v", name, r.names())
	}
	return action, nil
}

func (r *Registry) Names() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.names()
}

func (r *Registry) names() []string {
	names := lo.Keys(r.actions)
	slices.Sort(names)
	return names
}
