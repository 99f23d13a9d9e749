package lifecycle

import (
	"context"

	"github.com/specvital/scopekit/pkg/domain"
)

// HookKind identifies one of the four lifecycle slots of a scope.
type HookKind int

const (
	// HookBeforeAll runs once, before the first test of the scope.
	HookBeforeAll HookKind = iota
	// HookBeforeEach runs before every test nested in the scope.
	HookBeforeEach
	// HookAfterEach runs after every test nested in the scope.
	HookAfterEach
	// HookAfterAll runs once, after the last test of the scope.
	HookAfterAll

	hookKinds
)

func (k HookKind) String() string {
	switch k {
	case HookBeforeAll:
		return domain.HookBeforeAll
	case HookBeforeEach:
		return domain.HookBeforeEach
	case HookAfterEach:
		return domain.HookAfterEach
	case HookAfterAll:
		return domain.HookAfterAll
	default:
		return "unknown"
	}
}

// Hook is a setup or teardown callback.
type Hook func(ctx context.Context) error

// Func is a test body.
type Func func(ctx context.Context) error

// hookSlots holds at most one hook per kind. Setting a slot twice keeps the
// last hook.
type hookSlots [hookKinds]Hook

func (h *hookSlots) set(kind HookKind, fn Hook) {
	h[kind] = fn
}

func (h *hookSlots) get(kind HookKind) Hook {
	return h[kind]
}

// names returns the names of the populated slots in declaration order.
func (h *hookSlots) names() []string {
	var names []string
	for kind := HookBeforeAll; kind < hookKinds; kind++ {
		if h[kind] != nil {
			names = append(names, kind.String())
		}
	}
	return names
}
