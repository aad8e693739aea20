package errors

import "sort"

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// Error codes.
const (
	CodeHookOrder      = "E101"
	CodeComponentPanic = "E102"
	CodeEffectPanic    = "E103"
	CodeHostFailure    = "E202"
	CodeInvalidRender  = "E301"
	CodeUnmounted      = "E302"
	CodeUpdateStorm    = "E303"
	CodeInvalidConfig  = "E401"
	CodeFrame          = "E501"
	CodeSnapshot       = "E601"
)

// registry maps error codes to their templates.
var registry = map[string]Template{
	// Hooks and components (E1xx)
	CodeHookOrder: {
		Category:   CategoryHooks,
		Message:    "Hook order changed between renders",
		Detail:     "Hook cells are matched to call sites by call order. A component called its hooks in a different order, or a different number of times, than in its previous render.",
		Suggestion: "Call UseState and UseEffect unconditionally at the top level of the component.",
	},
	CodeComponentPanic: {
		Category:   CategoryComponent,
		Message:    "Component panicked during render",
		Suggestion: "The in-flight generation was abandoned; the committed tree is unchanged.",
	},
	CodeEffectPanic: {
		Category: CategoryComponent,
		Message:  "Effect or cleanup panicked during commit",
	},

	// Host adapter (E2xx)
	CodeHostFailure: {
		Category:   CategoryHost,
		Message:    "Host adapter operation failed",
		Detail:     "The host rejected a create, update, append or remove. The in-flight generation was abandoned and may be partially applied to the host tree.",
		Suggestion: "Render again once the host is healthy; nothing is retried automatically.",
	},

	// Render requests (E3xx)
	CodeInvalidRender: {
		Category: CategoryRender,
		Message:  "Invalid render request",
	},
	CodeUnmounted: {
		Category: CategoryRender,
		Message:  "Reconciler has been unmounted",
	},
	CodeUpdateStorm: {
		Category:   CategoryRender,
		Message:    "Too many commits while flushing",
		Detail:     "State kept changing after every commit, usually an effect that sets state unconditionally.",
		Suggestion: "Give the effect a dependency list, or guard the state update.",
	},

	// Configuration (E4xx)
	CodeInvalidConfig: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},

	// Wire protocol (E5xx)
	CodeFrame: {
		Category: CategoryProtocol,
		Message:  "Malformed mutation frame",
	},

	// Snapshots (E6xx)
	CodeSnapshot: {
		Category: CategoryStorage,
		Message:  "Snapshot could not be stored",
	},
}

// GetAllCodes returns all registered error codes in sorted order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
