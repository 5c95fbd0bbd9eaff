package scopedi

// Parameter is a tagged value supplying a constructor or property input to an
// Activator. The core treats parameters as an opaque ordered sequence — only
// the activator that receives them knows how to match a Parameter against its
// own signature (spec.md §6: "Parameter matching: activators alone interpret
// parameters; the core treats them as an opaque ordered sequence").
type Parameter struct {
	// Tag identifies the parameter slot an activator should bind this value
	// to (a parameter name, position, or type-driven key — the convention is
	// entirely up to the activator).
	Tag   string
	Value any
}

// NamedParameter builds a Parameter with the given tag.
func NamedParameter(tag string, value any) Parameter {
	return Parameter{Tag: tag, Value: value}
}

// DecoratorTargetParameterTag is the well-known Parameter tag a decorator's
// Activator reads to retrieve the instance it wraps. Activator.Activate has
// no signature access to the resolving RequestContext, so activationMiddleware
// appends this parameter to the parameters it passes to Activate whenever
// RequestContext.DecoratorTarget is non-nil (spec.md §4.9).
const DecoratorTargetParameterTag = "scopedi.decorator-target"
