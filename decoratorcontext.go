package scopedi

// decoratorLayer is one (decorator-service, decorator-instance) pair applied
// while wrapping a target service.
type decoratorLayer struct {
	Service  Service
	Instance any
}

// DecoratorContext is an ordered record of the decorators applied to a
// target service, updated each time a decorator wraps it (C9, spec.md §4.9).
// Decorator order matches registration order.
type DecoratorContext struct {
	target Service
	layers []decoratorLayer
}

// newDecoratorContext starts tracking decoration of target, with no layers
// recorded; the base instance itself is not recorded.
func newDecoratorContext(target Service) *DecoratorContext {
	return &DecoratorContext{target: target}
}

// apply records that decoratorService's instance now wraps the previous
// current instance.
func (d *DecoratorContext) apply(decoratorService Service, instance any) {
	d.layers = append(d.layers, decoratorLayer{Service: decoratorService, Instance: instance})
}

// CurrentInstance returns the most recently applied instance, or nil if no
// decorator has run yet.
func (d *DecoratorContext) CurrentInstance() any {
	if len(d.layers) == 0 {
		return nil
	}
	return d.layers[len(d.layers)-1].Instance
}

// AppliedDecorators returns the services of every decorator applied so far,
// in application (registration) order.
func (d *DecoratorContext) AppliedDecorators() []Service {
	out := make([]Service, len(d.layers))
	for i, l := range d.layers {
		out[i] = l.Service
	}
	return out
}

// Target returns the service being decorated.
func (d *DecoratorContext) Target() Service {
	return d.target
}
