package api

import (
	"fmt"
	"sync"
)

// Module is the shape a lazy loader may resolve to: a handler plus
// middleware of its own, merged innermost (adjacent to the handler).
type Module struct {
	Handler    Handler
	Middleware []Middleware
}

// Loader defers a handler until the first matching request. It must
// yield a Handler (or func(*Context) error) or a Module/*Module;
// anything else is a configuration error surfaced as a server fault.
type Loader func() (any, error)

// handlerRef is the tagged variant behind every route: a direct handler
// or a deferred loader resolved at request-match time and cached.
type handlerRef struct {
	direct Handler
	loader Loader

	once       sync.Once
	resolved   Handler
	middleware []Middleware
	err        error
}

func direct(h Handler) *handlerRef {
	return &handlerRef{direct: h}
}

func deferred(loader Loader) *handlerRef {
	return &handlerRef{loader: loader}
}

func (ref *handlerRef) resolve() (Handler, []Middleware, error) {
	if ref.direct != nil {
		return ref.direct, nil, nil
	}
	ref.once.Do(func() {
		loaded, err := ref.loader()
		if err != nil {
			ref.err = fmt.Errorf("lazy handler load: %w", err)
			return
		}
		switch v := loaded.(type) {
		case Handler:
			ref.resolved = v
		case func(*Context) error:
			ref.resolved = v
		case Module:
			ref.resolved = v.Handler
			ref.middleware = v.Middleware
		case *Module:
			ref.resolved = v.Handler
			ref.middleware = v.Middleware
		default:
			ref.err = fmt.Errorf("lazy handler resolved to unsupported type %T", loaded)
		}
		if ref.err == nil && ref.resolved == nil {
			ref.err = fmt.Errorf("lazy handler resolved to a nil handler")
		}
	})
	return ref.resolved, ref.middleware, ref.err
}
