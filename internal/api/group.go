package api

// Group prefixes and middleware-scopes a batch of route registrations.
// Effective middleware order for a grouped route is: global, then
// constructor-supplied group middleware, then Use-added group
// middleware, then per-route middleware.
type Group struct {
	router      *Router
	prefix      string
	constructor []Middleware
	added       []Middleware
	pending     []pendingRoute
}

type pendingRoute struct {
	method     string
	pattern    string
	handler    any
	middleware []Middleware
}

// Group registers a batch of routes under prefix. Registrations are
// buffered and materialized when fn returns, so Use applies to every
// route in the group regardless of call order inside the callback,
// while the group's routes keep their relative registration order.
func (rt *Router) Group(prefix string, fn func(g *Group), middleware ...Middleware) {
	group := &Group{
		router:      rt,
		prefix:      prefix,
		constructor: middleware,
	}
	fn(group)

	for _, p := range group.pending {
		merged := concat(group.constructor, group.added, p.middleware)
		rt.handle(p.method, group.prefix+p.pattern, p.handler, merged)
	}
}

// Use appends group middleware, run after the constructor-supplied
// middleware and before any per-route middleware.
func (g *Group) Use(middleware ...Middleware) {
	g.added = append(g.added, middleware...)
}

func (g *Group) Get(pattern string, handler any, middleware ...Middleware) {
	g.add("GET", pattern, handler, middleware)
}

func (g *Group) Post(pattern string, handler any, middleware ...Middleware) {
	g.add("POST", pattern, handler, middleware)
}

func (g *Group) Put(pattern string, handler any, middleware ...Middleware) {
	g.add("PUT", pattern, handler, middleware)
}

func (g *Group) Patch(pattern string, handler any, middleware ...Middleware) {
	g.add("PATCH", pattern, handler, middleware)
}

func (g *Group) Delete(pattern string, handler any, middleware ...Middleware) {
	g.add("DELETE", pattern, handler, middleware)
}

func (g *Group) add(method, pattern string, handler any, middleware []Middleware) {
	g.pending = append(g.pending, pendingRoute{
		method:     method,
		pattern:    pattern,
		handler:    handler,
		middleware: middleware,
	})
}
