// Package intercept resolves, caches and executes interceptor pipelines for
// methods on service types. Interceptors are declared per method through an
// explicit registration API (or YAML configuration), materialized through a
// pluggable dependency resolver, ordered by declared priority, and shared
// across interface methods and override slots that alias the same base
// method.
//
// The root package is a facade over the interception, resolution and
// interceptors packages:
//
//	registry := intercept.New()
//	defer registry.Close()
//
//	registry.RegisterInterceptor(&interceptors.LoggingInterceptor{}, func(ctx context.Context) (any, error) {
//		return interceptors.NewLoggingInterceptor(nil), nil
//	})
//
//	method, _ := contracts.MethodOf((*OrderService)(nil), "PlaceOrder")
//	registry.Declare(method, interception.Declaration(&interceptors.LoggingInterceptor{}, 0))
//
//	registry.RegisterInterface((*OrderService)(nil))
//	if err := registry.InitializeType(ctx, &orderService{}); err != nil { ... }
//
//	results, err := registry.Invoke(ctx, svc, "PlaceOrder", order)
package intercept
