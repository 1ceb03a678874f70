// Package interception implements the pipeline resolution engine: given a
// method on a service type it determines, builds, caches and serves the
// ordered chain of interceptors wrapping every invocation of that method.
//
// The moving parts, leaf first:
//   - Pipeline: an immutable ordered interceptor sequence with a shared
//     EmptyPipeline sentinel and reverse-built chain execution.
//   - DeclarationSet: the explicit table binding method identities to
//     ordered interceptor declarations, populated at registration time.
//   - DeclarationResolver: merges interface- and implementation-level
//     declarations, stable-sorts them by order, and materializes instances
//     through a DependencyResolver collaborator.
//   - OverrideGraph: declared "overrides" edges; base-definition lookup is a
//     walk to the root of the slot.
//   - PipelineManager: the registry. Lazily builds pipelines, shares one
//     pipeline object across base/override/interface identities of a slot,
//     and serves concurrent lookups.
//
// Typical warm-up:
//
//	set := interception.NewDeclarationSet()
//	set.Declare(method, interception.Declaration(&LoggingInterceptor{}, 0))
//
//	resolver := interception.NewDeclarationResolver(set, container)
//	manager := interception.NewPipelineManager(resolver)
//	if err := manager.InitializeType(ctx, &orderService{}); err != nil { ... }
//
// Call time:
//
//	pipeline, err := manager.GetPipeline(method)
//	if pipeline.IsEmpty() {
//		// bare call, no interception machinery
//	}
//	results, err := pipeline.Execute(ctx, invocation, target)
package interception
