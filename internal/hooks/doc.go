// Package hooks defines the two lifecycle callbacks the documentation build
// invokes: PreBuildHook before the site is generated and PostBuildHook after
// it. Hooks are registered explicitly against the Hook interface and run by
// stage through a Registry.
//
//	reg := hooks.DefaultRegistry(recorder)
//	results, err := reg.Run(ctx, hooks.StagePostBuild, site)
package hooks
