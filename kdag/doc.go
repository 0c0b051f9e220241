// Package kdag builds the executable task list of a chain from its
// configurations.
//
// # Overview
//
// Every configuration names its upstream sources. The Builder resolves the
// sources of a root configuration recursively, checks that no source chain
// leads back to the root and inserts one Task per configuration into an
// ordered list in which every task comes after all tasks it consumes from:
//
//	reg := kconfig.NewRegistry()
//	reg.MustAdd(kconfig.MustNew("A", "Generator", nil, ""))
//	reg.MustAdd(kconfig.MustNew("B", "Relay", []string{"A"}, ""))
//	reg.MustAdd(kconfig.MustNew("C", "Counter", []string{"B", "A"}, ""))
//
//	b := kdag.NewBuilder(reg)
//	if err := b.BuildTaskList("C"); err != nil {
//	    return err
//	}
//	list := b.MustBuild() // A, B, C
//
// Building the same root twice is a no-op. Several roots may share tasks.
//
// # Errors
//
// All failures wrap kstatus sentinels and can be checked with errors.Is:
//
//   - kstatus.ErrNotFound: a configuration is not registered
//   - kstatus.ErrUnresolvedSources: a source is not registered
//   - kstatus.ErrCircularDependency: a source chain leads back to itself
//   - kstatus.ErrConfigurationMismatch: a task exists for the name but was
//     built from another configuration
//
// A failed BuildTaskList leaves the list as it was before the call.
//
// # Thread Safety
//
// IMPORTANT: Builder is NOT safe for concurrent use. The List returned by
// Build is immutable.
package kdag
