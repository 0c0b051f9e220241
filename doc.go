// Package kchain assembles independently written processing units into a
// chain and drives it event by event.
//
// A chain is described by configurations: a unique name, the component
// kind that implements it, the configurations it reads from and an argument
// string. The Host resolves the configurations into a dependency ordered task
// list, initialises one unit per task and sends events through the list.
// Steering events (start and end of run, reconfiguration, calibration
// update) travel the same data path as physics data.
//
//	h := kchain.New(kchain.WithLog(log))
//	h.Configurations().MustAdd(kconfig.MustNew("A", "Generator", nil, "-size=64"))
//	h.Configurations().MustAdd(kconfig.MustNew("B", "Counter", []string{"A"}, ""))
//	_ = h.Init("builtin")
//	_ = h.Configure()
//	_ = h.Run(ctx, 100)
//	_ = h.Run(ctx, 0)
package kchain
