// Package kconfig holds the declarative description of a chain: named
// configurations, each naming the component kind to spawn, its arguments and
// its upstream sources.
//
// Configurations are written one per line
//
//	A {Generator} ; arguments="-datatype=RAW:TPC -size=64"
//	B {Relay} -> A
//	C {Counter} -> B A
//
// or as YAML chain files (see File). The Registry keeps them by name; the
// kdag package turns them into an ordered task list.
package kconfig
