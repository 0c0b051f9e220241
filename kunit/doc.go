// Package kunit defines the contract between the chain executor and the
// processing units it drives.
//
// A unit implements Unit and at least one of the Producer and Consumer
// capabilities. Producers without inputs are sources, consumers without
// outputs are sinks, units with both are processors. Units are created
// through factories kept in a Registry, which is filled by compiled-in
// Library functions.
package kunit
