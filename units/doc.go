// Package units provides the built-in processing units:
//
//   - Generator: source emitting one block of a configurable type per data
//     event
//   - Relay: processor copying every matching input block to its output
//   - Counter: sink counting blocks and bytes per data type
//
// Library registers all of them.
package units
