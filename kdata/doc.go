// Package kdata defines the data model shared by processing units and the
// pipeline executor: typed, originated data blocks, the reserved steering
// types and the producer/consumer type matcher.
//
// A DataType is an 8 byte identifier plus a 4 byte origin. Wildcards (Any,
// AnyID, AnyOrigin, AllDataTypes) are only valid as matcher input; blocks
// produced by units always carry concrete types.
//
//	clusters := kdata.MustDataType("CLUSTERS", "TPC")
//	clusters.Matches(kdata.DataType{ID: kdata.AnyID, Origin: clusters.Origin}) // true
//
// Block descriptors are offsets into the output buffer of the producing
// task. Together with the arena slot of that task they form a Block, which
// is how the executor hands data downstream without sharing pointers.
package kdata
