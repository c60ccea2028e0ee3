// Package kernel provides the domain primitives shared by the manifest model:
//   - UUID: the opaque identifier of delivery items
//   - Coordinates: a validated latitude/longitude pair with a manual-correction flag
//     and haversine distance
//
// Both are immutable value objects whose zero values fail validation.
package kernel
