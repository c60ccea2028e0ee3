// Package ports defines the narrow interfaces between the manifest core and its
// external collaborators: the decoding sensor, the geocoder, operator feedback,
// local snapshot persistence and the optional synchronization backend.
package ports
