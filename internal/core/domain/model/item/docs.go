// Package item provides the delivery item aggregate of the courier manifest
// together with its status machine and the values that travel with it.
//
// The package includes:
//   - Item: the aggregate root holding identity, label fields, status and history
//   - Status: the state machine (Pending, Absent, Delivered and the peer statuses)
//   - ScanConfirmation: the only token that lets an item reach Delivered
//   - Candidate and Patch: input shapes for registration and partial edits
//
// Key business rules:
//   - Registration is lax: name and address may be empty until they are needed
//   - Marking absent and delivering both require a name and an address
//   - Delivered is terminal and reachable only with a matched scan of the current code
//   - Every status change appends exactly one Attempt to the history
package item
