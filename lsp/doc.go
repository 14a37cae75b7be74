// Package lsp defines the Language Server Protocol payload types exchanged
// during the lifecycle handshake: initialize parameters and result, the client
// and server capability records, and the small $/ notifications.
//
// Wire fidelity is the main concern. Optional members use Optional (absent or
// value) and Nullable (absent, null or value) so that absence survives a
// decode/encode round trip instead of turning into null. Capability records
// are open: members this package does not model are kept in an Extra residue
// and written back on encode.
package lsp
