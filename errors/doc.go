// Package errors provides the error taxonomy shared by every storage adapter.
//
// Provider SDKs each surface their own native error types. Adapters translate
// those into an *AppError carrying one of the codes below so callers can
// branch on the failure kind without knowing which cloud produced it:
//
//   - AUTHENTICATION_FAILED: no usable credential combination (fatal at construction)
//   - ALREADY_EXISTS: bucket/container creation conflict (logged and swallowed)
//   - TRANSFER_FAILED: a list/get/put/copy/delete call failed
//   - NOT_FOUND: a transfer failure where the object or bucket does not exist
//   - DECODE_FAILED: retrieved bytes could not be decoded
package errors
