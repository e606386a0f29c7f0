// Package contract defines the trust records of the dependency filter: the
// per-symbol contract (source hash, test hash, validation status) and the
// hashing used to detect source drift. Contracts are written only by the
// explicit regeneration flow and read on every module load.
package contract
