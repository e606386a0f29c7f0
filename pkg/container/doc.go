// Package container holds the process-wide service registry that the
// `register` loader operation writes into. Services are registered once per
// name at startup; re-registration is an error.
package container
