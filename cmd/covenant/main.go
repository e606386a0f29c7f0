// Covenant is a contract-driven runtime for a small declarative DSL.
//
// Modules written in the DSL import each other only through a dependency
// filter: every exported symbol must carry a stored contract proving its
// current source passed its test suite, or it is withheld from importers.
//
// Usage:
//
//	# Run the configured bootstrap program
//	covenant run
//
//	# Run a specific program
//	covenant run pipelines/ingest.dsl
//
//	# Execute a module's test suite
//	covenant test validators.dsl
//
//	# Regenerate contracts after the suite passes
//	covenant contracts generate validators.dsl
//
//	# Parse modules without executing them
//	covenant check validators.dsl
package main

func main() {
	Execute()
}
