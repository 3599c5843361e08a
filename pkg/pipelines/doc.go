// Package pipelines wires the provisioning steps into the named pipelines the
// CLI runs: install, delete, reinstall and import.
//
// Each pipeline has its own arguments type. Steps share state through the
// arguments: install resolves the product and creates the instance, and the
// later steps read what the earlier ones attached.
//
//	install:   resolve product -> prepare directory -> setup website ->
//	           grant permissions -> apply configuration -> write registry entry
//	delete:    locate instance -> stop -> delete website ->
//	           delete registry entry -> delete files
//	reinstall: locate instance -> stop -> delete website -> delete files ->
//	           the install steps for the recorded product
//	import:    setup website -> update connection strings -> write registry entry
package pipelines
