// Package lifecycle defines the collaborators that pipeline steps drive to
// provision an instance, together with local reference implementations.
//
// The interfaces mirror what a web-server host offers: sites and application
// pools (InstanceProvider), a persisted installation record store
// (RegistryStore), filesystem access control (SecurityProvider) and account
// name resolution (IdentityResolver). The implementations in this package keep
// their state in plain files on an afero filesystem so the whole provisioning
// flow can run, and be tested, on any machine.
package lifecycle
