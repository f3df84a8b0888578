// Package bridge is the boundary to the container orchestration tooling:
// shell commands, compose tool detection, permission changes and the
// dependency-ordered deployment steps run after the tree is provisioned.
//
// Failures here are terminal for the run unless a step is marked ignorable,
// unlike per-file outcomes which are only ever reported.
package bridge
