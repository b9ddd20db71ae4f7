// Package config loads the YAML configuration consumed by the command line
// tooling: endpoint selection, logging, response cache, audit sinks and the
// metrics endpoint.
package config
