// Package config provides configuration loading for parkgate.
//
// Configuration comes from three sources, applied in order:
//
//  1. Built-in defaults (defaultConfig)
//  2. A YAML file (configs/config.yaml by default)
//  3. Environment variables (PARKGATE_SECTION_KEY)
//
// The most important piece of configuration is the upstream collection
// table: for every upstream collection (facilities, occupancies, devices,
// ...) it lists the base path and the ordered candidate request shapes the
// resolver probes when fetching an entity by id. The upstream API is not
// consistent about addressing, so the viable shapes per collection are
// data, not code.
//
// Upstream credentials (basic auth) should be supplied via
// PARKGATE_UPSTREAM_USERNAME / PARKGATE_UPSTREAM_PASSWORD rather than the
// YAML file.
package config
