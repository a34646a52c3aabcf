// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Prometheus counters, viper configuration, GeoJSON export
// 0.2.0 - Shared ring highlight, bearing controls on the right pane
// 0.1.0 - Initial release: twin map panes, distance rings, zoom sync, lock/reset
