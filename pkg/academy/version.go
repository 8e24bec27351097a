// Package academy holds build metadata for the academy module.
package academy

// Version is the release version reported by the CLI.
const Version = "0.1.0"
