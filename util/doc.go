// Package util holds small string helpers shared by the gateway and the
// CLI: size parsing for config values and credential masking.
package util
