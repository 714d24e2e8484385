// Package config loads taghunt settings.
//
// Values come from defaults, an optional config file and TAGHUNT_*
// environment variables, in increasing order of precedence. The merged
// result is checked against an embedded CUE schema before use.
package config
