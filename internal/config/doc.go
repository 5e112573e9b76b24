// Package config loads host configuration for the socialgraph CLI.
//
// Sources are applied in order, later ones winning:
//  1. Default()
//  2. a YAML file (unknown keys are an error)
//  3. an optional .env file
//  4. process environment variables prefixed with SOCIALGRAPH_
//
// The merged result is validated against an embedded CUE schema before use.
package config
