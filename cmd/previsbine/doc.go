// Package main hosts the previsbine CLI.
//
// The root command builds precombines and previs data for one plugin; the
// stages, verify and config subcommands inspect the pipeline, the tool
// installation and the configuration file. Flags override the configuration
// file, which overrides the environment.
package main
