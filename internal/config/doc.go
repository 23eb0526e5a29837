// Package config defines the optional settings file for the tool and the
// Loader interface that reads it. The file supplies default per-image
// options, logging settings, the palette directory and inline palettes;
// anything given on the command line takes precedence.
//
// The only concrete Loader is HCL based (see HCLLoader).
package config
