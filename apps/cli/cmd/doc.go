// Package cmd implements the restcall CLI commands.
package cmd
