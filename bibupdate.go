// Package bibupdate collects shared metadata for the bibupdate tools, which
// merge periodic citation database exports, extract DOIs and keep a project
// log of every update.
package bibupdate

const (
	// Version of the tools.
	Version = "0.1.0"
	// AppName is used for config and cache paths.
	AppName = "bibupdate"
)
