// Package common keeps enums shared between configuration and commands.
package common

//go:generate go tool go-enum --marshal --names

// Format of inspection output.
// ENUM(text, yaml)
type OutputFmt int

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtText:
		return ".txt"
	case OutputFmtYaml:
		return ".yaml"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}
