// Package cliout provides output formatting for the toast CLI.
//
// Commands print either human-readable text or JSON, selected once with
// SetFormat from the --output flag:
//
//	if err := cliout.SetFormat(output); err != nil {
//		return err
//	}
//	return cliout.Print(result, func() {
//		cliout.Success("Toast shown")
//		cliout.Label("Template", result.Template)
//	})
//
// Colors are used only when stdout is a terminal and NO_COLOR is unset.
package cliout
