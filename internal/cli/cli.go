// Package cli holds what the laptev and laptev-host commands share: fang
// execution, error display and list styling.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/carlmjohnson/versioninfo"
	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// usageErrors are fragments of cobra and laptev messages caused by how the
// command was invoked rather than by what it did.
var usageErrors = []string{
	"flag needs an argument:",
	"unknown flag:",
	"unknown shorthand flag:",
	"unknown command",
	"invalid argument",
	"required flag",
	"accepts",
	"arg(s), received",
	"exactly one of",
}

// ExecuteWithFang runs root and exits with status 1 if it fails.
func ExecuteWithFang(root *cobra.Command) {
	err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(versioninfo.Short()),
		fang.WithErrorHandler(ErrorHandlerWithUsage(root)),
	)
	if err != nil {
		os.Exit(1)
	}
}

// ErrorHandlerWithUsage prints err, then either the usage of root (for
// invocation mistakes) or a hint to run --help.
func ErrorHandlerWithUsage(root *cobra.Command) fang.ErrorHandler {
	return func(w io.Writer, styles fang.Styles, err error) {
		_, _ = fmt.Fprintln(w, styles.ErrorHeader.String())
		_, _ = fmt.Fprintln(w, styles.ErrorText.Render(err.Error()+"."))
		_, _ = fmt.Fprintln(w)

		if !IsUsageError(err) {
			_, _ = fmt.Fprintln(w, lipgloss.JoinHorizontal(
				lipgloss.Left,
				styles.ErrorText.UnsetWidth().Render("Try"),
				styles.Program.Flag.Render("--help"),
				styles.ErrorText.UnsetWidth().UnsetMargins().UnsetTransform().PaddingLeft(1).Render("for usage."),
			))
			_, _ = fmt.Fprintln(w)
			return
		}

		// Downsample the help colours to what w can display.
		root.SetOut(colorprofile.NewWriter(w, os.Environ()))
		root.HelpFunc()(root, nil)
	}
}

// IsUsageError reports whether err came from argument or flag handling.
func IsUsageError(err error) bool {
	s := err.Error()
	for _, frag := range usageErrors {
		if strings.Contains(s, frag) {
			return true
		}
	}
	return false
}
