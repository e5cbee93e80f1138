package cli

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/macropower/kls/pkg/version"
)

// Execute runs the root command with fang's help, version and error
// rendering.
func Execute(ctx context.Context, args ...string) error {
	ra := NewRootArgs()

	cmd := newRootCmd(ra)
	if args != nil {
		cmd.SetArgs(args)
	}

	err := fang.Execute(ctx, cmd,
		fang.WithErrorHandler(ErrorHandler),
		fang.WithVersion(version.GetVersion()),
		fang.WithCommit(version.Revision),
		fang.WithNotifySignal(os.Interrupt),
	)

	// PersistentPostRunE is skipped when a command fails.
	return errors.Join(err, ra.shutdownTracing())
}
