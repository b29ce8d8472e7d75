package app

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"console/internal/logging"
	"console/internal/monitor"
	"console/internal/types"
)

// Run mounts view, runs the monitoring screen until the operator quits and
// unmounts the view on the way out so its poll cycle stops and its state is
// saved.
func Run(ctx context.Context, view *monitor.View, relay *ErrorRelay, filter types.StatusFilter, logger logging.Logger) error {
	if logger == nil {
		logger = logging.Nop()
	}
	if err := view.Mount(ctx, filter); err != nil {
		return err
	}
	model := NewModel(ctx, view, WithErrorRelay(relay), WithModelLogger(logger))
	defer model.Close()

	program := tea.NewProgram(model, tea.WithContext(ctx))
	_, runErr := program.Run()
	if err := view.Unmount(); err != nil {
		logger.Warn("unmount failed", logging.Err(err))
	}
	if runErr != nil {
		logger.Error("ui exited with error", logging.Err(runErr))
	}
	return runErr
}
