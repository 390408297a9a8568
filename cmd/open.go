package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/swatch/internal/shared"
	"github.com/urfave/cli/v3"
)

var openBrowser = shared.OpenBrowser

// Open loads a saved site and opens its URL in the default browser.
func (r *Runner) Open(ctx context.Context, cmd *cli.Command) error {
	if err := r.selectSite(ctx, cmd.StringArg("id")); err != nil {
		return err
	}

	target := r.analysis.Data().SourceURL
	if target == "" {
		return fmt.Errorf("%w: saved site has no URL", shared.ErrInvalidInput)
	}

	r.logger.Info("opening browser", "url", target)
	if err := openBrowser(target); err != nil {
		return err
	}
	return r.writePlain("✓ Opened %s\n", target)
}
