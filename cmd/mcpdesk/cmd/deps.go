package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/barysiuk/mcpdesk/internal/core"
	"github.com/barysiuk/mcpdesk/internal/core/tier"
	"github.com/barysiuk/mcpdesk/internal/logging"
	"github.com/barysiuk/mcpdesk/internal/store"
)

const defaultLogLevel = "warn"

// deps holds shared dependencies for CLI commands.
type deps struct {
	config   *core.ConfigManager
	settings *core.Settings
	logger   zerolog.Logger
	store    *store.SQLiteStore
	identity *core.LocalIdentity
	deployer *core.Deployer
	drafts   *core.DraftStore
}

// newDeps loads the settings, opens the database and wires the core
// services. Callers must Close the result.
func newDeps(cmd *cobra.Command) (*deps, error) {
	config, err := core.NewConfigManager()
	if err != nil {
		return nil, fmt.Errorf("initializing config: %w", err)
	}
	settings, err := config.LoadOrInit()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = settings.LogLevel
	}
	if level == "" {
		level = defaultLogLevel
	}
	logger := logging.New(level, cmd.ErrOrStderr())

	st, err := store.NewSQLiteStore(settings.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &deps{
		config:   config,
		settings: settings,
		logger:   logger,
		store:    st,
		identity: core.NewLocalIdentity(settings, st),
		deployer: core.NewDeployer(st, logger),
		drafts:   core.NewDraftStore(config.DraftPath()),
	}, nil
}

func (d *deps) Close() {
	if err := d.store.Close(); err != nil {
		d.logger.Warn().Err(err).Msg("closing database")
	}
}

// tier returns the user's subscription tier.
func (d *deps) tier(ctx context.Context) (tier.Tier, error) {
	t, err := d.identity.SubscriptionTier(ctx)
	if err != nil {
		d.logger.Error().Err(err).Msg("reading subscription tier")
		return tier.None, err
	}
	return t, nil
}

// token returns HF_TOKEN from the environment or the token env file.
func (d *deps) token() string {
	res, err := core.ResolveToken(d.config.EnvPath())
	if err != nil {
		d.logger.Warn().Err(err).Msg("reading token env file")
	}
	return res.Value
}

// loadWizard reopens the draft in progress with the stored token and the
// current tier.
func (d *deps) loadWizard(ctx context.Context) (*core.Wizard, error) {
	w, err := core.ResumeDraft(ctx, d.drafts, d.identity, d.token())
	if errors.Is(err, core.ErrNoDraft) {
		return nil, fmt.Errorf("%w; run 'mcpdesk new' to start one", err)
	}
	return w, err
}

// saveWizard writes the wizard back as the draft in progress.
func (d *deps) saveWizard(w *core.Wizard) error {
	return d.drafts.Save(&core.Draft{Configuration: w.Config(), State: w.State()})
}

// desktopPath resolves the --path flag, falling back to the settings.
func (d *deps) desktopPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("path"); p != "" {
		return p
	}
	return d.settings.DesktopConfigPath
}

// withDeps runs fn with freshly wired deps and closes them afterwards.
func withDeps(cmd *cobra.Command, fn func(d *deps) error) error {
	d, err := newDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()
	return fn(d)
}

// withWizard loads the draft, runs fn on it and saves the draft if fn
// succeeds.
func withWizard(cmd *cobra.Command, fn func(d *deps, w *core.Wizard) error) error {
	return withDeps(cmd, func(d *deps) error {
		w, err := d.loadWizard(cmd.Context())
		if err != nil {
			return err
		}
		if err := fn(d, w); err != nil {
			return err
		}
		if err := d.saveWizard(w); err != nil {
			return fmt.Errorf("saving draft: %w", err)
		}
		return nil
	})
}
