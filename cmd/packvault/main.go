// Package main is the entry point for the packvault application.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/term" //nolint:depguard // Required for TTY detection

	"github.com/joe/packvault/internal/catalog"
	"github.com/joe/packvault/internal/config"
	"github.com/joe/packvault/internal/transfer"
	"github.com/joe/packvault/internal/tui"
	"github.com/joe/packvault/pkg/formatters"
	"github.com/joe/packvault/pkg/vault"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

//nolint:cyclop // Top-level dispatch reads better flat than split
func run(cfg *config.Config) error {
	ctx := context.Background()

	pack, err := catalog.LoadPack(cfg.StoreDir, cfg.Pack)
	if err != nil {
		return err
	}

	local, err := vault.NewLocalStore(filepath.Join(cfg.StoreDir, "blobs"))
	if err != nil {
		return err
	}
	defer func() { _ = local.Close() }()

	location, err := vault.ParseLocation(cfg.VaultURL)
	if err != nil {
		return err
	}

	remote, err := location.Open()
	if err != nil {
		return err
	}
	defer func() { _ = remote.Close() }()

	localBlobs, err := local.List(ctx)
	if err != nil {
		return err
	}

	remoteBlobs, err := remote.List(ctx)
	if err != nil {
		return err
	}

	filter := catalog.NewGlobFilter(cfg.Pattern)

	if cfg.Mode == config.Status {
		printStatus(os.Stdout, pack, localBlobs, remoteBlobs)
		return nil
	}

	var (
		plan     catalog.Plan
		executor transfer.Executor
		labels   tui.PhaseLabels
	)

	switch cfg.Mode {
	case config.Push:
		plan = catalog.PlanPush(pack, localBlobs, remoteBlobs, filter)
		executor = vault.PushExecutor(local, remote)
		labels = tui.PhaseLabels{Backup: "Pushing to vault", Cleanup: "Freeing local space"}
	case config.Pull:
		plan = catalog.PlanPull(pack, localBlobs, remoteBlobs, filter)
		executor = vault.PullExecutor(remote, local)
		labels = tui.PhaseLabels{Backup: "Pulling from vault"}
	case config.Cleanup:
		plan = catalog.PlanCleanup(pack, localBlobs, remoteBlobs, filter)
		executor = vault.CleanupExecutor(local, remote)
		labels = tui.PhaseLabels{Backup: "Freeing local space"}
	case config.Status:
		// Handled above.
	}

	if len(plan.Items) == 0 {
		fmt.Printf("%s: nothing to do (%d blob(s) already in place)\n", cfg.Mode, plan.Skipped)
		return nil
	}

	return runTransfer(ctx, cfg, pack, plan, executor, labels, local, remote, filter)
}

//nolint:funlen // Wiring the chain, logging, and both UIs in one place
func runTransfer(
	ctx context.Context,
	cfg *config.Config,
	pack *catalog.Pack,
	plan catalog.Plan,
	executor transfer.Executor,
	labels tui.PhaseLabels,
	local, remote vault.Store,
	filter catalog.BlobFilter,
) error {
	chain := transfer.NewChain()
	chain.Backup.Verbose = cfg.Verbose
	chain.Cleanup.Verbose = cfg.Verbose

	if cfg.LogFile != "" {
		if err := chain.Backup.EnableFileLogging(cfg.LogFile); err != nil {
			return err
		}
		defer chain.Backup.CloseLog()
	}

	// The cleanup set is resolved when phase 2 actually starts, against fresh
	// listings, so only blobs confirmed in the vault are candidates.
	resolver := func(ctx context.Context) ([]transfer.Item, error) {
		localNow, err := local.List(ctx)
		if err != nil {
			return nil, err
		}

		remoteNow, err := remote.List(ctx)
		if err != nil {
			return nil, err
		}

		return catalog.PlanCleanup(pack, localNow, remoteNow, filter).Items, nil
	}

	opts := transfer.ChainOptions{
		CleanupRequested: cfg.Cleanup,
		ResolveCleanup:   resolver,
		CleanupExecutor:  vault.CleanupExecutor(local, remote),
	}

	start := func() error {
		return chain.Run(ctx, plan.Items, executor, opts)
	}

	phaseCount := 1
	if cfg.Cleanup {
		phaseCount = 2
	}

	if cfg.Plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		tui.NewPlainReporter(os.Stdout, labels.Backup).Attach(chain.Backup)

		if cfg.Cleanup {
			tui.NewPlainReporter(os.Stdout, labels.Cleanup).Attach(chain.Cleanup)
		}

		err := start()
		if errors.Is(err, transfer.ErrItemsFailed) {
			// Already reported per item; exit nonzero without the wrapper.
			os.Exit(1)
		}

		return err
	}

	if err := tui.Run(tui.NewTransferScreen(chain, start, labels, phaseCount)); err != nil {
		return err
	}

	if chain.State() != transfer.ChainCompleted {
		os.Exit(1)
	}

	return nil
}

// printStatus lists each blob in the pack with its local and vault presence.
func printStatus(out *os.File, pack *catalog.Pack, localBlobs, remoteBlobs map[string]int64) {
	blobs := make([]catalog.Blob, len(pack.Blobs))
	copy(blobs, pack.Blobs)
	sort.Slice(blobs, func(i, j int) bool { return blobs[i].DisplayNameOrID() < blobs[j].DisplayNameOrID() })

	var localBytes, remoteBytes int64

	fmt.Fprintf(out, "Pack %s: %d blob(s)\n", pack.Name, len(blobs))

	for _, blob := range blobs {
		_, haveLocal := localBlobs[blob.ID]
		_, haveRemote := remoteBlobs[blob.ID]

		marker := func(present bool) string {
			if present {
				return "✓"
			}
			return "-"
		}

		if haveLocal {
			localBytes += blob.SizeBytes
		}

		if haveRemote {
			remoteBytes += blob.SizeBytes
		}

		fmt.Fprintf(out, "  local %s  vault %s  %10s  %s\n",
			marker(haveLocal), marker(haveRemote),
			formatters.FormatBytes(blob.SizeBytes), blob.DisplayNameOrID())
	}

	fmt.Fprintf(out, "Local: %s  Vault: %s\n",
		formatters.FormatBytes(localBytes), formatters.FormatBytes(remoteBytes))
}
