package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"filesplit/internal/config"
	"filesplit/internal/manifest"
	"filesplit/internal/restorer"
	"filesplit/internal/splitter"
	"filesplit/internal/watcher"
	"filesplit/pkg/progress"

	"github.com/spf13/cobra"
)

var (
	configPath string
	sizeLimit  uint64
	outputDir  string
	inputDir   string
	compress   bool
	strict     bool
	backupRoot string
	watchPath  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "filesplit",
		Short: "Split large files into verified chunks and restore them",
		Long:  "Splits files into bounded-size, optionally gzip-compressed chunks with a JSON manifest, and restores them byte-for-byte with checksum verification",
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "filesplit.yaml", "Path to YAML config with default settings")

	splitCmd := &cobra.Command{
		Use:   "split <files...>",
		Short: "Split one or more files into chunks",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSplit,
	}
	splitCmd.Flags().Uint64Var(&sizeLimit, "size-limit", 0, "Maximum plaintext bytes per chunk (default from config, 100MB)")
	splitCmd.Flags().StringVar(&outputDir, "output", "", "Root directory for chunk subdirectories (default from config)")
	splitCmd.Flags().BoolVar(&compress, "compress", false, "Gzip-compress each chunk")

	restoreCmd := &cobra.Command{
		Use:   "restore <manifests...>",
		Short: "Restore files from their split manifests",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRestore,
	}
	restoreCmd.Flags().StringVar(&inputDir, "input", ".", "Root directory containing the chunk subdirectories")
	restoreCmd.Flags().StringVar(&outputDir, "output", ".", "Directory for restored files")
	restoreCmd.Flags().BoolVar(&strict, "strict", false, "Treat checksum mismatches as errors instead of warnings")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List split files under a root directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return restorer.List(backupRoot)
		},
	}
	listCmd.Flags().StringVar(&backupRoot, "root", ".", "Root directory to scan for manifests")

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify every chunk of every split under a root directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return restorer.Verify(backupRoot)
		},
	}
	verifyCmd.Flags().StringVar(&backupRoot, "root", ".", "Root directory to scan for manifests")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a directory and split files as they appear",
		RunE:  runWatch,
	}
	watchCmd.Flags().StringVar(&watchPath, "watch", "", "Directory to watch for new files")
	watchCmd.Flags().StringVar(&outputDir, "output", "", "Root directory for chunk subdirectories (default from config)")
	watchCmd.Flags().BoolVar(&compress, "compress", false, "Gzip-compress each chunk")
	watchCmd.MarkFlagRequired("watch")

	rootCmd.AddCommand(splitCmd, restoreCmd, listCmd, verifyCmd, watchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file when it was asked for or already
// exists; otherwise the built-in defaults apply without touching disk.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if cmd.Flags().Changed("config") {
		return config.Load(configPath)
	}
	if _, err := os.Stat(configPath); err == nil {
		return config.Load(configPath)
	}
	return config.Default(), nil
}

// splitSettings resolves the effective chunk limit, output root and
// compression flag from flags and config.
func splitSettings(cmd *cobra.Command) (uint64, string, bool, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return 0, "", false, err
	}

	limit := cfg.ChunkLimit
	if cmd.Flags().Changed("size-limit") {
		limit = sizeLimit
	}
	root := cfg.OutputRoot
	if cmd.Flags().Changed("output") {
		root = outputDir
	}
	doCompress := cfg.Compress
	if cmd.Flags().Changed("compress") {
		doCompress = compress
	}
	return limit, root, doCompress, nil
}

func runSplit(cmd *cobra.Command, args []string) error {
	limit, root, doCompress, err := splitSettings(cmd)
	if err != nil {
		return err
	}

	log.Printf("Splitting %d files (limit %s, compress %v) into %s",
		len(args), progress.FormatSize(limit), doCompress, root)

	failed := 0
	for _, filePath := range args {
		reporter := progress.NewReporter()
		err := splitter.Split(filePath, limit, root, doCompress, splitter.Options{
			Progress: reporter.Update,
			Message:  reporter.Say,
		})
		if err != nil {
			log.Printf("Failed to split %s: %v", filePath, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to split", failed, len(args))
	}
	log.Println("All files split successfully")
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, manifestPath := range args {
		m, err := manifest.Load(manifestPath)
		if err != nil {
			log.Printf("Failed to load %s: %v", manifestPath, err)
			failed++
			continue
		}

		reporter := progress.NewReporter()
		err = restorer.Restore(m, inputDir, outputDir, restorer.Options{
			Progress: reporter.Update,
			Message:  reporter.Say,
			Strict:   strict,
		})
		if err != nil {
			log.Printf("Failed to restore %s: %v", m.OriginalName, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d restores failed", failed, len(args))
	}
	log.Println("All files restored successfully")
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	limit, root, doCompress, err := splitSettings(cmd)
	if err != nil {
		return err
	}

	if _, err := os.Stat(watchPath); os.IsNotExist(err) {
		return fmt.Errorf("watch path does not exist: %s", watchPath)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("invalid output root: %w", err)
	}

	w, err := watcher.New(time.Duration(cfg.WatchDebounceMs) * time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	if err := w.AddWatch(watchPath); err != nil {
		return fmt.Errorf("failed to add watch path: %w", err)
	}
	w.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Printf("Watching %s; splitting into %s. Press Ctrl+C to stop.", watchPath, root)

	for {
		select {
		case <-sigChan:
			log.Println("Shutdown signal received")
			return nil

		case event := <-w.Changes():
			if insideRoot(event.Path, absRoot) {
				continue
			}
			log.Printf("Splitting new file: %s", event.Path)
			err := splitter.Split(event.Path, limit, root, doCompress, splitter.Options{})
			if err != nil {
				log.Printf("Failed to split %s: %v", event.Path, err)
			}

		case err := <-w.Errors():
			log.Printf("Watcher error: %v", err)
		}
	}
}

// insideRoot reports whether path lives under root, so chunk files we
// write are never picked up and re-split.
func insideRoot(path, root string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return false
	}
	return rel == "." || !strings.HasPrefix(rel, "..")
}
