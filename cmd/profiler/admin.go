package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emilianohg/profiler/internal/db"
	"github.com/emilianohg/profiler/internal/transfer"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export all data to a JSON file",
	Long: `Export every candidate, interview and profile to a JSON file.
Without a file the export is written to exports_dir from the config.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		env := mustOpenEnv(ctx)
		defer env.Close()

		now := time.Now()
		path := filepath.Join(env.cfg.ExportsDir, transfer.DefaultFileName(now))
		if len(args) > 0 {
			path = args[0]
		}

		summary, err := transfer.ExportFile(ctx, env.store, path, now)
		if err != nil {
			env.log.Error("export failed", err, zap.String("path", path))
			fail("Error exporting", err)
		}
		env.log.Info("exported data", zap.String("path", path), zap.Stringer("summary", summary))
		fmt.Printf("Exported %s to %s\n", summary, path)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all data with the contents of an export file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		yes, _ := cmd.Flags().GetBool("yes")
		ctx := cmd.Context()

		env := mustOpenEnv(ctx)
		defer env.Close()

		if !yes && !confirm(os.Stdin, os.Stdout, "Importing replaces every candidate, interview and profile. Continue?") {
			return
		}

		summary, err := transfer.ImportFile(ctx, env.store, args[0])
		if err != nil {
			env.log.Error("import failed", err, zap.String("path", args[0]))
			fail("Error importing", err)
		}
		env.log.Info("imported data", zap.String("path", args[0]), zap.Stringer("summary", summary))
		fmt.Printf("Imported %s\n", summary)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run pending database migrations",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		database, err := db.Open()
		if err != nil {
			fail("Error opening database", err)
		}
		defer database.Close()

		if err := db.RunMigrations(database); err != nil {
			fail("Error running migrations", err)
		}

		status, err := db.GetMigrationStatus(database)
		if err != nil {
			fail("Error reading migration status", err)
		}
		fmt.Printf("Schema version: %d of %d\n", status.CurrentVersion, status.LatestVersion)
		if status.Dirty {
			fmt.Println("Warning: the database is marked dirty")
		}
	},
}

func init() {
	importCmd.Flags().BoolP("yes", "y", false, "Import without asking for confirmation")
}
