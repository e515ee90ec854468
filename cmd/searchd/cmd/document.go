package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/searchd/internal/daemon"
	"github.com/Aman-CERP/searchd/internal/output"
	"github.com/Aman-CERP/searchd/internal/scheduler"
	"github.com/Aman-CERP/searchd/internal/task"
)

func newDocumentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "document",
		Short: "Add, fetch, and delete documents",
	}
	cmd.AddCommand(newDocumentAddCmd())
	cmd.AddCommand(newDocumentGetCmd())
	cmd.AddCommand(newDocumentDeleteCmd())
	return cmd
}

// payloadDirFor derives the payload staging directory the running
// daemon reads from, the same join serve.go uses.
func payloadDirFor(dataDir string) string {
	return filepath.Join(dataDir, "payloads")
}

func newDocumentAddCmd() *cobra.Command {
	var (
		file               string
		format             string
		primaryKey         string
		update             bool
		allowIndexCreation bool
	)
	cmd := &cobra.Command{
		Use:   "add <index-uid>",
		Short: "Stage a document payload and register an addition task",
		Long: `add reads a JSON array, NDJSON, or CSV payload (--file, or stdin
if omitted), writes it to the engine's pending-payload tree under a
scheduler-allocated UUID, and registers a document_addition_or_update
task referencing it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var r io.Reader = c.InOrStdin()
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", file, err)
				}
				defer f.Close()
				r = f
			}

			payloadDir := payloadDirFor(cfg.DataDir)
			if err := os.MkdirAll(payloadDir, 0o755); err != nil {
				return fmt.Errorf("failed to create payload directory: %w", err)
			}

			contentUUID, path := scheduler.PayloadFile(payloadDir)
			out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if err != nil {
				return fmt.Errorf("failed to stage payload: %w", err)
			}
			n, copyErr := io.Copy(out, r)
			closeErr := out.Close()
			if copyErr != nil {
				os.Remove(path)
				return fmt.Errorf("failed to stage payload: %w", copyErr)
			}
			if closeErr != nil {
				os.Remove(path)
				return fmt.Errorf("failed to stage payload: %w", closeErr)
			}

			method := task.MethodReplace
			if update {
				method = task.MethodUpdate
			}

			client, err := daemonClient()
			if err != nil {
				return err
			}
			t, err := client.RegisterTask(c.Context(), daemon.TaskRegisterParams{
				IndexUID: args[0],
				Content: task.Content{
					Kind:               task.ContentDocumentAdditionOrUpdate,
					ContentUUID:        contentUUID,
					Format:             format,
					Method:             method,
					PrimaryKey:         primaryKey,
					AllowIndexCreation: allowIndexCreation,
				},
			})
			if err != nil {
				os.Remove(path)
				return err
			}

			output.New(c.OutOrStdout()).Success(fmt.Sprintf("registered task %d: %d bytes staged for index %q", t.ID, n, args[0]))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "payload file (defaults to stdin)")
	cmd.Flags().StringVar(&format, "format", "json", "payload format: json, ndjson, or csv")
	cmd.Flags().StringVar(&primaryKey, "primary-key", "", "primary key field name")
	cmd.Flags().BoolVar(&update, "update", false, "merge into existing documents instead of replacing them")
	cmd.Flags().BoolVar(&allowIndexCreation, "allow-index-creation", true, "create the index if it does not exist")
	return cmd
}

func newDocumentGetCmd() *cobra.Command {
	var fields []string
	cmd := &cobra.Command{
		Use:   "get <index-uid> <external-id>",
		Short: "Project one document by its external id (component B)",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			client, err := daemonClient()
			if err != nil {
				return err
			}
			doc, err := client.GetDocument(c.Context(), daemon.DocumentGetParams{
				IndexUID:   args[0],
				ExternalID: args[1],
				Fields:     fields,
			})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(c.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		},
	}
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "only retrieve these fields")
	return cmd
}

func newDocumentDeleteCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "delete <index-uid> [document-id ...]",
		Short: "Register a document deletion task, by id or by filter",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			indexUID := args[0]
			ids := args[1:]
			if filter == "" && len(ids) == 0 {
				return fmt.Errorf("either document ids or --filter must be given")
			}
			if filter != "" && len(ids) > 0 {
				return fmt.Errorf("document ids and --filter are mutually exclusive")
			}

			content := task.Content{Kind: task.ContentDocumentDeletion, DocumentIDs: ids}
			if filter != "" {
				content = task.Content{Kind: task.ContentDocumentDeletionByFilter, Filter: filter}
			}

			client, err := daemonClient()
			if err != nil {
				return err
			}
			t, err := client.RegisterTask(c.Context(), daemon.TaskRegisterParams{
				IndexUID: indexUID,
				Content:  content,
			})
			if err != nil {
				return err
			}
			output.New(c.OutOrStdout()).Success(fmt.Sprintf("registered task %d", t.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "delete every document matching this filter instead of explicit ids")
	return cmd
}
