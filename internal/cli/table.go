package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <id>",
		Short: "Get an entity by ID",
		Long: `Get retrieves an entity from the specified table by its ID and prints it as JSON.

Valid table names: articles, lessons, products, carts`,
		Example: "  academy get lessons 3\n  academy get carts default",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(func(e *env) error {
				tbl, err := e.table(args[0])
				if err != nil {
					return err
				}
				entity, err := tbl.Get(args[1])
				if err != nil {
					return fmt.Errorf("get %s %q: %w", args[0], args[1], err)
				}
				return printJSON(cmd, entity)
			})
		},
	}
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <table> <id> <json>",
		Short: "Create or update an entity in a table",
		Long: `Set stores the JSON entity under id. An empty id ("") assigns the next
integer id, or a new UUID for carts. The stored entity is printed back.`,
		Example: `  academy set articles "" '{"title":"Breathing basics"}'
  academy set products 4 '{"name":"Yoga mat","price":"19.99"}'`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(func(e *env) error {
				tbl, err := e.table(args[0])
				if err != nil {
					return err
				}
				entity, err := decodeEntity(args[0], []byte(args[2]))
				if err != nil {
					return err
				}
				savedID, err := tbl.Set(args[1], entity)
				if err != nil {
					return fmt.Errorf("set %s: %w", args[0], err)
				}
				saved, err := tbl.Get(savedID)
				if err != nil {
					return sysError(fmt.Errorf("get saved entity: %w", err))
				}
				return printJSON(cmd, saved)
			})
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <table> [key=value...]",
		Short: "List entities with optional filters",
		Long: `List queries entities from the specified table. Filters are key=value
pairs; values that parse as JSON keep their type.

Filters: articles ids=[1,2] limit=N; lessons locked=true limit=N;
products category=NAME limit=N; carts limit=N`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(args[1:])
			if err != nil {
				return err
			}
			return withEnv(func(e *env) error {
				tbl, err := e.table(args[0])
				if err != nil {
					return err
				}
				entities, err := tbl.Fetch(filter)
				if err != nil {
					return fmt.Errorf("list %s: %w", args[0], err)
				}
				return printJSON(cmd, entities)
			})
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <id>",
		Short: "Delete an entity by ID",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(func(e *env) error {
				tbl, err := e.table(args[0])
				if err != nil {
					return err
				}
				if err := tbl.Delete(args[1]); err != nil {
					return fmt.Errorf("delete %s %q: %w", args[0], args[1], err)
				}
				if flags.jsonMode {
					return printJSON(cmd, map[string]string{"deleted": args[1], "table": args[0]})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", args[0], args[1])
				return nil
			})
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <table> <file.jsonl>",
		Short: "Import entities from a JSONL file",
		Long: `Import reads one JSON entity per line and stores each with its own id
(or a new one when the entity has none). Import stops at the first invalid
record; records before it stay stored.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return userError(fmt.Errorf("open %s: %w", args[1], err))
			}
			defer f.Close()

			return withEnv(func(e *env) error {
				tbl, err := e.table(args[0])
				if err != nil {
					return err
				}

				dec := json.NewDecoder(f)
				count := 0
				for {
					var raw json.RawMessage
					err := dec.Decode(&raw)
					if err == io.EOF {
						break
					}
					if err != nil {
						return userError(fmt.Errorf("record %d: parse JSON: %w", count+1, err))
					}
					entity, err := decodeEntity(args[0], raw)
					if err != nil {
						return fmt.Errorf("record %d: %w", count+1, err)
					}
					if _, err := tbl.Set("", entity); err != nil {
						return fmt.Errorf("record %d: %w", count+1, err)
					}
					count++
				}

				if flags.jsonMode {
					return printJSON(cmd, map[string]any{"table": args[0], "imported": count})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d %s\n", count, args[0])
				return nil
			})
		},
	}
}
