package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/execution-hub/repo-automation/internal/application/rulestore"
	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

var (
	rulesJSON       bool
	importFormat    string
	importCreatedBy string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and edit stored rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer engine.Close()

		rules := engine.Service.GetRules()
		if rulesJSON {
			return printJSON(cmd.OutOrStdout(), rules)
		}
		writeRuleTable(cmd, rules)
		return nil
	},
}

var rulesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import rules from a YAML or JSONC rule file",
	Long: `Import rules from a rule file:

  schemaVersion: "1.0"
  rules:
    - name: Label bugs
      resourceType: ISSUE
      enabled: true
      conditions: {operator: AND, conditions: [{type: TITLE_CONTAINS, value: bug}]}
      actions: [{type: ADD_LABEL, label: bug}]

The format is taken from the file extension unless --format is given.
Import stops at the first invalid rule. Rules before it are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		format := importFormat
		if format == "" {
			format = formatFromPath(args[0])
		}

		engine, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer engine.Close()

		created, err := engine.Service.ImportRules(cmd.Context(), data, format, importCreatedBy)
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rule(s)\n", len(created))
		return err
	},
}

var rulesDeleteCmd = &cobra.Command{
	Use:   "delete <rule-id>",
	Short: "Delete a rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid rule id %q", args[0])
		}
		engine, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer engine.Close()

		removed, err := engine.Service.DeleteRule(cmd.Context(), id)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("rule %s not found", id)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
		return nil
	},
}

var rulesEnableCmd = &cobra.Command{
	Use:   "enable <rule-id>",
	Short: "Enable a rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd.Context(), cmd, args[0], true)
	},
}

var rulesDisableCmd = &cobra.Command{
	Use:   "disable <rule-id>",
	Short: "Disable a rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd.Context(), cmd, args[0], false)
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesImportCmd, rulesDeleteCmd, rulesEnableCmd, rulesDisableCmd)

	rulesListCmd.Flags().BoolVar(&rulesJSON, "json", false, "Print rules as JSON")
	rulesImportCmd.Flags().StringVar(&importFormat, "format", "", "Rule file format: yaml or jsonc")
	rulesImportCmd.Flags().StringVar(&importCreatedBy, "created-by", "automationctl", "Author recorded on imported rules")
}

func setEnabled(ctx context.Context, cmd *cobra.Command, rawID string, enabled bool) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid rule id %q", rawID)
	}
	engine, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer engine.Close()

	updated, err := engine.Service.UpdateRule(ctx, id, rule.Patch{Enabled: &enabled})
	if err != nil {
		return err
	}
	if updated == nil {
		return fmt.Errorf("rule %s not found", id)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s enabled=%t\n", updated.ID, updated.Enabled)
	return nil
}

func writeRuleTable(cmd *cobra.Command, rules []*rule.Rule) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tRESOURCE\tENABLED\tACTIONS")
	for _, r := range rules {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%d\n", r.ID, r.Name, r.ResourceType, r.Enabled, len(r.Actions))
	}
	_ = tw.Flush()
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return rulestore.FormatJSONC
	default:
		return rulestore.FormatYAML
	}
}
