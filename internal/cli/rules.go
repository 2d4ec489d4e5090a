package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	addCondition string
	addDisabled  bool

	editSymbol    string
	editTarget    string
	editCondition string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage alert rules",
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <symbol> <target-price>",
	Short: "Add a new alert rule",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rule, err := getApp().AddRule(cmd.Context(), args[0], args[1], addCondition, !addDisabled)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "added rule %s: %s %s %s\n",
			rule.ID, rule.Symbol, string(rule.Condition), rule.Target.String())
		return nil
	},
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all alert rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().ListRules(cmd.Context())
	},
}

var rulesEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Re-arm a rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().SetRuleEnabled(cmd.Context(), args[0], true)
	},
}

var rulesDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Disable a rule without deleting it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().SetRuleEnabled(cmd.Context(), args[0], false)
	},
}

var rulesRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete a rule permanently",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().RemoveRule(cmd.Context(), args[0])
	},
}

var rulesEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit fields of an existing rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rule, err := getApp().EditRule(cmd.Context(), args[0], editSymbol, editTarget, editCondition)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "updated rule %s: %s %s %s\n",
			rule.ID, rule.Symbol, string(rule.Condition), rule.Target.String())
		return nil
	},
}

func init() {
	rulesAddCmd.Flags().StringVar(&addCondition, "condition", ">=", "Trigger condition: >= or <=")
	rulesAddCmd.Flags().BoolVar(&addDisabled, "disabled", false, "Create the rule disabled")

	rulesEditCmd.Flags().StringVar(&editSymbol, "symbol", "", "New symbol")
	rulesEditCmd.Flags().StringVar(&editTarget, "target", "", "New target price")
	rulesEditCmd.Flags().StringVar(&editCondition, "condition", "", "New condition: >= or <=")

	rulesCmd.AddCommand(rulesAddCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesEnableCmd)
	rulesCmd.AddCommand(rulesDisableCmd)
	rulesCmd.AddCommand(rulesRemoveCmd)
	rulesCmd.AddCommand(rulesEditCmd)
}
