package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/execution-hub/repo-automation/internal/domain/rule"
	"github.com/execution-hub/repo-automation/internal/infrastructure/natsx"
)

var (
	runNATSURL string
	runSubject string
	runTimeout time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the enabled rules for an issue or pull request",
	Long: `Run the enabled rules for one issue or pull request and print the
per-rule results.

By default rules run in this process against the configured store. With
--nats the request is sent to the workers listening on the event subject
and the reply is printed instead.`,
}

var runIssueCmd = &cobra.Command{
	Use:   "issue <owner/repo> <number>",
	Short: "Run ISSUE rules for an issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRules(cmd, rule.ResourceTypeIssue, args)
	},
}

var runPullCmd = &cobra.Command{
	Use:     "pr <owner/repo> <number>",
	Aliases: []string{"pull"},
	Short:   "Run PULL_REQUEST rules for a pull request",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRules(cmd, rule.ResourceTypePullRequest, args)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.AddCommand(runIssueCmd, runPullCmd)

	runCmd.PersistentFlags().StringVar(&runNATSURL, "nats", "", "Send the run to workers on this NATS server instead of running locally")
	runCmd.PersistentFlags().StringVar(&runSubject, "subject", natsx.DefaultSubject, "NATS subject workers listen on")
	runCmd.PersistentFlags().DurationVar(&runTimeout, "timeout", time.Minute, "Maximum time to wait for the run")
}

func runRules(cmd *cobra.Command, kind rule.ResourceType, args []string) error {
	owner, repo, err := parseRepo(args[0])
	if err != nil {
		return err
	}
	number, err := strconv.Atoi(args[1])
	if err != nil || number <= 0 {
		return fmt.Errorf("invalid number %q", args[1])
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	var results []rule.ExecutionResult
	if runNATSURL != "" {
		results, err = runRemote(ctx, kind, owner, repo, number)
	} else {
		results, err = runLocal(ctx, kind, owner, repo, number)
	}
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), results)
}

func runLocal(ctx context.Context, kind rule.ResourceType, owner, repo string, number int) ([]rule.ExecutionResult, error) {
	engine, err := openEngine(ctx)
	if err != nil {
		return nil, err
	}
	defer engine.Close()

	if kind == rule.ResourceTypePullRequest {
		return engine.Service.ExecuteRulesForPullRequest(ctx, owner, repo, number)
	}
	return engine.Service.ExecuteRulesForIssue(ctx, owner, repo, number)
}

func runRemote(ctx context.Context, kind rule.ResourceType, owner, repo string, number int) ([]rule.ExecutionResult, error) {
	nc, err := natsx.Connect(runNATSURL, "automationctl", newLogger())
	if err != nil {
		return nil, err
	}
	defer nc.Close()

	return natsx.Request(ctx, nc, runSubject, natsx.Event{Kind: kind, Owner: owner, Repo: repo, Number: number})
}
