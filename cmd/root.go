// Package cmd provides the root command and CLI setup for gapfill.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gapfill.dev/pkg/gapfill/internal/adapter"
	"gapfill.dev/pkg/gapfill/internal/controller"
	"gapfill.dev/pkg/gapfill/internal/domain"
	m "gapfill.dev/pkg/gapfill/internal/model"
)

const rootLongDescription = `Gapfill generates pytest tests for the Python modules changed on this branch.

It asks the configured assistants for a test suite per changed module under src/,
writes the cleaned result to tests/test_<module>.py and runs pytest with coverage.
Functions left uncovered get targeted follow-up requests. When the suite passes
the generated files are committed and pushed; when it fails they are rolled back.

Settings come from gapfill.yaml (see "gapfill init") and GAPFILL_* variables.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "gapfill",
		Short:         "Generate pytest tests for changed Python modules",
		Long:          rootLongDescription,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd)
		},
	}
}

func runPipeline(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}

	shell := adapter.NewLocalShellAdapter(cmd.OutOrStdout(), cmd.ErrOrStderr())

	workflow, err := newWorkflow(cmd, shell, m.Path(workDir))
	if err != nil {
		return err
	}

	_, err = workflow.Run(ctx, runArgs())
	if errors.Is(err, domain.ErrNoWork) {
		return nil
	}

	return err
}

func runArgs() domain.RunArgs {
	return domain.RunArgs{
		Strategy:   domain.ParseGapStrategy(viper.GetString(gapStrategyKey)),
		Revalidate: viper.GetBool(gapRevalidateKey),
	}
}

// newWorkflow assembles the pipeline from the current configuration.
func newWorkflow(cmd *cobra.Command, shell adapter.ShellAdapter, workDir m.Path) (domain.Workflow, error) {
	layout := domain.Layout{
		WorkDir:    workDir,
		SourceRoot: viper.GetString(sourceRootKey),
		TestsRoot:  viper.GetString(testsRootKey),
		Extension:  viper.GetString(extensionKey),
	}

	providers, err := domain.SelectProviders(viper.GetStringSlice(providerOrderKey), providerCatalog(shell, string(workDir)))
	if err != nil {
		return nil, fmt.Errorf("configure providers: %w", err)
	}

	fsAdapter := adapter.NewLocalSourceFSAdapter()
	pythonAdapter := adapter.NewLocalPythonFileAdapter()
	strict := viper.GetBool(strictKey)
	vcs := adapter.NewGitAdapter(shell, string(workDir), strict)
	extractor := domain.NewFunctionExtractor(fsAdapter, pythonAdapter)
	materializer := domain.NewMaterializer(fsAdapter, pythonAdapter, layout)

	pipeline := domain.Pipeline{
		Detector:     domain.NewChangeDetector(vcs, fsAdapter, layout, viper.GetString(remoteKey), viper.GetString(mainlineKey)),
		Extractor:    extractor,
		Suggester:    domain.NewSuggester(providers, viper.GetDuration(providerTimeout)),
		Sanitizer:    domain.NewSanitizer(pythonAdapter, viper.GetStringSlice(noiseHostsKey)),
		Materializer: materializer,
		Validator: domain.NewValidator(
			adapter.NewLocalTestRunnerAdapter(shell, viper.GetStringSlice(runnerCommandKey)),
			layout,
		),
		Analyzer: domain.NewCoverageAnalyzer(
			adapter.NewCoverageStore(),
			fsAdapter,
			extractor,
			layout,
			viper.GetString(coverageDataKey),
			domain.ParseGranularity(viper.GetString(granularityKey)),
		),
		Publisher: domain.NewPublisher(
			vcs,
			materializer,
			layout,
			domain.Identity{Name: viper.GetString(botNameKey), Email: viper.GetString(botEmailKey)},
			viper.GetString(commitMessageKey),
			strict,
		),
	}

	ui := controller.NewUI(cmd, controller.IsTTY(os.Stdout))

	return domain.NewWorkflow(fsAdapter, ui, pipeline), nil
}

func providerCatalog(shell adapter.ShellAdapter, workDir string) map[string]adapter.Provider {
	return map[string]adapter.Provider{
		adapter.ProviderGHCopilot:  adapter.NewGHCopilotProvider(shell, workDir),
		adapter.ProviderCopilotCLI: adapter.NewCopilotCLIProvider(shell, workDir),
		adapter.ProviderOpenAI: adapter.NewOpenAIProvider(
			firstEnv(openAIKeyEnv),
			firstNonEmpty(os.Getenv(openAIModelEnv), viper.GetString(openAIModelKey)),
			viper.GetString(openAIBaseURLKey),
		),
		adapter.ProviderGemini: adapter.NewGeminiProvider(
			firstEnv(geminiKeyEnv, googleKeyEnv),
			viper.GetString(geminiModelKey),
			viper.GetString(geminiBaseURLKey),
		),
		adapter.ProviderOllama: adapter.NewOllamaProvider(
			firstNonEmpty(viper.GetString(ollamaURLKey), os.Getenv(ollamaHostEnv)),
			viper.GetString(ollamaModelKey),
		),
	}
}

// exitCode maps a run error to the process exit status.
func exitCode(err error) int {
	if err == nil || errors.Is(err, domain.ErrNoWork) {
		return 0
	}

	var fatal *adapter.ShellFatalError
	if errors.As(err, &fatal) && fatal.ExitCode != 0 {
		return fatal.ExitCode
	}

	return 1
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()

	if code := exitCode(err); code != 0 {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(code)
	}
}
