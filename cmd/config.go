package cmd

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"gapfill.dev/pkg/gapfill/internal/adapter"
	"gapfill.dev/pkg/gapfill/internal/domain"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "gapfill"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	envPrefix = "GAPFILL"

	sourceRootKey = "paths.source_root"
	testsRootKey  = "paths.tests_root"
	extensionKey  = "paths.extension"

	remoteKey        = "vcs.remote"
	mainlineKey      = "vcs.mainline"
	botNameKey       = "vcs.bot_name"
	botEmailKey      = "vcs.bot_email"
	commitMessageKey = "vcs.commit_message"
	strictKey        = "vcs.strict"

	providerOrderKey  = "providers.order"
	noiseHostsKey     = "providers.noise_hosts"
	providerTimeout   = "providers.timeout"
	openAIModelKey    = "providers.openai.model"
	openAIBaseURLKey  = "providers.openai.base_url"
	geminiModelKey    = "providers.gemini.model"
	geminiBaseURLKey  = "providers.gemini.base_url"
	ollamaURLKey      = "providers.ollama.url"
	ollamaModelKey    = "providers.ollama.model"
	runnerCommandKey  = "runner.command"
	coverageDataKey   = "coverage.data_file"
	granularityKey    = "coverage.granularity"
	gapStrategyKey    = "gap.strategy"
	gapRevalidateKey  = "gap.revalidate"
	defaultDataFile   = ".coverage"
	defaultBotName    = "github-actions[bot]"
	defaultBotEmail   = "github-actions[bot]@users.noreply.github.com"
	defaultCommitMsg  = "auto: add pytest files generated by Copilot"
	defaultRemote     = "origin"
	defaultMainline   = "main"
	defaultTimeout    = time.Duration(0)
	defaultRevalidate = true

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogLevel      = "info"
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

// Credentials are read from the environment only and never written to gapfill.yaml.
const (
	openAIKeyEnv   = "OPENAI_API_KEY"
	openAIModelEnv = "OPENAI_MODEL"
	geminiKeyEnv   = "GEMINI_API_KEY"
	googleKeyEnv   = "GOOGLE_API_KEY"
	ollamaHostEnv  = "OLLAMA_HOST"
)

var globalLogger *slog.Logger

var keyReplacer = strings.NewReplacer("-", "_", ".", "_")

func init() {
	// A missing .env is the common case.
	_ = godotenv.Load()

	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(keyReplacer)

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return
		}

		slog.Warn("Failed to read config file", "file", configFileName, "error", err)
	}
}

func setDefaults(v *viper.Viper) {
	layout := domain.DefaultLayout("")

	v.SetDefault(configVersionKey, currentConfigVersion)

	v.SetDefault(sourceRootKey, layout.SourceRoot)
	v.SetDefault(testsRootKey, layout.TestsRoot)
	v.SetDefault(extensionKey, layout.Extension)

	v.SetDefault(remoteKey, defaultRemote)
	v.SetDefault(mainlineKey, defaultMainline)
	v.SetDefault(botNameKey, defaultBotName)
	v.SetDefault(botEmailKey, defaultBotEmail)
	v.SetDefault(commitMessageKey, defaultCommitMsg)
	v.SetDefault(strictKey, false)

	v.SetDefault(providerOrderKey, adapter.DefaultProviderOrder)
	v.SetDefault(noiseHostsKey, []string{})
	v.SetDefault(providerTimeout, defaultTimeout.String())
	v.SetDefault(openAIModelKey, adapter.DefaultOpenAIModel)
	v.SetDefault(openAIBaseURLKey, "")
	v.SetDefault(geminiModelKey, adapter.DefaultGeminiModel)
	v.SetDefault(geminiBaseURLKey, "")
	v.SetDefault(ollamaURLKey, "")
	v.SetDefault(ollamaModelKey, adapter.DefaultOllamaModel)

	v.SetDefault(runnerCommandKey, adapter.DefaultRunnerCommand)
	v.SetDefault(coverageDataKey, defaultDataFile)
	v.SetDefault(granularityKey, string(domain.GranularityFunction))
	v.SetDefault(gapStrategyKey, string(domain.GapMerge))
	v.SetDefault(gapRevalidateKey, defaultRevalidate)

	v.SetDefault(logFilenameKey, defaultLogFilename())
	v.SetDefault(logLevelKey, defaultLogLevel)
	v.SetDefault(logVerboseKey, defaultLogVerbose)
	v.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	v.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	v.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	v.SetDefault(logCompressKey, defaultLogCompress)
}

// defaultLogFilename keeps the log out of the working tree, which gets committed.
func defaultLogFilename() string {
	return filepath.Join(os.TempDir(), "gapfill.log")
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}

	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}

	return ""
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels, e.g. -4 for debug.
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at the configured level; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename()
	}

	logLevel := parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	if verbose {
		logLevel = slog.LevelDebug
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
