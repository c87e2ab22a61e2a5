package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stackvity/json-mirror/pkg/converter"
	"github.com/stackvity/json-mirror/pkg/converter/encoding"
)

const (
	EnvPrefix         = "JSONMIRROR"
	DefaultConfigName = "json-mirror"
)

// flagKeys lists the flags bound to viper keys of the same name. They must
// match the flags defined on the root command.
var flagKeys = []string{
	"input_dir", "output_dir", "relative_dir", "num_workers", "extensions",
	"encoding", "ensure_ascii", "fail_on_error", "output_format", "verbose",
}

// LoadAndValidate loads configuration from all sources (defaults, file, env, flags),
// validates the merged configuration, derives the output mode and absolute paths,
// and sets up the logger.
func LoadAndValidate(cfgFile, appVersion string, verbose bool, flags *pflag.FlagSet) (converter.Options, *slog.Logger, error) {
	var opts converter.Options
	v := viper.New()

	// Basic logger for errors that happen before the final level is known.
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		for _, dir := range configSearchPaths() {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) && cfgFile == "" {
			tempLogger.Debug("No configuration file found, using defaults/env/flags.")
		} else {
			configFileUsed := cfgFile
			if configFileUsed == "" {
				configFileUsed = fmt.Sprintf("searched locations for %s.yaml", DefaultConfigName)
			}
			tempLogger.Error("Error reading configuration file", slog.String("path", configFileUsed), slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("error reading config file '%s': %w", configFileUsed, err)
		}
	} else {
		opts.ConfigFilePath = v.ConfigFileUsed()
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for _, key := range flagKeys {
		flag := flags.Lookup(key)
		if flag == nil {
			tempLogger.Debug("Flag lookup failed during binding", slog.String("flag", key))
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			tempLogger.Error("Error binding flag", slog.String("flag", key), slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("error binding flag '--%s': %w", key, err)
		}
	}

	opts.AppVersion = appVersion
	if err := v.Unmarshal(&opts); err != nil {
		tempLogger.Error("Error unmarshalling configuration", slog.Any("error", err))
		return opts, tempLogger, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Explicit flags always win over file and env values.
	if flags.Changed("verbose") {
		opts.Verbose, _ = flags.GetBool("verbose")
	} else if verbose {
		opts.Verbose = true
	}
	if flags.Changed("no_tui") {
		if noTui, _ := flags.GetBool("no_tui"); noTui {
			opts.TuiEnabled = false
		}
	}

	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logHandler)
	opts.Logger = logHandler

	if opts.ConfigFilePath != "" {
		logger.Debug("Using configuration file", slog.String("path", opts.ConfigFilePath))
	}

	if err := validateAndDeriveOptions(&opts, logger, v.IsSet("num_workers")); err != nil {
		return opts, logger, err
	}

	logger.Debug("Configuration loading and validation complete",
		slog.String("configFile", opts.ConfigFilePath),
		slog.Bool("verbose", opts.Verbose),
		slog.String("logLevel", logLevel.String()),
	)
	return opts, logger, nil
}

// configSearchPaths returns the directories searched for json-mirror.yaml, in order.
func configSearchPaths() []string {
	paths := []string{".", filepath.Join(xdg.ConfigHome, DefaultConfigName)}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+DefaultConfigName))
	}
	return paths
}

// setDefaults establishes the default values for configuration options in Viper.
// num_workers has no viper default so that IsSet reports an explicit value.
func setDefaults(v *viper.Viper) {
	v.SetDefault("extensions", converter.DefaultExtensions)
	v.SetDefault("encoding", converter.DefaultEncoding)
	v.SetDefault("ensure_ascii", converter.DefaultEnsureASCII)
	v.SetDefault("fail_on_error", converter.DefaultFailOnError)
	v.SetDefault("output_format", string(converter.DefaultOutputFormat))
	v.SetDefault("tui_enabled", converter.DefaultTuiEnabled)
	v.SetDefault("verbose", converter.DefaultVerbose)
}

// isValidEnumValue checks if a given string value is present in a slice of allowed enum values.
func isValidEnumValue[T ~string](value T, allowedValues []T) bool {
	return slices.Contains(allowedValues, value)
}

// validateAndDeriveOptions checks the boundary rules and fills derived fields.
// Every error wraps converter.ErrInvalidInput.
func validateAndDeriveOptions(opts *converter.Options, logger *slog.Logger, workersSet bool) error {
	// === Input directory ===
	if opts.InputPath == "" {
		err := fmt.Errorf("%w: input directory is required (--input_dir)", converter.ErrInvalidInput)
		logger.Error(err.Error(), slog.String("key", "input_dir"))
		return err
	}
	absInput, err := filepath.Abs(opts.InputPath)
	if err != nil {
		err = fmt.Errorf("%w: cannot resolve absolute input path '%s': %w", converter.ErrInvalidInput, opts.InputPath, err)
		logger.Error(err.Error(), slog.String("key", "input_dir"), slog.String("value", opts.InputPath))
		return err
	}
	opts.InputPath = absInput
	info, err := os.Stat(opts.InputPath)
	if err != nil {
		if os.IsNotExist(err) {
			err = fmt.Errorf("%w: input directory '%s' does not exist", converter.ErrInvalidInput, opts.InputPath)
		} else {
			err = fmt.Errorf("%w: cannot access input directory '%s': %w", converter.ErrInvalidInput, opts.InputPath, err)
		}
		logger.Error(err.Error(), slog.String("key", "input_dir"), slog.String("value", opts.InputPath))
		return err
	}
	if !info.IsDir() {
		err = fmt.Errorf("%w: input path '%s' is not a directory", converter.ErrInvalidInput, opts.InputPath)
		logger.Error(err.Error(), slog.String("key", "input_dir"), slog.String("value", opts.InputPath))
		return err
	}
	logger.Debug("Validated input directory", slog.String("path", opts.InputPath))

	// === Output mode ===
	if opts.OutputDir != "" {
		absOutput, absErr := filepath.Abs(opts.OutputDir)
		if absErr != nil {
			err = fmt.Errorf("%w: cannot resolve absolute output path '%s': %w", converter.ErrInvalidInput, opts.OutputDir, absErr)
			logger.Error(err.Error(), slog.String("key", "output_dir"), slog.String("value", opts.OutputDir))
			return err
		}
		opts.OutputDir = absOutput
	}
	mode, err := converter.OutputModeFrom(opts.OutputDir, opts.RelativeDir)
	if err != nil {
		logger.Error(err.Error(), slog.String("output_dir", opts.OutputDir), slog.String("relative_dir", opts.RelativeDir))
		return err
	}
	opts.OutputMode = mode

	// === Workers ===
	if workersSet && opts.Workers < 1 {
		err = fmt.Errorf("%w: invalid value '%d' for key 'num_workers' (flag --num_workers). Must be >= 1", converter.ErrInvalidInput, opts.Workers)
		logger.Error(err.Error(), slog.String("key", "num_workers"), slog.Int("value", opts.Workers))
		return err
	}
	if opts.Workers == 0 {
		opts.Workers = converter.DefaultWorkers()
		logger.Debug("num_workers not set, defaulting to 80% of CPUs", slog.Int("workers", opts.Workers))
	}

	// === Extensions ===
	set := converter.NewExtensionSet(opts.Extensions...)
	if len(set) == 0 {
		err = fmt.Errorf("%w: extensions must contain at least one non-empty suffix", converter.ErrInvalidInput)
		logger.Error(err.Error(), slog.String("key", "extensions"))
		return err
	}
	opts.Extensions = set.Sorted()

	// === Enum string validations ===
	if _, decErr := encoding.NewDecoder(opts.Encoding); decErr != nil {
		err = fmt.Errorf("%w: invalid value '%s' for key 'encoding' (flag --encoding): %w", converter.ErrInvalidInput, opts.Encoding, decErr)
		logger.Error(err.Error(), slog.String("key", "encoding"), slog.String("value", opts.Encoding))
		return err
	}
	if !isValidEnumValue(opts.OutputFormat, converter.OutputFormats) {
		err = fmt.Errorf("%w: invalid value '%s' for key 'output_format' (flag --output_format). Allowed: %v", converter.ErrInvalidInput, opts.OutputFormat, converter.OutputFormats)
		logger.Error(err.Error(), slog.String("key", "output_format"), slog.String("value", string(opts.OutputFormat)))
		return err
	}

	// Debug output and the TUI both want stderr.
	if opts.Verbose && opts.TuiEnabled {
		logger.Debug("Verbose mode enabled, TUI disabled")
		opts.TuiEnabled = false
	}

	logger.Debug("Final derived settings validated",
		slog.String("outputMode", opts.OutputMode.String()),
		slog.Int("workers", opts.Workers),
		slog.Any("extensions", opts.Extensions),
		slog.String("encoding", opts.Encoding),
		slog.Bool("ensureASCII", opts.EnsureASCII),
		slog.Bool("tuiEnabledEffective", opts.TuiEnabled),
	)
	return nil
}
