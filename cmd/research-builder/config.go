// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-builder/internal/generate"
	"github.com/pdiddy/research-builder/pkg/types"
)

// setDefaults registers the built-in value of every configuration key.
func setDefaults() {
	viper.SetDefault("catalog", "investigaciones_config.json")
	viper.SetDefault("templates_dir", "templates")
	viper.SetDefault("images_dir", "images")
	viper.SetDefault("work_dir", "Investigaciones_Finales")
	viper.SetDefault("archive_dir", "PDFs_Compilados")
	viper.SetDefault("history_db", ".research-builder/history.db")
	viper.SetDefault("subjects", []string{})
	viper.SetDefault("generation.model", generate.DefaultModel)
	viper.SetDefault("generation.base_url", "")
	viper.SetDefault("compile.engine", "pdflatex")
	viper.SetDefault("compile.bibliography", "bibtex")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.encoding", "console")

	// Nested keys are reachable from the environment as
	// RESEARCH_BUILDER_GENERATION_MODEL and so on.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

// bindFlags binds viper keys to flags so a flag set on the command line
// overrides the config file and environment.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", flag, err))
		}
	}
}

// loadBuildConfig resolves the effective configuration from defaults,
// config file, environment, and flags.
func loadBuildConfig() (types.BuildConfig, error) {
	var cfg types.BuildConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.BuildConfig{}, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}
