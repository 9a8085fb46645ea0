package types

// GenerationConfig holds settings for the content generation stage.
type GenerationConfig struct {
	// Model is the chat model identifier (default "gpt-4o").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// BaseURL overrides the API endpoint (optional, for compatible gateways).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// APIKey is the credential for the API. Never read from the config file;
	// resolved from the environment or the secrets directory at startup.
	APIKey string `json:"-" yaml:"-" mapstructure:"-"`
}

// CompileConfig names the external typesetting tools.
type CompileConfig struct {
	// Engine is the LaTeX compiler binary (default "pdflatex").
	Engine string `json:"engine" yaml:"engine" mapstructure:"engine"`

	// Bibliography is the bibliography processor binary (default "bibtex").
	Bibliography string `json:"bibliography" yaml:"bibliography" mapstructure:"bibliography"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	// Level is the minimum zap level: debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Encoding is "console" or "json".
	Encoding string `json:"encoding" yaml:"encoding" mapstructure:"encoding"`
}

// BuildConfig groups all settings for a pipeline run.
type BuildConfig struct {
	// Catalog is the path to the subjects/topics file.
	Catalog string `json:"catalog" yaml:"catalog" mapstructure:"catalog"`

	// TemplatesDir contains main.tex and portada.tex.
	TemplatesDir string `json:"templates_dir" yaml:"templates_dir" mapstructure:"templates_dir"`

	// ImagesDir is the shared asset directory copied into every workspace.
	ImagesDir string `json:"images_dir" yaml:"images_dir" mapstructure:"images_dir"`

	// WorkDir is the root under which per-topic workspaces are created.
	WorkDir string `json:"work_dir" yaml:"work_dir" mapstructure:"work_dir"`

	// ArchiveDir collects the final PDFs named by topic identifier.
	ArchiveDir string `json:"archive_dir" yaml:"archive_dir" mapstructure:"archive_dir"`

	// HistoryDB is the SQLite file recording topic attempts. Empty disables it.
	HistoryDB string `json:"history_db" yaml:"history_db" mapstructure:"history_db"`

	// Subjects restricts the run to these subject prefixes. Empty means all.
	Subjects []string `json:"subjects,omitempty" yaml:"subjects,omitempty" mapstructure:"subjects"`

	Generation GenerationConfig `json:"generation" yaml:"generation" mapstructure:"generation"`
	Compile    CompileConfig    `json:"compile" yaml:"compile" mapstructure:"compile"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}
