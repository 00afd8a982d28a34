// Package zeusconfig builds the immutable Config object every other Zeus
// component is threaded through. There is no package-level singleton:
// Config is constructed by Load, which the CLI calls from each verb
// command once flags are parsed, then passed by pointer down the call
// stack.
package zeusconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/yookoala/realpath"
)

const dateLayout = "20060102"

// Config is the resolved, immutable configuration for one pipeline run.
// Every field is set once at construction; nothing here is mutated after
// Load returns.
type Config struct {
	ID   string
	Date string

	BaseDir    string
	BinDir     string
	UtilsDir   string
	PublishDir string

	OutputDir string
	LogDir    string

	// Subdirs maps PIPELINE_<NAME>_DIR to <OutputDir>/<name>.
	Subdirs map[string]string

	NoLogOutput bool
	LogToTmp    bool

	IgnoreTasks []string
	Debug       bool

	PoolSize            int
	DefaultTimeout       time.Duration
	SuccessMail          []string
	FailureMail          []string
	DetailedSuccessMail  bool
	MailDomain           string
}

// Options carries the CLI-flag-level inputs Load resolves into a Config.
type Options struct {
	ID         string
	Root       string
	PublishRoot string
	BinRoot    string
	UtilsRoot  string
	OutDirs    []string
	Date       string
	NoLogOutput bool
	LogToTmp    bool

	IgnoreTasks []string
	Debug       bool

	PoolSize            int
	DefaultTimeout       time.Duration
	SuccessMail          []string
	FailureMail          []string
	DetailedSuccessMail  bool
	MailDomain           string
}

// Load resolves Options plus the process environment into an immutable
// Config, creating the output/log/subdirectory tree as a side effect
// (matching the original's eager directory creation at config time).
func Load(opts Options) (*Config, error) {
	if opts.ID == "" {
		return nil, errors.New("zeusconfig: --id is required")
	}
	if opts.Root == "" {
		return nil, errors.New("zeusconfig: --root is required")
	}

	baseDir, err := resolveAbs(opts.Root)
	if err != nil {
		return nil, errors.Wrapf(err, "zeusconfig: invalid --root %q", opts.Root)
	}
	info, err := os.Stat(baseDir)
	if err != nil || !info.IsDir() {
		return nil, errors.Errorf("zeusconfig: --root %q is not a directory", opts.Root)
	}

	cfg := &Config{
		ID:                  opts.ID,
		BaseDir:             baseDir,
		PublishDir:          opts.PublishRoot,
		IgnoreTasks:         opts.IgnoreTasks,
		Debug:               opts.Debug,
		NoLogOutput:         opts.NoLogOutput,
		LogToTmp:            opts.LogToTmp,
		PoolSize:            opts.PoolSize,
		DefaultTimeout:      opts.DefaultTimeout,
		SuccessMail:         opts.SuccessMail,
		FailureMail:         opts.FailureMail,
		DetailedSuccessMail: opts.DetailedSuccessMail,
		MailDomain:          opts.MailDomain,
		Subdirs:             map[string]string{},
	}

	cfg.Date = opts.Date
	if cfg.Date == "" {
		cfg.Date = time.Now().Format(dateLayout)
	}

	if opts.BinRoot != "" {
		if cfg.BinDir, err = resolveAbs(opts.BinRoot); err != nil {
			return nil, errors.Wrapf(err, "zeusconfig: invalid --bin_root %q", opts.BinRoot)
		}
	}
	if opts.UtilsRoot != "" {
		if cfg.UtilsDir, err = resolveAbs(opts.UtilsRoot); err != nil {
			return nil, errors.Wrapf(err, "zeusconfig: invalid --utils_root %q", opts.UtilsRoot)
		}
	}
	if opts.PublishRoot != "" {
		if cfg.PublishDir, err = resolveAbs(opts.PublishRoot); err != nil {
			return nil, errors.Wrapf(err, "zeusconfig: invalid --publish_root %q", opts.PublishRoot)
		}
	}

	if err := cfg.createInitialSubdirs(opts.OutDirs); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) createInitialSubdirs(outDirs []string) error {
	if len(outDirs) == 0 && cfg.NoLogOutput {
		return nil
	}

	if len(outDirs) > 0 || !cfg.LogToTmp {
		home, err := homedir.Dir()
		if err != nil {
			return errors.Wrap(err, "zeusconfig: resolving home directory")
		}
		cfg.OutputDir = filepath.Join(home, "pipeline", cfg.ID)
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return errors.Wrapf(err, "zeusconfig: creating output dir %q", cfg.OutputDir)
		}
	}

	if !cfg.NoLogOutput {
		logRoot := cfg.OutputDir
		if cfg.LogToTmp {
			logRoot = filepath.Join(os.TempDir(), "pipeline", cfg.ID)
		}
		cfg.LogDir = filepath.Join(logRoot, "log", cfg.Date)
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return errors.Wrapf(err, "zeusconfig: creating log dir %q", cfg.LogDir)
		}
	}

	for _, name := range outDirs {
		subdir := filepath.Join(cfg.OutputDir, name)
		if err := os.MkdirAll(subdir, 0o755); err != nil {
			return errors.Wrapf(err, "zeusconfig: creating out dir %q", subdir)
		}
		cfg.Subdirs[SubdirEnvKey(name)] = subdir
	}
	return nil
}

// GenerateID returns a fresh random pipeline id. The CLI itself always
// requires an explicit --id; this exists for programmatic callers that
// construct a Config directly without a CLI front end and have no
// natural id of their own to supply.
func GenerateID() string {
	return uuid.NewString()
}

// SubdirEnvKey returns the environment variable name a configured output
// subdir is exported to tasks under: PIPELINE_<NAME>_DIR.
func SubdirEnvKey(name string) string {
	return "PIPELINE_" + strings.ToUpper(name) + "_DIR"
}

// EnvVars returns the base set of PIPELINE_* environment variables every
// task receives, independent of its own output directories (those are
// added by the executor per task).
func (cfg *Config) EnvVars() map[string]string {
	vars := map[string]string{
		"PIPELINE_ID":        cfg.ID,
		"PIPELINE_DATE":      cfg.Date,
		"PIPELINE_SRC_ROOT":  cfg.BaseDir,
		"PIPELINE_BASE_DIR":  cfg.BaseDir,
		"PIPELINE_UTILS_DIR": cfg.UtilsDir,
	}
	if cfg.BinDir != "" {
		vars["PIPELINE_BIN_DIR"] = cfg.BinDir
	}
	if cfg.OutputDir != "" {
		vars["PIPELINE_OUT_ROOT"] = cfg.OutputDir
	}
	if cfg.LogDir != "" {
		vars["PIPELINE_LOG_DIR"] = cfg.LogDir
	}
	if cfg.PublishDir != "" {
		vars["PIPELINE_PUBLISH_DIR"] = cfg.PublishDir
	}
	return vars
}

// String renders the config dump embedded in the final summary mail: the
// base PIPELINE_* environment variables and the output subdirs. The other
// fields (timeouts, pool size, mail settings, ignore list) are not included.
func (cfg *Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CONFIG:\nEnvVars:\n")
	for k, v := range cfg.EnvVars() {
		fmt.Fprintf(&b, "  %s=%s\n", k, v)
	}
	fmt.Fprintf(&b, "Subdirs:\n")
	for k, v := range cfg.Subdirs {
		fmt.Fprintf(&b, "  %s=%s\n", k, v)
	}
	return b.String()
}

func resolveAbs(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	if real, err := realpath.Realpath(abs); err == nil {
		return real, nil
	}
	return abs, nil
}
