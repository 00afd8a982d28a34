// Package cmdutil holds the configuration shared by every zeus cobra
// subcommand: the persistent flags, the hclog/color logger pair, and the
// construction of the immutable zeusconfig.Config from flags + the
// environment. Nothing here is a package-level singleton: a Helper is
// built once in the root command and threaded into every verb.
package cmdutil

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/nightlyone/lockfile"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/room77/zeus/internal/logger"
	"github.com/room77/zeus/internal/util"
	"github.com/room77/zeus/internal/zeusconfig"
)

// defaultIgnoreTasks is appended to every verb's --ignore_tasks.
var defaultIgnoreTasks = []string{"deprecated", "no_exec", "xxx", "timeout"}

// Helper carries every global (persistent) flag value plus the
// collaborators built from them: the colored Logger and the hclog
// structured logger gated by --debug.
type Helper struct {
	id          string
	root        string
	publishRoot string
	binRoot     string
	utilsRoot   string
	outDirs     []string
	date        string
	noLogOutput bool
	logToTmp    bool
	lockRun     bool

	ignoreTasks []string
	debug       bool

	poolSizeRaw         util.ConcurrencyValue
	poolSize            int
	timeoutSeconds      float64
	successMail         []string
	failureMail         []string
	detailedSuccessMail bool
	mailDomain          string

	logger *logger.Logger
}

// NewHelper constructs an empty Helper; flag values are populated by
// AddPersistentFlags/AddRunFlags once cobra parses args.
func NewHelper() *Helper {
	return &Helper{logger: logger.New(), poolSizeRaw: util.ConcurrencyValue{}}
}

// AddPersistentFlags registers the global flags common to every verb.
func (h *Helper) AddPersistentFlags(flags *pflag.FlagSet) {
	flags.StringVar(&h.id, "id", "", "pipeline instance id (required)")
	flags.StringVar(&h.root, "root", "", "pipeline source root (required)")
	flags.StringVar(&h.publishRoot, "publish_root", "", "publish tree root")
	flags.StringVar(&h.binRoot, "bin_root", "", "pipeline bin root")
	flags.StringVar(&h.utilsRoot, "utils_root", "", "pipeline utils root")
	flags.StringSliceVar(&h.outDirs, "out_dirs", nil, "comma-separated output subdir names")
	flags.StringVar(&h.date, "date", "", "date (YYYYMMDD), defaults to today")
	flags.BoolVar(&h.noLogOutput, "nolog_output", false, "disable per-task log file output")
	flags.BoolVar(&h.logToTmp, "log_to_tmp", false, "write logs under /tmp instead of the output tree")
	flags.BoolVar(&h.lockRun, "lock", false, "guard this pipeline id with an exclusive lockfile")
}

// AddCommonVerbFlags registers the flags every verb's workhorse shares
// beyond the positional task targets: --ignore_tasks and --debug.
func (h *Helper) AddCommonVerbFlags(flags *pflag.FlagSet) {
	flags.StringSliceVar(&h.ignoreTasks, "ignore_tasks", nil, "comma-separated additional ignore substrings")
	flags.BoolVar(&h.debug, "debug", false, "enable debug logging")
}

// AddRunFlags registers the flags specific to "run"/"continue".
func (h *Helper) AddRunFlags(flags *pflag.FlagSet) {
	flags.Float64VarP(&h.timeoutSeconds, "timeout", "t", 0, "default per-task timeout in seconds (0 = none)")
	h.poolSizeRaw.Value = &h.poolSize
	flags.Var(&h.poolSizeRaw, "pool_size", "worker pool size: an integer or a CPU percentage like 50%")
	flags.StringSliceVar(&h.successMail, "success_mail", nil, "comma-separated success-notification recipients")
	flags.StringSliceVar(&h.failureMail, "failure_mail", nil, "comma-separated failure-notification recipients")
	flags.BoolVar(&h.detailedSuccessMail, "detailed_success_mail", false, "send success mail even when nothing failed")
	flags.StringVar(&h.mailDomain, "mail_domain", "", "domain suffix for the notifier's From: address")
}

// IgnoreTasks returns the caller-supplied ignore substrings plus the
// always-applicable defaults, deduplicated.
func (h *Helper) IgnoreTasks() []string {
	seen := map[string]bool{}
	var out []string
	for _, list := range [][]string{h.ignoreTasks, defaultIgnoreTasks} {
		for _, s := range list {
			if s != "" && !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// Targets returns the positional task targets, defaulting to ["..."]
// when none are given.
func Targets(args []string) []string {
	if len(args) == 0 {
		return []string{"..."}
	}
	return args
}

// PoolSize returns the resolved --pool_size value.
func (h *Helper) PoolSize() int { return h.poolSize }

// DefaultTimeout returns the resolved --timeout as a time.Duration.
func (h *Helper) DefaultTimeout() time.Duration {
	return time.Duration(h.timeoutSeconds * float64(time.Second))
}

// BuildConfig resolves every persistent flag plus the environment into an
// immutable zeusconfig.Config.
func (h *Helper) BuildConfig() (*zeusconfig.Config, error) {
	return zeusconfig.Load(zeusconfig.Options{
		ID:                  h.id,
		Root:                h.root,
		PublishRoot:         h.publishRoot,
		BinRoot:             h.binRoot,
		UtilsRoot:           h.utilsRoot,
		OutDirs:             h.outDirs,
		Date:                h.date,
		NoLogOutput:         h.noLogOutput,
		LogToTmp:            h.logToTmp,
		IgnoreTasks:         h.IgnoreTasks(),
		Debug:               h.debug,
		PoolSize:            h.poolSize,
		DefaultTimeout:      h.DefaultTimeout(),
		SuccessMail:         h.successMail,
		FailureMail:         h.failureMail,
		DetailedSuccessMail: h.detailedSuccessMail,
		MailDomain:          h.mailDomain,
	})
}

// Logger returns the colored, human-facing logger every verb prints
// progress through.
func (h *Helper) Logger() *logger.Logger { return h.logger }

// HCLogger builds the structured debug logger, discarding output
// entirely unless --debug was passed.
func (h *Helper) HCLogger() hclog.Logger {
	level := hclog.Off
	output := io.Discard
	if h.debug {
		level = hclog.Debug
		output = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "zeus",
		Level:  level,
		Output: output,
	})
}

// SuccessMail, FailureMail and DetailedSuccessMail expose the resolved
// notifier flags to the verb commands.
func (h *Helper) SuccessMail() []string     { return h.successMail }
func (h *Helper) FailureMail() []string     { return h.failureMail }
func (h *Helper) DetailedSuccessMail() bool { return h.detailedSuccessMail }

// lockFileName is the sentinel lockfile "run"/"continue" create under a
// pipeline's output dir when --lock is passed, to guard against two
// concurrent invocations against the same --id racing on the same
// output tree.
const lockFileName = "zeus.lock"

// AcquireLock takes an exclusive lockfile guarding cfg's output
// directory, if --lock was passed and an output directory exists. The
// returned release func is a no-op when locking was not requested.
func (h *Helper) AcquireLock(cfg *zeusconfig.Config) (release func(), err error) {
	if !h.lockRun || cfg.OutputDir == "" {
		return func() {}, nil
	}
	path, err := filepath.Abs(filepath.Join(cfg.OutputDir, lockFileName))
	if err != nil {
		return nil, errors.Wrap(err, "cmdutil: resolving lockfile path")
	}
	lf, err := lockfile.New(path)
	if err != nil {
		return nil, errors.Wrap(err, "cmdutil: constructing lockfile")
	}
	if err := lf.TryLock(); err != nil {
		return nil, errors.Wrapf(err, "cmdutil: another run already holds %q", path)
	}
	return func() {
		if err := lf.Unlock(); err != nil {
			h.logger.Warnf("releasing lockfile %q: %v", path, err)
		}
	}, nil
}
