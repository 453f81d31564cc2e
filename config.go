package reactstream

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Tunables collects the runtime knobs construction call sites may
// override. The core never reads a configuration source (environment,
// file, flags) itself (spec.md places "configuration plumbing" outside
// its scope); Tunables supplies the defaults cmd/demo and other callers
// start from, and Apply installs two of them as package-level knobs.
type Tunables struct {
	PushSourceInitialCapacity uint64
	PushSourceMaxCapacity     uint64
	AsyncExecutorPoolSize     int
	InterceptBufferPrealloc   int
}

// DefaultTunables returns the built-in defaults, matching spec.md's
// minimums (§4.6: initial_capacity >= 2, max_capacity >= 4).
func DefaultTunables() Tunables {
	return Tunables{
		PushSourceInitialCapacity: 16,
		PushSourceMaxCapacity:     4096,
		AsyncExecutorPoolSize:     4,
		InterceptBufferPrealloc:   4,
	}
}

// interceptBufferPrealloc and defaultAsyncExecutor are the process-wide
// knobs newNode and an async-boundary region without a custom Executor
// consult; Apply installs a Tunables value into both, the same
// global-knob pattern logging.go's SetLogLevel uses.
var (
	interceptBufferPrealloc = DefaultTunables().InterceptBufferPrealloc
	defaultAsyncExecutor    = NewPoolExecutor(DefaultTunables().AsyncExecutorPoolSize)
)

// Apply installs t as the process-wide defaults consulted by newNode's
// intercept buffer preallocation and by newRegion for an async region
// whose MarkAsync call left the Executor nil.
func (t *Tunables) Apply() {
	interceptBufferPrealloc = t.InterceptBufferPrealloc
	defaultAsyncExecutor = NewPoolExecutor(t.AsyncExecutorPoolSize)
}

// BindFlags registers pflag bindings for every tunable, for use by
// cmd/demo's cobra commands.
func (t *Tunables) BindFlags(flags *pflag.FlagSet) {
	flags.Uint64Var(&t.PushSourceInitialCapacity, "push-source-initial-capacity", t.PushSourceInitialCapacity, "initial capacity of a push-source's internal queue")
	flags.Uint64Var(&t.PushSourceMaxCapacity, "push-source-max-capacity", t.PushSourceMaxCapacity, "max capacity of a push-source's internal queue")
	flags.IntVar(&t.AsyncExecutorPoolSize, "async-executor-pool-size", t.AsyncExecutorPoolSize, "worker pool size for async region executors")
	flags.IntVar(&t.InterceptBufferPrealloc, "intercept-buffer-prealloc", t.InterceptBufferPrealloc, "pre-allocated capacity of a node's intercept buffer")
}

// LoadTunables reads overrides from the environment and an optional
// config file (via viper) on top of DefaultTunables.
func LoadTunables(configFile string) (Tunables, error) {
	t := DefaultTunables()

	v := viper.New()
	v.SetEnvPrefix("REACTSTREAM")
	v.AutomaticEnv()
	v.SetDefault("push_source_initial_capacity", t.PushSourceInitialCapacity)
	v.SetDefault("push_source_max_capacity", t.PushSourceMaxCapacity)
	v.SetDefault("async_executor_pool_size", t.AsyncExecutorPoolSize)
	v.SetDefault("intercept_buffer_prealloc", t.InterceptBufferPrealloc)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return t, err
		}
	}

	t.PushSourceInitialCapacity = v.GetUint64("push_source_initial_capacity")
	t.PushSourceMaxCapacity = v.GetUint64("push_source_max_capacity")
	t.AsyncExecutorPoolSize = v.GetInt("async_executor_pool_size")
	t.InterceptBufferPrealloc = v.GetInt("intercept_buffer_prealloc")
	return t, nil
}
