package reactstream

import (
	"os"

	"github.com/inconshreveable/log15"
)

// Log is the package-level root logger. Every node and region derives a
// child logger from it via .New(ctx...) so log lines carry their node id
// and kind without plumbing a logger through every constructor.
var Log = log15.New()

func init() {
	Log.SetHandler(log15.LvlFilterHandler(log15.LvlInfo, log15.StreamHandler(os.Stderr, log15.LogfmtFormat())))
}

// SetLogLevel adjusts the minimum level the package logger emits. Tests
// and cmd/demo use this to quiet or enable debug tracing.
func SetLogLevel(lvl log15.Lvl) {
	Log.SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(os.Stderr, log15.LogfmtFormat())))
}
