package iotaclient

import (
	"github.com/decred/slog"

	"github.com/iotaledger/iota-client-go/accountsync"
	"github.com/iotaledger/iota-client-go/blockbuilder"
	"github.com/iotaledger/iota-client-go/build"
	"github.com/iotaledger/iota-client-go/clock"
	"github.com/iotaledger/iota-client-go/inclusion"
	"github.com/iotaledger/iota-client-go/inputselection"
)

// replaceableLogger is a thin wrapper around a logger that is used so the
// logger can be replaced easily without some black pointer magic.
type replaceableLogger struct {
	slog.Logger
	subsystem string
}

// Loggers are disabled until SetupLoggers runs. After that they write to
// stdout, and also to a rotating log file once InitLogRotator() has been
// called on the root log writer.
var (
	// pkgLoggers is every package-level logger registered here, tracked
	// so they can be replaced once SetupLoggers runs with the final
	// root logger.
	pkgLoggers []*replaceableLogger

	addPkgLogger = func(subsystem string) *replaceableLogger {
		l := &replaceableLogger{
			Logger:    build.NewSubLogger(subsystem, nil),
			subsystem: subsystem,
		}
		pkgLoggers = append(pkgLoggers, l)
		return l
	}

	// clntLog is this package's own logger.
	clntLog = addPkgLogger("CLNT")
)

// SetupLoggers initializes every package-global logger variable across
// the module's subsystems: InclusionTracker (INCL), AccountSyncEngine
// (ASYN), InputSelector (INSL), BlockBuilder (BLDR), the clock check
// (CLCK), and this package (CLNT).
func SetupLoggers(root *build.RotatingLogWriter) {
	for _, l := range pkgLoggers {
		l.Logger = build.NewSubLogger(l.subsystem, root.GenSubLogger)
		SetSubLogger(root, l.subsystem, l.Logger)
	}

	AddSubLogger(root, "INCL", inclusion.UseLogger)
	AddSubLogger(root, "ASYN", accountsync.UseLogger)
	AddSubLogger(root, "INSL", inputselection.UseLogger)
	AddSubLogger(root, "BLDR", blockbuilder.UseLogger)
	AddSubLogger(root, "CLCK", clock.UseLogger)
}

// AddSubLogger is a helper method to conveniently create and register the
// logger of one or more sub systems.
func AddSubLogger(root *build.RotatingLogWriter, subsystem string,
	useLoggers ...func(slog.Logger)) {

	logger := build.NewSubLogger(subsystem, root.GenSubLogger)
	SetSubLogger(root, subsystem, logger, useLoggers...)
}

// SetSubLogger is a helper method to conveniently register the logger of
// a sub system.
func SetSubLogger(root *build.RotatingLogWriter, subsystem string,
	logger slog.Logger, useLoggers ...func(slog.Logger)) {

	root.RegisterSubLogger(subsystem, logger)
	for _, useLogger := range useLoggers {
		useLogger(logger)
	}
}

// logClosure is used to provide a closure over expensive logging
// operations so they don't run when the logging level doesn't warrant it.
type logClosure func() string

// String invokes the underlying function and returns the result.
func (c logClosure) String() string {
	return c()
}

// newLogClosure returns a new closure over a function that returns a
// string, satisfying fmt.Stringer so it can be passed to the logging
// system without evaluating its argument unless logged.
func newLogClosure(c func() string) logClosure {
	return logClosure(c)
}
