package main

import (
	"expvar"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"

	"github.com/vito/muru/pkg/muru"
)

var (
	compiledModules = expvar.NewInt("compiled_modules")
	failedModules   = expvar.NewInt("failed_modules")
	emittedFuncs    = expvar.NewInt("emitted_functions")
)

// recordCompile counts a compilation for /debug/vars.
func recordCompile(res *muru.Result, err error) {
	if err != nil {
		failedModules.Add(1)
		return
	}
	compiledModules.Add(1)
	emittedFuncs.Add(int64(len(res.Functions)))
}

func debugMux() *http.ServeMux {
	m := http.NewServeMux()
	m.Handle("/debug/vars", expvar.Handler())
	m.Handle("/debug/pprof/", http.HandlerFunc(pprof.Index))
	m.Handle("/debug/pprof/cmdline", http.HandlerFunc(pprof.Cmdline))
	m.Handle("/debug/pprof/profile", http.HandlerFunc(pprof.Profile))
	m.Handle("/debug/pprof/symbol", http.HandlerFunc(pprof.Symbol))
	m.Handle("/debug/pprof/trace", http.HandlerFunc(pprof.Trace))
	m.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	m.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	return m
}

// setupDebugHandlers serves profiles and counters on addr for the lifetime of
// the process. Mostly useful with a long-running --lsp.
func setupDebugHandlers(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	slog.Info("debug handlers listening", "debugAddr", l.Addr().String())
	go http.Serve(l, debugMux()) //nolint:errcheck
	return nil
}
