// Package profile starts [github.com/pkg/profile] profilers for the vela
// command.
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//	vela --pprof-mode=cpu run model.vl
//	go tool pprof -http=: ~/.cache/vela/pprof/cpu.pprof
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op
// stopper. With it, the package also registers the [net/http/pprof]
// handlers.
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
