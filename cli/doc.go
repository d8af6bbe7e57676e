// Package cli implements the vela command line.
//
//	vela [flags] [-s FILE ...] <command>
//
// Programs named with --source are evaluated, in order, into a single
// interpreter before the command runs, so their bindings and functions are
// visible to it:
//
//	vela -s model.vl eval 'f(2457505.18)'
//	vela -s model.vl check f --params real --returns real
//
// Flag defaults may be set in config.yaml or config.json under the user
// configuration directory; see the init command. Logging flags (--log-*)
// take effect before the rest of the command line is parsed.
//
// Profiling flags (--pprof-*) exist only in binaries built with the pprof
// tag.
package cli
