package cli

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ardnew/vela/log"
	"github.com/ardnew/vela/pkg"
	"github.com/ardnew/vela/vela"
)

var defaultDirMode os.FileMode = 0o700

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}

type engineConfig struct {
	MaxCallDepth    int  `default:"${maxCallDepth}"    help:"Maximum nesting of user function calls."            name:"max-call-depth"`
	ASTCacheSize    int  `default:"${astCacheSize}"    help:"Parsed program cache capacity; 0 is unbounded."     name:"ast-cache-size"`
	ResultCacheSize int  `default:"${resultCacheSize}" help:"Expression result cache capacity; 0 is unbounded." name:"result-cache-size"`
	Stats           bool `default:"false"              help:"Log cache and call counters on exit."               negatable:""`
}

func (engineConfig) vars() kong.Vars {
	return kong.Vars{
		"maxCallDepth":    strconv.Itoa(vela.DefaultMaxCallDepth),
		"astCacheSize":    strconv.Itoa(vela.DefaultASTCacheSize),
		"resultCacheSize": strconv.Itoa(vela.DefaultResultCacheSize),
	}
}

func (engineConfig) group() kong.Group {
	return kong.Group{Key: "engine", Title: "Interpreter options"}
}

func (e engineConfig) interpreter(reg prometheus.Registerer) *vela.Interpreter {
	return vela.NewInterpreter(
		vela.WithLogger(log.Default().With(slog.String("component", "vela"))),
		vela.WithMaxCallDepth(e.MaxCallDepth),
		vela.WithASTCacheSize(e.ASTCacheSize),
		vela.WithResultCacheSize(e.ResultCacheSize),
		vela.WithRegisterer(reg),
		vela.WithOutput(os.Stdout),
	)
}

// report logs every counter in g when --stats is set.
func (e engineConfig) report(ctx context.Context, g prometheus.Gatherer) {
	if !e.Stats {
		return
	}

	families, err := g.Gather()
	if err != nil {
		log.WarnContext(ctx, "gather stats", slog.Any("error", err))

		return
	}

	var attrs []slog.Attr

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}

			sort.Strings(labels)

			key := mf.GetName()
			if len(labels) > 0 {
				key += "{" + strings.Join(labels, ",") + "}"
			}

			attrs = append(attrs, slog.Float64(key, m.GetCounter().GetValue()))
		}
	}

	log.InfoContext(ctx, "stats", attrs...)
}
