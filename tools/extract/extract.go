// Extract a knowledge base from a wikipedia dump.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dustin/go-wikikb"
	"github.com/dustin/go-wikikb/batch"
	"github.com/dustin/go-wikikb/canon"
	"github.com/dustin/go-wikikb/classify"
	"github.com/dustin/go-wikikb/config"
	"github.com/dustin/go-wikikb/entity"
	"github.com/dustin/go-wikikb/logging"
	"github.com/dustin/go-wikikb/metrics"
	"github.com/dustin/go-wikikb/sink"
	"github.com/dustin/go-wikikb/tsv"
)

func usage() {
	fmt.Fprintf(os.Stderr,
		"Usage:\n  %s [opts] wikipedia.xml[.bz2]\n  %s [opts] wikipedia.index.bz2 wikipedia.xml.bz2\n",
		os.Args[0], os.Args[0])
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
	os.Exit(1)
}

type options struct {
	config.Config
	dump []string
}

// openSinks returns the output file sink plus whichever stores are
// configured.
func openSinks(o options, log *zap.SugaredLogger) (sink.Sink, error) {
	f, err := sink.CreateFile(o.Output)
	if err != nil {
		return nil, err
	}
	sinks := []sink.Sink{f}
	fail := func(err error) (sink.Sink, error) {
		sink.Multi(sinks...).Close()
		return nil, err
	}
	if o.CouchDB != "" {
		c, err := sink.NewCouch(o.CouchDB, log)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, c)
	}
	if o.Couchbase != "" {
		c, err := sink.NewCouchbase(o.Couchbase, o.Bucket)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, c)
	}
	if o.Elastic != "" {
		sinks = append(sinks, sink.NewElastic(o.Elastic, o.ESIndex))
	}
	if o.MongoDB != "" {
		m, err := sink.NewMongo(o.MongoDB, o.MongoName, "entities", log)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, m)
	}
	if len(sinks) == 1 {
		return f, nil
	}
	return sink.Multi(sinks...), nil
}

func writeFile(fn string, write func(*os.File) error) error {
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func run(ctx context.Context, o options, log *zap.SugaredLogger,
	m *metrics.Metrics) (batch.Stats, error) {

	var st batch.Stats
	patterns, err := classify.LoadPatterns(o.Patterns)
	if err != nil {
		return st, fmt.Errorf("loading patterns: %w", err)
	}

	profile := canon.English()
	if o.Profile != "" {
		profile, err = canon.LoadProfile(o.Profile)
		switch {
		case errors.Is(err, wikikb.ErrResourceMissing):
			log.Warnf("No language profile, using English: %v", err)
		case err != nil:
			return st, fmt.Errorf("loading profile: %w", err)
		}
	}

	redirects := wikikb.Redirects{}
	if o.Redirects != "" {
		redirects, err = wikikb.LoadRedirectsFile(o.Redirects)
		switch {
		case errors.Is(err, wikikb.ErrResourceMissing):
			log.Warnf("No redirect table: %v", err)
		case err != nil:
			return st, fmt.Errorf("loading redirects: %w", err)
		}
	}

	p, closer, err := wikikb.OpenDump(o.Workers, o.dump...)
	if err != nil {
		return st, fmt.Errorf("opening dump: %w", err)
	}
	defer closer.Close()
	si := p.SiteInfo()
	log.Infof("Got site info:  %v (%v)", si.SiteName, si.DBName)
	if lb := si.LinkBase(); lb != "" {
		profile.LinkBase = lb
	}
	if o.Corpus == "" {
		o.Corpus = si.DBName
	}

	dir := filepath.Dir(o.Output)
	if err := writeFile(filepath.Join(dir, "HEAD-KB"), func(f *os.File) error {
		return tsv.WriteHeaders(f)
	}); err != nil {
		return st, err
	}
	version := tsv.NewVersion(o.Corpus)
	if err := writeFile(filepath.Join(dir, "VERSION"), func(f *os.File) error {
		_, err := version.WriteTo(f)
		return err
	}); err != nil {
		return st, err
	}
	log.Infof("Run %v over %v", version.RunID, o.Corpus)

	out, err := openSinks(o, log)
	if err != nil {
		return st, err
	}

	s := &batch.Scheduler{
		Source:    p,
		Pipeline:  entity.NewPipeline(patterns, profile, redirects, log),
		Sink:      out,
		BatchSize: o.BatchSize,
		Workers:   o.Workers,
		Limit:     o.Limit,
		Log:       log,
		Metrics:   m,
	}
	st, err = s.Run(ctx)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return st, err
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	o := options{Config: *cfg}

	flag.Usage = usage
	flag.IntVar(&o.BatchSize, "batch", cfg.BatchSize, "Pages per batch")
	flag.IntVar(&o.Workers, "workers", cfg.Workers, "Number of page workers")
	flag.Int64Var(&o.Limit, "limit", cfg.Limit, "Stop after this many pages (0 for all)")
	flag.StringVar(&o.Patterns, "patterns", cfg.Patterns, "Identification pattern file")
	flag.StringVar(&o.Profile, "profile", cfg.Profile, "Language profile (English if empty)")
	flag.StringVar(&o.Redirects, "redirects", cfg.Redirects, "Redirect table from the redirects tool")
	flag.StringVar(&o.Output, "o", cfg.Output, "Output file")
	flag.StringVar(&o.Corpus, "corpus", cfg.Corpus, "Corpus name for VERSION (dump's dbname if empty)")
	flag.StringVar(&o.LogLevel, "log", cfg.LogLevel, "Log level")
	flag.StringVar(&o.Metrics, "metrics", cfg.Metrics, "Serve metrics on this address, e.g. :9100")
	flag.StringVar(&o.CouchDB, "couchdb", cfg.CouchDB, "Also store entities in this CouchDB database")
	flag.StringVar(&o.Couchbase, "couchbase", cfg.Couchbase, "Also store entities in this Couchbase server")
	flag.StringVar(&o.Bucket, "bucket", cfg.Bucket, "Couchbase bucket")
	flag.StringVar(&o.Elastic, "elastic", cfg.Elastic, "Also index entities in this ElasticSearch")
	flag.StringVar(&o.ESIndex, "esindex", cfg.ESIndex, "ElasticSearch index")
	flag.StringVar(&o.MongoDB, "mongodb", cfg.MongoDB, "Also store entities in this MongoDB")
	flag.StringVar(&o.MongoName, "mongodbname", cfg.MongoName, "MongoDB database name")
	flag.Parse()
	o.dump = flag.Args()
	if len(o.dump) < 1 || len(o.dump) > 2 {
		usage()
	}

	log, err := logging.New(o.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	m := metrics.New()
	if o.Metrics != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", m.Handler())
			log.Warnf("Metrics server stopped: %v", http.ListenAndServe(o.Metrics, mux))
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st, err := run(ctx, o, log, m)
	if err != nil {
		log.Fatalf("Error extracting from %v: %v", o.dump, err)
	}
	log.Infof("Wrote %d entities from %d pages (%d skipped, %d failed) to %v in %v",
		st.Entities, st.Pages, st.Skipped, st.Errors, o.Output, st.Duration)
}
