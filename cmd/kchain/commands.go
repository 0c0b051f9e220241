package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/birdayz/kchain"
	"github.com/birdayz/kchain/internal/execution"
	"github.com/birdayz/kchain/kconfig"
	"github.com/birdayz/kchain/pkg/log"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const defaultEvents = 10

type options struct {
	chain       string
	libraries   []string
	events      int
	metricsAddr string
	chainID     string
	benchmark   bool
	verbosity   int
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "kchain",
		Short:        "Build and run processing chains",
		SilenceUsage: true,
	}
	root.PersistentFlags().IntVarP(&opts.verbosity, "verbosity", "v", 0, "log verbosity")
	root.PersistentFlags().StringSliceVar(&opts.libraries, "libraries", nil, "unit libraries to load, default: those of the chain file or builtin")

	root.AddCommand(newRunCmd(opts), newValidateCmd(opts), newComponentsCmd(opts))
	return root
}

func newRunCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a chain until its events are processed or a signal arrives",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts)
		},
	}
	addChainFlag(cmd, opts)
	cmd.Flags().IntVarP(&opts.events, "events", "n", -1, fmt.Sprintf("data events to process, default: the chain file or %d", defaultEvents))
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", ":9090", "address of the /metrics endpoint, empty to disable")
	cmd.Flags().StringVar(&opts.chainID, "chain-id", "", "chain id handed to the units")
	cmd.Flags().BoolVar(&opts.benchmark, "benchmark", false, "emit component statistics on every event")
	return cmd
}

func newValidateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Resolve a chain and print its tasks in execution order",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, _, err := load(opts, logr.Discard(), nil)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TASK\tCOMPONENT\tSOURCES")
			for _, name := range h.TaskOrder() {
				cfg, err := h.Configurations().Find(name)
				if err != nil {
					return err
				}
				if _, err := h.Units().Spawn(cfg.Kind); err != nil {
					return fmt.Errorf("task %q: %w", name, err)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, cfg.Kind, strings.Join(cfg.Sources, " "))
			}
			return w.Flush()
		},
	}
	addChainFlag(cmd, opts)
	return cmd
}

func newComponentsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "components",
		Short: "List the components of the compiled-in libraries",
		RunE: func(cmd *cobra.Command, args []string) error {
			h := kchain.New()
			libs := opts.libraries
			if len(libs) == 0 {
				libs = h.Libraries()
			}
			if err := h.Init(libs...); err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "COMPONENT\tDESCRIPTION")
			for _, kind := range h.Units().Kinds() {
				fmt.Fprintf(w, "%s\t%s\n", kind, h.Units().Description(kind))
			}
			return w.Flush()
		},
	}
}

func addChainFlag(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVarP(&opts.chain, "chain", "c", "", "chain file (.yaml, or line based description)")
	_ = cmd.MarkFlagRequired("chain")
}

// load reads the chain file and returns a configured host together with
// the number of events to process.
func load(opts *options, logger logr.Logger, reg prometheus.Registerer) (*kchain.Host, int, error) {
	f, err := kconfig.LoadFile(opts.chain)
	if err != nil {
		return nil, 0, err
	}

	hostOpts := []kchain.Option{
		kchain.WithLog(logger),
		kchain.WithChainID(opts.chainID),
		kchain.WithBenchmark(opts.benchmark),
	}
	if reg != nil {
		hostOpts = append(hostOpts, kchain.WithRegisterer(reg))
	}
	h := kchain.New(hostOpts...)
	if err := h.Apply(f); err != nil {
		return nil, 0, err
	}

	libs := opts.libraries
	if len(libs) == 0 {
		libs = f.Libraries
	}
	if len(libs) == 0 {
		libs = []string{"builtin"}
	}
	if err := h.Init(libs...); err != nil {
		return nil, 0, err
	}
	if err := h.Configure(); err != nil {
		return nil, 0, err
	}

	events := opts.events
	if events < 0 {
		events = f.Events
	}
	if events <= 0 {
		events = defaultEvents
	}
	return h, events, nil
}

func run(ctx context.Context, opts *options) error {
	logger := log.New(opts.verbosity).WithName("kchain")

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	h, events, err := load(opts, logger, reg)
	if err != nil {
		return err
	}

	grp, ctx := errgroup.WithContext(ctx)

	var srv *http.Server
	if opts.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true}))
		srv = &http.Server{Addr: opts.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		grp.Go(func() error {
			logger.Info("Serving metrics", "addr", opts.metricsAddr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	grp.Go(func() error {
		if srv != nil {
			defer srv.Close()
		}
		runErr := h.Run(ctx, events)
		for _, s := range h.Statistics() {
			logger.Info("Task statistics", "task", s.Task, "events", s.Events, "failures", s.Failures, "noData", s.NoData)
		}
		// The stop sequence also runs after cancellation.
		stopErr := h.Run(context.Background(), 0)
		return multierr.Append(eventFailures(logger, runErr), stopErr)
	})

	return grp.Wait()
}

// eventFailures logs per-event unit failures, which do not fail the run, and
// returns everything else.
func eventFailures(logger logr.Logger, err error) error {
	var rest error
	for _, e := range multierr.Errors(err) {
		var pe *execution.ProcessingError
		if errors.As(e, &pe) && pe.Stage != execution.StageInit {
			logger.Error(pe.Cause, "Event failed", "task", pe.Task, "event", pe.EventID, "stage", pe.Stage)
			continue
		}
		if errors.Is(e, context.Canceled) {
			continue
		}
		rest = multierr.Append(rest, e)
	}
	return rest
}
