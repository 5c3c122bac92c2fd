package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tamirms/perfecthash"
	"github.com/tamirms/perfecthash/internal/dataset"
)

type app struct {
	fs  afero.Fs
	log *zap.Logger
	cfg config
}

// buildFlags are shared by build and bench.
type buildFlags struct {
	algorithm string
	hash      string
	trials    int
	seed      uint64
	buckets   int
	retries   int
}

func (a *app) addBuildFlags(cmd *cobra.Command, f *buildFlags) {
	cmd.Flags().IntVar(&f.trials, "trials", a.cfg.Trials, "trials per table size")
	cmd.Flags().Uint64Var(&f.seed, "seed", a.cfg.Seed, "generator seed")
	cmd.Flags().StringVar(&f.hash, "hash", perfecthash.HashOneAtATime.String(), "hash family for bdz2, bdz3 and chd: oneatatime, murmur3 or xxh3")
	cmd.Flags().IntVar(&f.buckets, "buckets", 313, "chd first-level bucket count")
	cmd.Flags().IntVar(&f.retries, "retries", 1000, "chd seeds tried per bucket")
}

// options translates flags into build options. The algorithm is passed
// separately so bench can build every variant from one set of flags.
func (a *app) options(f *buildFlags, algo perfecthash.AlgorithmID) ([]perfecthash.BuildOption, error) {
	hash, err := perfecthash.ParseHashFamily(f.hash)
	if err != nil {
		return nil, err
	}
	return []perfecthash.BuildOption{
		perfecthash.WithAlgorithm(algo),
		perfecthash.WithTrials(f.trials),
		perfecthash.WithSeed(f.seed, uint64(algo)),
		perfecthash.WithHashFamily(hash),
		perfecthash.WithCHDBuckets(f.buckets),
		perfecthash.WithCHDBucketRetries(f.retries),
		perfecthash.WithLogger(a.log.With(zap.Stringer("algorithm", algo))),
	}, nil
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "mphgen",
		Short:         "Build and query minimal perfect hash functions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(a.buildCommand(), a.lookupCommand(), a.verifyCommand(), a.benchCommand())
	return root
}

func (a *app) buildCommand() *cobra.Command {
	var (
		flags  buildFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "build <dataset.json>",
		Short: "Build a function from a dataset and write it to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			algo, err := perfecthash.ParseAlgorithm(flags.algorithm)
			if err != nil {
				return err
			}
			opts, err := a.options(&flags, algo)
			if err != nil {
				return err
			}
			ks, err := dataset.Load(a.fs, args[0])
			if err != nil {
				return err
			}
			fn, err := perfecthash.Build(cmd.Context(), ks, opts...)
			if err != nil {
				return err
			}
			if err := a.writeFunction(fn, output); err != nil {
				return err
			}
			st := fn.Stats()
			a.log.Info("wrote function",
				zap.String("path", output),
				zap.Stringer("algorithm", st.Algorithm),
				zap.Int("keys", st.NumKeys),
				zap.Uint32("n", st.N),
				zap.Int64("bytes", st.Size),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d keys, %s, %.2f bits/key\n", output, st.NumKeys, st.Algorithm, st.BitsPerKey)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.algorithm, "algorithm", a.cfg.Algorithm, "chm, bmz, bdz2, bdz3 or chd")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	_ = cmd.MarkFlagRequired("output") // only fails for an unknown flag name
	a.addBuildFlags(cmd, &flags)
	return cmd
}

func (a *app) writeFunction(fn *perfecthash.Function, path string) (err error) {
	f, err := a.fs.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := fn.WriteTo(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (a *app) readFunction(path string) (*perfecthash.Function, error) {
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	fn, err := perfecthash.OpenBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fn, nil
}

func (a *app) lookupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <function.mph> <key>...",
		Short: "Print the index and payload of each key",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, err := a.readFunction(args[0])
			if err != nil {
				return err
			}
			defer fn.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, key := range args[1:] {
				idx, err := fn.Lookup(key)
				if err != nil {
					return fmt.Errorf("lookup %q: %w", key, err)
				}
				v, err := fn.Value(key)
				if err != nil {
					return fmt.Errorf("value %q: %w", key, err)
				}
				fmt.Fprintf(w, "%s\t%d\t%d\n", key, idx, v)
			}
			return w.Flush()
		},
	}
}

func (a *app) verifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <function.mph> <dataset.json>",
		Short: "Check that a function maps a dataset one-to-one onto its payloads",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, err := a.readFunction(args[0])
			if err != nil {
				return err
			}
			defer fn.Close()
			ks, err := dataset.Load(a.fs, args[1])
			if err != nil {
				return err
			}
			if err := fn.Verify(ks); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d keys\n", ks.Len())
			return nil
		},
	}
}

// benchResult is one row of the bench table.
type benchResult struct {
	stats   *perfecthash.Stats
	elapsed time.Duration
}

func (a *app) benchCommand() *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "bench <dataset.json>",
		Short: "Build every algorithm concurrently and compare them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := dataset.Load(a.fs, args[0])
			if err != nil {
				return err
			}
			results, err := a.benchAll(cmd.Context(), ks, &flags)
			if err != nil {
				return err
			}
			return printBench(cmd.OutOrStdout(), results)
		},
	}
	a.addBuildFlags(cmd, &flags)
	return cmd
}

// benchAll builds each algorithm in its own goroutine. Every build owns its
// generator, so the goroutines share nothing but the read-only key set.
func (a *app) benchAll(ctx context.Context, ks *perfecthash.KeySet, flags *buildFlags) ([]benchResult, error) {
	results := make([]benchResult, len(perfecthash.Algorithms))
	g, ctx := errgroup.WithContext(ctx)
	for i, algo := range perfecthash.Algorithms {
		opts, err := a.options(flags, algo)
		if err != nil {
			return nil, err
		}
		g.Go(func() error {
			start := time.Now()
			fn, err := perfecthash.Build(ctx, ks, opts...)
			if err != nil {
				return fmt.Errorf("%v: %w", algo, err)
			}
			if err := fn.Verify(ks); err != nil {
				return fmt.Errorf("%v: %w", algo, err)
			}
			results[i] = benchResult{stats: fn.Stats(), elapsed: time.Since(start)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printBench(out io.Writer, results []benchResult) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "algorithm\tkeys\tn\ttrials\tbits/key\tbuild\t")
	for _, r := range results {
		s := r.stats
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.2f\t%v\t\n", s.Algorithm, s.NumKeys, s.N, s.Trials, s.BitsPerKey, r.elapsed.Round(time.Microsecond))
	}
	return w.Flush()
}
