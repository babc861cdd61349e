package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	devctl "github.com/nanoncore/nano-devctl"
	"github.com/nanoncore/nano-devctl/registry"
	"github.com/nanoncore/nano-devctl/types"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type pollResult struct {
	id       int64
	name     string
	identity *types.Identity
	err      error
}

// poll reads the identity of every directly managed device, at most
// parallel at a time. Per-device failures are reported, not returned.
func poll(ctx context.Context, a *app, parallel int) ([]pollResult, error) {
	var (
		mu  sync.Mutex
		out []pollResult
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for _, d := range a.store.List() {
		d := d // per-iteration copy (module targets go 1.21 loop semantics)
		entry, err := registry.Resolve(d.Type)
		if err != nil || entry.Family == devctl.FamilyONU {
			continue
		}
		family := entry.Family
		g.Go(func() error {
			res, err := a.orch.Run(ctx, d.ID, string(family), "identity", nil)
			r := pollResult{id: d.ID, name: d.Name, err: err}
			if err == nil {
				r.identity, _ = res.(*types.Identity)
			}
			mu.Lock()
			out = append(out, r)
			mu.Unlock()
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out, nil
}

func newPollCmd() *cobra.Command {
	var parallel int
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Read the identity of every switch and OLT of the inventory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if parallel < 1 {
				return types.Errorf(types.KindValidation, "--parallel must be at least 1")
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.close(); err == nil {
					err = cerr
				}
			}()

			results, err := poll(cmd.Context(), a, parallel)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSYSNAME\tUPTIME\tERROR")
			fmt.Fprintln(w, "--\t----\t-------\t------\t-----")
			for _, r := range results {
				if r.err != nil {
					fmt.Fprintf(w, "%d\t%s\t-\t-\t%s\n", r.id, r.name, types.KindOf(r.err))
					continue
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t\n", r.id, r.name, r.identity.Name, r.identity.Uptime.Truncate(time.Second))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 8, "devices polled at once")
	return cmd
}
