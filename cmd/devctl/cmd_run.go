package main

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/nanoncore/nano-devctl/orchestrator"
	"github.com/nanoncore/nano-devctl/types"
	"github.com/spf13/cobra"
)

// parseArgs turns k=v pairs into operation arguments. JSON lists and
// objects are passed decoded; every other value stays a string, which the
// operations parse as numbers or booleans where they expect one.
func parseArgs(pairs []string) (orchestrator.Args, error) {
	out := make(orchestrator.Args, len(pairs))
	for _, p := range pairs {
		k, v, found := strings.Cut(p, "=")
		if !found || k == "" {
			return nil, types.Errorf(types.KindValidation, "argument %q is not key=value", p)
		}
		if trimmed := strings.TrimSpace(v); strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
			var decoded interface{}
			if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
				return nil, types.Wrap(types.KindValidation, err, "argument %q", k)
			}
			out[k] = decoded
			continue
		}
		out[k] = v
	}
	return out, nil
}

func newRunCmd() *cobra.Command {
	var pairs []string
	cmd := &cobra.Command{
		Use:   "run <device-id> <capability> <operation>",
		Short: "Run one operation against a device of the inventory",
		Long: `Run one operation against a device of the inventory.

  devctl run 5 olt get_fibers
  devctl run 12 switch attach_vlans_to_port -a port=7 -a 'vlans=[{"vid":501,"native":true}]' -a mode=access
  devctl run 50 onu apply_onu_config -a template=zte_f660_bridge -a 'vlan_config=[{"port":1,"vids":[{"vid":100,"native":true}]}]'

Locator changes are written back to the inventory file.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return types.Errorf(types.KindValidation, "device id %q is not a number", args[0])
			}
			opArgs, err := parseArgs(pairs)
			if err != nil {
				return err
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

			res, err := a.orch.Run(cmd.Context(), id, args[1], args[2], opArgs)
			if err != nil {
				return err
			}
			if err := writeResult(res); err != nil {
				return err
			}
			if devs := a.store.List(); a.inv.changed(devs) {
				return saveInventory(inventoryPath, devs)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&pairs, "arg", "a", nil, "operation argument as key=value (repeatable)")
	return cmd
}

// writeResult prints a result as JSON. A scan prints its header line and
// then one line per ONU as it arrives.
func writeResult(res interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	stream, isStream := res.(*types.ONUStream)
	if !isStream {
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	defer stream.Close()
	if err := enc.Encode(map[string]int{"total": stream.Total, "chunk_size": stream.ChunkSize}); err != nil {
		return err
	}
	for onu := range stream.Items() {
		if err := enc.Encode(onu); err != nil {
			return err
		}
	}
	return stream.Err()
}
