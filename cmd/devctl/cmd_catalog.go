package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	devctl "github.com/nanoncore/nano-devctl"
	"github.com/nanoncore/nano-devctl/types"
	"github.com/spf13/cobra"
)

var jsonOutput bool

func parseType(s string) (devctl.DeviceType, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, types.Errorf(types.KindValidation, "device type %q is not a number", s)
	}
	return devctl.DeviceType(n), nil
}

func newTypesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the supported device types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := devctl.ListDeviceTypes()
			if jsonOutput {
				return json.NewEncoder(os.Stdout).Encode(list)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tFAMILY\tDESCRIPTION")
			fmt.Fprintln(w, "----\t------\t-----------")
			for _, t := range list {
				fmt.Fprintf(w, "%d\t%s\t%s\n", t.Code, t.Family, t.Description)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "JSON output")
	return cmd
}

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates <type>",
		Short: "List the configuration templates of a device type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := parseType(args[0])
			if err != nil {
				return err
			}
			list, err := devctl.ListConfigTemplates(code)
			if err != nil {
				return err
			}
			if jsonOutput {
				return json.NewEncoder(os.Stdout).Encode(list)
			}
			if len(list) == 0 {
				fmt.Printf("no templates for device type %d\n", code)
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tVLAN\tTITLE")
			fmt.Fprintln(w, "----\t----\t-----")
			for _, t := range list {
				fmt.Fprintf(w, "%s\t%t\t%s\n", t.ShortCode, t.AcceptsVLAN, t.Title)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "JSON output")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <type> <snmp_extra>",
		Short: "Check a locator against a device type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := parseType(args[0])
			if err != nil {
				return err
			}
			if err := devctl.ValidateSNMPExtra(code, args[1]); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	}
}
