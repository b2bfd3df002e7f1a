package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tiqio/hostroute/log"
)

func newResolveCmd(a *app) *cobra.Command {
	var user string
	var explain bool

	cmd := &cobra.Command{
		Use:   "resolve HOST [FALLBACK]",
		Short: "Print the upstream proxy URI for a host (empty line means direct)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fallback string
			if len(args) > 1 {
				fallback = args[1]
			}
			return a.answer(cmd.OutOrStdout(), args[0], fallback, user, explain)
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "authenticated username (does not affect routing)")
	cmd.Flags().BoolVar(&explain, "explain", false, "print the upstream name before the uri")
	return cmd
}

// check answers one decision per input line so a proxy written in another
// language can keep a hostroute process open on a pipe.
func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Read 'DEST [FALLBACK [USER]]' lines from stdin and print one uri per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.check(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func (a *app) check(in io.Reader, out io.Writer) error {
	w := bufio.NewWriter(out)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		var dst, fallback, user string
		fields := strings.Fields(sc.Text())
		if len(fields) > 0 {
			dst = fields[0]
		}
		if len(fields) > 1 {
			fallback = fields[1]
		}
		if len(fields) > 2 {
			user = fields[2]
		}
		// "-" stands for an absent destination
		if dst == "-" {
			dst = ""
		}
		if err := a.answer(w, dst, fallback, user, false); err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return sc.Err()
}

func (a *app) answer(w io.Writer, dst, fallback, user string, explain bool) error {
	upstream := a.router.SelectUpstream(dst, fallback, user)
	uri := a.router.URI(upstream)
	log.Debug("[ROUTE] selected", "dst", dst, "fallback", fallback, "upstream", upstream, "uri", uri)

	var err error
	if explain {
		_, err = fmt.Fprintf(w, "%s\t%s\n", upstream, uri)
	} else {
		_, err = fmt.Fprintln(w, uri)
	}
	return err
}
