package main

import (
	"fmt"
	"os"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tiqio/hostroute/config"
	"github.com/tiqio/hostroute/log"
	"github.com/tiqio/hostroute/router"
)

type app struct {
	v       *viper.Viper
	cfgFile string
	router  *router.Router
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "hostroute",
		Short:         "Pick the upstream proxy (direct, Tor or VPN) for a destination host",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (yaml)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-file", "", "write logs to a rotating file instead of stderr")
	pf.String("match-mode", "", "suffix matching: suffix (plain) or label (label boundary)")
	_ = a.v.BindPFlag(config.KeyLogLevel, pf.Lookup("log-level"))
	_ = a.v.BindPFlag(config.KeyLogFile, pf.Lookup("log-file"))
	_ = a.v.BindPFlag(config.KeyMatchMode, pf.Lookup("match-mode"))

	root.AddCommand(newResolveCmd(a), newCheckCmd(a), newRulesCmd(a))
	return root
}

func (a *app) setup() error {
	conf, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	if err := log.Init(conf.Log); err != nil {
		return err
	}
	log.With("run_id", uuid.Must(uuid.NewV4()).String())
	log.Debug("[CONFIG] loaded", "file", a.cfgFile, "match_mode", conf.Router.MatchMode,
		"tor_suffixes", conf.Router.TorSuffixes, "vpn_suffixes", conf.Router.VPNSuffixes)

	a.router = router.New(conf.Router)
	return nil
}

// execute runs cmd and releases the log file whether or not it failed;
// cobra skips post-run hooks after an error.
func execute(cmd *cobra.Command) error {
	defer func() { _ = log.Close() }()
	return cmd.Execute()
}

func main() {
	if err := execute(newRootCmd()); err != nil {
		fmt.Fprintln(os.Stderr, "hostroute:", err)
		os.Exit(1)
	}
}
