package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tiqio/hostroute/router"
)

type ruleView struct {
	router.Rule `yaml:",inline"`
	URI         string `yaml:"uri"`
}

func newRulesCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Show the compiled routing rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case "table":
				return a.renderTable(cmd.OutOrStdout())
			case "yaml":
				return a.renderYAML(cmd.OutOrStdout())
			}
			return oops.In("cli").With("output", output).Errorf("unknown output format %q", output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or yaml")
	return cmd
}

func (a *app) views() []ruleView {
	rules := a.router.Rules()
	views := make([]ruleView, 0, len(rules))
	for _, r := range rules {
		views = append(views, ruleView{Rule: r, URI: a.router.URI(r.Target)})
	}
	return views
}

func (a *app) renderTable(w io.Writer) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "MATCH", "PATTERN", "UPSTREAM", "URI")
	for i, v := range a.views() {
		t.Row(strconv.Itoa(i+1), v.Kind.String(), v.Pattern, v.Target.String(), v.URI)
	}
	t.Row("*", "default", "", router.UpstreamDirect.String(), "")

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func (a *app) renderYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(a.views()); err != nil {
		return oops.In("cli").Wrapf(err, "encode rules")
	}
	return enc.Close()
}
