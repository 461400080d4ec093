package cmd

import (
	"github.com/spf13/cobra"

	"github.com/idmkit/idm-cli/internal/api"
	"github.com/idmkit/idm-cli/internal/config"
)

// PrefixReport is the output of `idm prefixes`.
type PrefixReport struct {
	Profile  string           `json:"profile"`
	BaseURL  string           `json:"base_url,omitempty"`
	Scheme   string           `json:"scheme"`
	Prefixes api.PrefixConfig `json:"prefixes"`
}

func newPrefixesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "prefixes",
		Aliases: []string{"routes"},
		Short:   "Show the resolved route prefix table",
		Long: `Show the route prefix of every endpoint group.

The table is built from, in order of precedence: --base-prefix, --api-version,
--legacy-prefixes, then the default v1 layout. --prefix group=/path overrides
single groups on top. No request is sent.`,
		Example: `  idm prefixes --api-version v2
  idm prefixes --base-prefix /gateway/idm --prefix oauth2=/oauth2 -o json`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			report, err := buildPrefixReport()
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, report)
			}
			f := formatter(cmd)
			f.KV("Profile", report.Profile)
			f.KV("Base URL", dashIfEmpty(report.BaseURL))
			f.KV("Scheme", report.Scheme)
			_ = f.EndTable()
			f.StartTable([]string{"GROUP", "PREFIX"})
			for _, group := range api.RouteGroups {
				f.Row(string(group), report.Prefixes.Get(group))
			}
			return f.EndTable()
		}),
	}
}

func buildPrefixReport() (*PrefixReport, error) {
	overrides, err := flagOverrides()
	if err != nil {
		return nil, err
	}
	cfg, err := config.ResolveLayers(overrides)
	if err != nil {
		return nil, err
	}
	groups, err := routePrefixes(cfg.Prefixes)
	if err != nil {
		return nil, err
	}
	opts := api.PrefixOptions{
		BasePrefix:        cfg.BasePrefix,
		APIVersion:        cfg.APIVersion,
		UseLegacyPrefixes: cfg.LegacyPrefixes,
		Overrides:         groups,
	}
	table, err := api.ResolvePrefixes(opts)
	if err != nil {
		return nil, err
	}
	return &PrefixReport{
		Profile:  cfg.ProfileName,
		BaseURL:  cfg.BaseURL,
		Scheme:   opts.SchemeName(),
		Prefixes: table,
	}, nil
}
