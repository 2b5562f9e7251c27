// Package cli exposes the lookup as cobra commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"FRELookup/internal/app"
	"FRELookup/internal/config"
	"FRELookup/internal/logging"
	"FRELookup/internal/usecase"
)

// NewRootCommand builds the frelookup command tree. cfg is loaded lazily so
// tests can inject their own.
func NewRootCommand(load func() config.Config) *cobra.Command {
	var (
		cfg         config.Config
		mode        string
		level       string
		application *app.Application
	)

	root := &cobra.Command{
		Use:           "frelookup",
		Short:         "Look up CVM FRE chapter-8 documents and compensation plans",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg = load()
			if mode != "" {
				cfg.Resolver.Mode = strings.ToLower(mode)
			}
			if level != "" {
				cfg.Logging.Level = level
			}
			logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level)

			var err error
			application, err = app.New(cfg, logger)
			return err
		},
	}
	root.PersistentFlags().StringVar(&mode, "resolver", "", "item resolver: static or dynamic")
	root.PersistentFlags().StringVar(&level, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the lookup page over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return application.Run(ctx)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "companies",
		Short: "List every selectable company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			companies, err := application.Lookup().Companies(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range companies {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	})

	var company, item string
	resolveCmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the viewer URL of a company's chapter-8 item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := application.Lookup().Resolve(cmd.Context(), usecase.Request{
				SessionID: "cli",
				Company:   company,
				Item:      item,
			})
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), res)
		},
	}
	resolveCmd.Flags().StringVar(&company, "company", "", "company name (normalized before matching)")
	resolveCmd.Flags().StringVar(&item, "item", "", "chapter-8 item, e.g. 8.4")
	_ = resolveCmd.MarkFlagRequired("company")
	root.AddCommand(resolveCmd)

	var planCompany string
	plansCmd := &cobra.Command{
		Use:   "plans",
		Short: "List compensation-plan documents of a company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, plans, err := application.Lookup().Plans(cmd.Context(), planCompany)
			if err != nil {
				return err
			}
			if len(plans) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "Nenhum plano de remuneração encontrado para esta empresa.")
				return nil
			}
			for _, p := range plans {
				fmt.Fprintln(cmd.OutOrStdout(), p.Link)
			}
			return nil
		},
	}
	plansCmd.Flags().StringVar(&planCompany, "company", "", "company name (normalized before matching)")
	_ = plansCmd.MarkFlagRequired("company")
	root.AddCommand(plansCmd)

	return root
}

// ErrUnresolved is returned by resolve when no URL could be built.
var ErrUnresolved = errors.New("no document url resolved")

func printResult(out, errOut io.Writer, res usecase.Result) error {
	for _, n := range res.Notices {
		fmt.Fprintf(errOut, "%s: %s\n", n.Level, n.Message)
	}
	if res.URL == "" {
		return ErrUnresolved
	}
	fmt.Fprintln(out, res.URL)
	return nil
}

// Execute runs the root command with the environment configuration.
func Execute() error {
	return NewRootCommand(config.Load).Execute()
}
