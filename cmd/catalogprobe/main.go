// Command catalogprobe sends single queries to the configured catalog and
// maintains the response cache.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/sentence2songs/internal/app"
	"github.com/llehouerou/sentence2songs/internal/config"
	"github.com/llehouerou/sentence2songs/internal/errmsg"
	"github.com/llehouerou/sentence2songs/internal/render"
)

var (
	configPath string
	backend    string
	noCache    bool

	rootCmd = &cobra.Command{
		Use:           "catalogprobe",
		Short:         "Query the song catalog directly",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	searchCmd = &cobra.Command{
		Use:   "search <query>",
		Short: "Run one catalog search and print the cleaned titles",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}

	purgeCmd = &cobra.Command{
		Use:   "purge",
		Short: "Delete expired entries from the response cache",
		Args:  cobra.NoArgs,
		RunE:  runPurge,
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "additional config file (loaded last)")
	pf.StringVarP(&backend, "backend", "b", "", "catalog backend: musicbrainz or lastfm")
	searchCmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the response cache")

	rootCmd.AddCommand(searchCmd, purgeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func open(disableCache bool) (*app.App, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}
	a, err := app.Open(cfg, app.Options{Backend: backend, Workers: 1, NoCache: disableCache})
	if err != nil {
		return nil, errors.New(errmsg.FormatWith(errmsg.OpCatalogOpen, backend, err))
	}
	return a, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := open(noCache)
	if err != nil {
		return err
	}
	defer a.Close()

	query := strings.Join(args, " ")
	ctx := cmd.Context()
	if err := a.Limiter.Wait(ctx); err != nil {
		return err
	}
	tracks, err := a.Catalog.Search(ctx, query)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpCatalogSearch, query, err))
	}

	out := cmd.OutOrStdout()
	for _, t := range tracks {
		fmt.Fprintln(out, render.Line(t))
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s from %s\n",
		humanize.Comma(int64(len(tracks))), pluralTitles(len(tracks)), a.Backend)
	return nil
}

func runPurge(cmd *cobra.Command, _ []string) error {
	a, err := open(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.Cache == nil {
		return errors.New(errmsg.Format(errmsg.OpCachePurge, errors.New("cache is disabled")))
	}
	n, err := a.Cache.Purge(context.WithoutCancel(cmd.Context()))
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpCachePurge, err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "purged %s expired %s\n", humanize.Comma(n), pluralQueries(n))
	return nil
}

func pluralTitles(n int) string {
	if n == 1 {
		return "title"
	}
	return "titles"
}

func pluralQueries(n int64) string {
	if n == 1 {
		return "query"
	}
	return "queries"
}
