package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kass/geofencer/pkg/app"
	"github.com/kass/geofencer/pkg/config"
	"github.com/kass/geofencer/pkg/editor"
	"github.com/kass/geofencer/pkg/logging"
	"github.com/kass/geofencer/pkg/region"
	"github.com/kass/geofencer/pkg/regionlist"
)

var (
	configFile string
	storeFile  string
	verbose    bool
	overwrite  bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "geofencer",
	Short: "Manage circular geofence regions",
	Long:  `Create, edit, remove, share and query titled circular regions defined by two map points.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		if storeFile != "" {
			cfg.Store.Driver = "file"
			cfg.Store.Path = storeFile
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logging.Setup(cfg.Log.Level, cfg.Log.Format)
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a region from two points",
	Long:  `Stage two points (or the current location) and confirm them as a new titled circular region.`,
	Args:  cobra.NoArgs,
	RunE:  runAdd,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List regions in order",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var removeCmd = &cobra.Command{
	Use:   "remove <index>",
	Short: "Remove the region at index",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

var editCmd = &cobra.Command{
	Use:   "edit <index>",
	Short: "Reopen a region and confirm it again",
	Long:  `The region is removed from the list, its points and title are staged, and the flags override them before it is confirmed as a new region at the end of the list.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove every region",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all regions as a JSON array",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Append regions from an exported JSON array",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var findCmd = &cobra.Command{
	Use:   "find <lat,lng>",
	Short: "List regions containing a coordinate",
	Args:  cobra.ExactArgs(1),
	RunE:  runFind,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cfg.YAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with default values",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.WriteExample(path); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "wrote %s", path)
		return nil
	},
}

var (
	firstPoint   string
	secondPoint  string
	title        string
	location     string
	firstHere    bool
	secondHere   bool
	outputFile   string
	replaceList  bool
	confirmReset bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file path")
	rootCmd.PersistentFlags().StringVarP(&storeFile, "file", "f", "", "Region file path (forces the file store)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&overwrite, "overwrite", false, "Save changes even if the stored regions could not be read")
	rootCmd.PersistentFlags().StringVar(&location, "location", "", "Current location as lat,lng")

	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().StringVar(&firstPoint, "first", "", "First point as lat,lng")
		c.Flags().StringVar(&secondPoint, "second", "", "Second point as lat,lng")
		c.Flags().BoolVar(&firstHere, "first-here", false, "Use the current location as the first point")
		c.Flags().BoolVar(&secondHere, "second-here", false, "Use the current location as the second point")
		c.Flags().StringVarP(&title, "title", "t", "", "Region title")
	}

	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write to file instead of stdout")
	importCmd.Flags().BoolVar(&replaceList, "replace", false, "Replace the whole list instead of appending")
	resetCmd.Flags().BoolVarP(&confirmReset, "yes", "y", false, "Confirm removal of every region")

	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(addCmd, listCmd, removeCmd, editCmd, resetCmd, exportCmd, importCmd, findCmd, configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(os.Stderr, "%v", err)
		os.Exit(1)
	}
}

func openApp(cmd *cobra.Command) (*app.App, error) {
	var opts []app.Option
	if location != "" {
		c, err := region.ParsePoint(location)
		if err != nil {
			return nil, fmt.Errorf("invalid --location: %w", err)
		}
		opts = append(opts, app.WithLocation(editor.FixedLocation(c)))
	}

	a, err := app.Open(cmd.Context(), cfg, nil, opts...)
	if err != nil {
		return nil, err
	}
	if a.LoadErr != nil {
		printError(cmd.ErrOrStderr(), "some regions could not be loaded: %v", a.LoadErr)
	}
	if a.Manager.SavesHeld() {
		if overwrite {
			a.Manager.AllowOverwrite()
		} else {
			printError(cmd.ErrOrStderr(), "changes will not be saved; pass --overwrite to replace the stored regions")
		}
	}
	return a, nil
}

// stage applies the point flags to the session
func stage(ctx context.Context, s *editor.Session) error {
	for _, p := range []struct {
		which editor.Which
		value string
		here  bool
	}{
		{editor.First, firstPoint, firstHere},
		{editor.Second, secondPoint, secondHere},
	} {
		switch {
		case p.here:
			if _, err := s.UseCurrentLocation(ctx, p.which); err != nil {
				return fmt.Errorf("%s point: %w", p.which, err)
			}
		case p.value != "":
			c, err := region.ParsePoint(p.value)
			if err != nil {
				return fmt.Errorf("%s point: %w", p.which, err)
			}
			if p.which == editor.First {
				s.SetFirst(c)
			} else {
				s.SetSecond(c)
			}
		}
	}
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if err := stage(ctx, a.Session); err != nil {
		return err
	}

	r, err := a.Session.OnDone(ctx, title)
	if err != nil {
		return err
	}

	printSuccess(cmd.OutOrStdout(), "added %q (%d regions)", r.Title(), a.Manager.Len())
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	printRegions(cmd.OutOrStdout(), a.Manager.Regions())
	return nil
}

func parseIndex(a *app.App, arg string) (region.Region, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid index %q", arg)
	}
	return a.Manager.At(i)
}

func runRemove(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := parseIndex(a, args[0])
	if err != nil {
		return err
	}
	if _, err := a.Manager.Remove(cmd.Context(), r.ID()); err != nil {
		return err
	}

	printSuccess(cmd.OutOrStdout(), "removed %q", r.Title())
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid index %q", args[0])
	}
	r, err := a.Manager.At(index)
	if err != nil {
		return err
	}
	if _, err := a.Session.OnEditExistingRegion(ctx, r.ID()); err != nil {
		return err
	}

	updated, err := confirmEdit(ctx, a.Session)
	if err != nil {
		restore(ctx, a, index, r)
		return err
	}

	printSuccess(cmd.OutOrStdout(), "updated %q", updated.Title())
	return nil
}

// confirmEdit applies the point and title flags over the reopened region
func confirmEdit(ctx context.Context, s *editor.Session) (*region.CircularRegion, error) {
	if err := stage(ctx, s); err != nil {
		return nil, err
	}
	t := title
	if t == "" {
		t = s.PendingTitle()
	}
	return s.OnDone(ctx, t)
}

// restore puts a region removed for editing back at its old position
func restore(ctx context.Context, a *app.App, index int, r region.Region) {
	a.Session.Cancel()
	regions := a.Manager.Regions()
	index = min(index, len(regions))
	a.Manager.Replace(ctx, slices.Insert(regions, index, r))
}

func runReset(cmd *cobra.Command, args []string) error {
	if !confirmReset {
		return errors.New("refusing to remove every region without --yes")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	n := a.Manager.Len()
	a.Session.OnReset(cmd.Context())
	printSuccess(cmd.OutOrStdout(), "removed %d regions", n)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	sharer := editor.SharerFunc(func(_ context.Context, payload string) error {
		if outputFile == "" {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), payload)
			return err
		}
		return os.WriteFile(outputFile, []byte(payload), 0o644)
	})

	if err := a.Session.OnShare(cmd.Context(), sharer); err != nil {
		return err
	}
	if outputFile != "" {
		printSuccess(cmd.OutOrStdout(), "exported %d regions to %s", a.Manager.Len(), outputFile)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var decodeOpts []region.DecodeOption
	if !cfg.Decode.Strict {
		decodeOpts = append(decodeOpts, region.Permissive())
	}

	regions, err := regionlist.DecodeAll(string(data), decodeOpts...)
	if regions == nil {
		return err
	}
	if err != nil {
		printError(cmd.ErrOrStderr(), "skipped entries: %v", err)
	}

	ctx := cmd.Context()
	if replaceList {
		a.Manager.Replace(ctx, regions)
	} else {
		a.Manager.Append(ctx, regions...)
	}

	printSuccess(cmd.OutOrStdout(), "imported %d regions (%d total)", len(regions), a.Manager.Len())
	return nil
}

func runFind(cmd *cobra.Command, args []string) error {
	c, err := region.ParsePoint(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	found := a.Index.RegionsAt(c)
	printInfo(cmd.OutOrStdout(), "%d of %d regions contain %s", len(found), a.Manager.Len(), region.FormatPoint(c))
	printRegions(cmd.OutOrStdout(), found)
	return nil
}
