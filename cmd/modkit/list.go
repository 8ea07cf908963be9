// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"modkit/internal/issue"
	"modkit/internal/loader"

	"github.com/spf13/cobra"
)

var (
	fromReportFlag string

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Show the resolved load order",
		Long: `Resolve the mods directory and print the resulting load order.
With --from-report, a previously written load order report is shown
instead of running a fresh resolution.`,
		RunE: runList,
	}

	showCmd = &cobra.Command{
		Use:   "show <modid>",
		Short: "Show details for one loaded mod",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
)

func init() {
	listCmd.Flags().StringVar(&fromReportFlag, "from-report", "", "read this load order report instead of resolving")
}

func runList(cmd *cobra.Command, _ []string) error {
	if fromReportFlag != "" {
		return listFromReport(fromReportFlag)
	}

	h, err := newHandler(cmd)
	if err != nil {
		return err
	}
	if err := h.LoadMods(cmd.Context()); err != nil {
		return renderLoadError(err)
	}

	printLoadOrder(h.LoadedMods())
	return nil
}

func listFromReport(path string) error {
	report, err := loader.ReadReport(path)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	fmt.Println(SubtitleStyle.Render(fmt.Sprintf("load order from %s (loader %s, generated %s)",
		path, report.LoaderVersion, report.Generated.Format("2006-01-02 15:04:05 MST"))))
	for i, m := range report.Mods {
		kind := "paks only"
		if m.Module {
			kind = "module"
		}
		fmt.Printf("%2d. %s %s %s\n",
			i+1, ModStyle.Render(m.ModID), m.Version, SubtitleStyle.Render("("+kind+")"))
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	h, err := newHandler(cmd)
	if err != nil {
		return err
	}
	if err := h.LoadMods(cmd.Context()); err != nil {
		return renderLoadError(err)
	}

	mc, err := h.LoadedMod(args[0])
	var nle *loader.NotLoadedError
	if errors.As(err, &nle) {
		renderIssue(issue.ModNotLoadedId)
		return &ExitError{Code: 1, Err: err}
	}
	if err != nil {
		return err
	}

	desc := mc.Descriptor
	fmt.Println(TitleStyle.Render(desc.Name) + SubtitleStyle.Render(" ("+desc.ModID+")"))
	fmt.Println("version:     " + desc.Version.String())
	if desc.Description != "" {
		fmt.Println("description: " + desc.Description)
	}
	if len(desc.Authors) > 0 {
		fmt.Printf("authors:     %v\n", desc.Authors)
	}
	fmt.Println("source:      " + ModStyle.Render(mc.SourcePath))
	if mc.HasModuleRef() {
		fmt.Println("module:      yes")
	}
	for _, pak := range mc.PakPaths {
		fmt.Println("pak:         " + VerboseStyle.Render(pak))
	}
	if mc.ConfigPath != "" {
		fmt.Println("config:      " + VerboseStyle.Render(mc.ConfigPath))
	}
	for depID, r := range desc.Dependencies {
		fmt.Printf("requires:    %s (%s)\n", depID, r)
	}
	return nil
}
