package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/nurture/internal/age"
	"github.com/hyperengineering/nurture/internal/catalog"
	"github.com/hyperengineering/nurture/internal/selection"
	"github.com/hyperengineering/nurture/internal/types"
	"github.com/hyperengineering/nurture/internal/validation"
)

var (
	queryAgeMonths  int
	queryCatalog    string
	queryCategory   string
	queryCompleted  string
	queryVisibility int
	queryJSONOutput bool
	queryDir        string
	ageBirthDate    string
	ageJSONOutput   bool
)

var milestonesCmd = &cobra.Command{
	Use:   "milestones",
	Short: "Show the milestones selected for an age",
	Args:  cobra.NoArgs,
	RunE:  runMilestones,
}

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "Show the activities suited to an age",
	Args:  cobra.NoArgs,
	RunE:  runActivities,
}

var medicalCmd = &cobra.Command{
	Use:   "medical",
	Short: "Show the medical schedule at an age",
	Args:  cobra.NoArgs,
	RunE:  runMedical,
}

var ageCmd = &cobra.Command{
	Use:   "age",
	Short: "Compute a child's age from a birth date",
	Args:  cobra.NoArgs,
	RunE:  runAge,
}

func init() {
	for _, c := range []*cobra.Command{milestonesCmd, activitiesCmd, medicalCmd} {
		c.Flags().IntVar(&queryAgeMonths, "age", -1, "Age in whole months (required)")
		c.Flags().StringVar(&queryCatalog, "catalog", "", "Catalog name (defaults to the built-in one)")
		c.Flags().StringVar(&queryCompleted, "completed", "", "Comma-separated completed record ids")
		c.Flags().StringVar(&queryDir, "dir", "", "Catalog override directory")
		c.Flags().BoolVar(&queryJSONOutput, "json", false, "Output in JSON format")
	}
	milestonesCmd.Flags().StringVar(&queryCategory, "category", "", "Restrict to one milestone category")
	activitiesCmd.Flags().StringVar(&queryCategory, "category", "", "Restrict to one activity category")
	medicalCmd.Flags().IntVar(&queryVisibility, "visibility", selection.DefaultMedicalVisibility,
		"Months ahead of the child's age to show")

	ageCmd.Flags().StringVar(&ageBirthDate, "birth-date", "", "Birth date (YYYY-MM-DD)")
	ageCmd.Flags().BoolVar(&ageJSONOutput, "json", false, "Output in JSON format")
}

// loadQuerySet validates --age and loads the catalogs for a query command.
func loadQuerySet() (*catalog.Set, error) {
	if queryAgeMonths < 0 {
		return nil, errors.New("--age is required and must be a non-negative number of months")
	}
	return catalog.Load(resolveCatalogDir(queryDir))
}

func runMilestones(cmd *cobra.Command, args []string) error {
	set, err := loadQuerySet()
	if err != nil {
		return err
	}
	category := types.Category(queryCategory)
	if category != "" {
		if err := validation.ValidateEnum("category", category, types.MilestoneCategories); err != nil {
			return err
		}
	}
	mc, err := set.Milestones(orDefault(queryCatalog, catalog.EnhancedMilestones))
	if err != nil {
		return err
	}
	view := selection.SelectMilestones(mc, queryAgeMonths,
		selection.NewCompletedSet(splitList(queryCompleted)...), category)

	w := cmd.OutOrStdout()
	if queryJSONOutput {
		return printJSON(w, view)
	}

	fmt.Fprintf(w, "%s at %d months: %d/%d completed (%d%%)\n",
		view.Catalog, queryAgeMonths, view.Progress.Completed, view.Progress.Total, view.Progress.Percent)
	if view.Current.Empty {
		fmt.Fprintln(w, "No milestones for this age.")
	} else {
		tw := newTabWriter(w)
		fmt.Fprintln(tw, "ID\tTIER\tCATEGORY\tAGE\tTITLE")
		for _, m := range view.Current.Items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				m.ID, m.Tier, m.Category, age.FormatRange(m.AgeRange), m.Title)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	if len(view.Upcoming) > 0 {
		ids := make([]string, len(view.Upcoming))
		for i, m := range view.Upcoming {
			ids[i] = m.ID
		}
		fmt.Fprintf(w, "Coming up: %s\n", strings.Join(ids, ", "))
	}
	return nil
}

func runActivities(cmd *cobra.Command, args []string) error {
	set, err := loadQuerySet()
	if err != nil {
		return err
	}
	category := types.ActivityCategory(queryCategory)
	if category != "" {
		if err := validation.ValidateEnum("category", category, types.ActivityCategories); err != nil {
			return err
		}
	}
	ac, err := set.Activities(orDefault(queryCatalog, catalog.DefaultActivities))
	if err != nil {
		return err
	}
	records := ac.Activities
	if category != "" {
		records = selection.FilterActivityCategory(records, category)
	}
	sel := selection.Select(records, queryAgeMonths, selection.StrictWindow)

	w := cmd.OutOrStdout()
	if queryJSONOutput {
		return printJSON(w, sel)
	}
	if sel.Empty {
		fmt.Fprintln(w, "No activities for this age.")
		return nil
	}
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "ID\tCATEGORY\tDIFFICULTY\tDURATION\tTITLE")
	for _, a := range sel.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Category, a.Difficulty, orDash(a.Duration), a.Title)
	}
	return tw.Flush()
}

func runMedical(cmd *cobra.Command, args []string) error {
	set, err := loadQuerySet()
	if err != nil {
		return err
	}
	sched, err := set.Medical(orDefault(queryCatalog, catalog.DefaultMedical))
	if err != nil {
		return err
	}
	view := selection.SelectMedical(sched.Events, queryAgeMonths,
		selection.NewCompletedSet(splitList(queryCompleted)...), queryVisibility)

	w := cmd.OutOrStdout()
	if queryJSONOutput {
		return printJSON(w, view)
	}
	if view.AllCaughtUp {
		fmt.Fprintln(w, "All caught up.")
	}
	items := append(append([]selection.MedicalItem{}, view.Upcoming...), view.Completed...)
	if len(items) == 0 {
		return nil
	}
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "ID\tTYPE\tDUE\tSTATUS\tTITLE")
	for _, item := range items {
		status := "upcoming"
		switch {
		case item.Completed:
			status = "completed"
		case item.Urgent:
			status = "urgent"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			item.ID, item.Type, orDash(item.DueLabel), status, item.Title)
	}
	return tw.Flush()
}

// ageReport is the JSON shape of the age command.
type ageReport struct {
	age.Age
	Description string      `json:"description"`
	Stage       types.Stage `json:"stage"`
}

func runAge(cmd *cobra.Command, args []string) error {
	if ageBirthDate == "" {
		return errors.New("--birth-date is required")
	}
	birth, err := age.Parse(ageBirthDate)
	if err != nil {
		return err
	}
	a := age.Resolve(birth, queryNow())
	report := ageReport{
		Age:         a,
		Description: age.Describe(a.Days),
		Stage:       age.StageFor(a.Months),
	}

	w := cmd.OutOrStdout()
	if ageJSONOutput {
		return printJSON(w, report)
	}
	fmt.Fprintf(w, "%s (%d days, %d months, stage %s)\n",
		report.Description, a.Days, a.Months, report.Stage)
	for _, warning := range a.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
