package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperengineering/nurture/internal/catalog"
	"github.com/hyperengineering/nurture/internal/selection"
)

// executeCmd executes a subcommand with captured output.
func executeCmd(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	// Reset package-level flag variables to their defaults.
	// Cobra parses into these variables, so stale values from previous tests
	// would leak if not reset.
	catalogDir = ""
	catalogJSONOutput = false
	queryAgeMonths = -1
	queryCatalog = ""
	queryCategory = ""
	queryCompleted = ""
	queryVisibility = selection.DefaultMedicalVisibility
	queryJSONOutput = false
	queryDir = ""
	ageBirthDate = ""
	ageJSONOutput = false

	t.Setenv("NURTURE_CATALOG_DIR", "")

	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)

	rootCmd.SetOut(outBuf)
	rootCmd.SetErr(errBuf)
	rootCmd.SetArgs(args)

	err = rootCmd.Execute()

	// Reset output to defaults after execution
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	rootCmd.SetArgs(nil)

	return outBuf.String(), errBuf.String(), err
}

func writeCatalogFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const customActivities = `name: activities/custom
kind: activities
description: House activities
activities:
- id: sock_sort
  title: Sock Sorting
  description: Match socks by colour
  instructions: [Pile up socks, Find pairs]
  age_range: [18, 36]
  duration: 10 minutes
  participants: 1
  category: cognitive
  difficulty: easy
  materials: [socks]
  benefits: [matching]
`

const brokenActivities = `name: activities/broken
kind: activities
activities:
- id: bad_one
  title: ""
  age_range: [10, 2]
  participants: 0
  category: juggling
  difficulty: easy
`

// --- catalog list ---

func TestCatalogList_Table(t *testing.T) {
	stdout, _, err := executeCmd(t, "catalog", "list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"NAME", catalog.EnhancedMilestones, catalog.OfficialMilestones,
		catalog.DefaultActivities, catalog.DefaultMedical} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestCatalogList_JSON(t *testing.T) {
	stdout, _, err := executeCmd(t, "catalog", "list", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var infos []catalog.Info
	if err := json.Unmarshal([]byte(stdout), &infos); err != nil {
		t.Fatalf("invalid JSON output: %v\nraw: %s", err, stdout)
	}
	if len(infos) != 4 {
		t.Fatalf("len(infos) = %d, want 4", len(infos))
	}
	for _, info := range infos {
		if info.Kind == catalog.KindMilestones && info.Policy == nil {
			t.Errorf("%s: milestone catalog without policy", info.Name)
		}
	}
}

func TestCatalogList_IncludesOverrideDir(t *testing.T) {
	dir := t.TempDir()
	writeCatalogFile(t, dir, "custom.yaml", customActivities)

	stdout, _, err := executeCmd(t, "catalog", "list", "--dir", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "activities/custom") {
		t.Errorf("stdout = %q, want it to contain activities/custom", stdout)
	}
}

// --- catalog validate ---

func TestCatalogValidate_OK(t *testing.T) {
	dir := t.TempDir()
	writeCatalogFile(t, dir, "custom.yaml", customActivities)

	stdout, _, err := executeCmd(t, "catalog", "validate", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "ok (5 catalogs)") {
		t.Errorf("stdout = %q, want ok with 5 catalogs", stdout)
	}
}

func TestCatalogValidate_ReportsEveryError(t *testing.T) {
	dir := t.TempDir()
	writeCatalogFile(t, dir, "broken.yaml", brokenActivities)

	stdout, _, err := executeCmd(t, "catalog", "validate", dir, "--json")
	if err == nil {
		t.Fatal("expected error for invalid catalog, got nil")
	}

	var report validationReport
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("invalid JSON output: %v\nraw: %s", err, stdout)
	}
	if report.Valid {
		t.Error("report.Valid = true, want false")
	}
	fields := make(map[string]bool)
	for _, e := range report.Errors {
		fields[e.Field] = true
	}
	for _, want := range []string{"title", "age_range", "participants", "category"} {
		if !fields[want] {
			t.Errorf("missing error for field %q in %+v", want, report.Errors)
		}
	}
}

func TestCatalogValidate_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeCatalogFile(t, dir, "bad.yaml", "name: x\nkind: activities\nunknown_key: 1\n")

	stdout, _, err := executeCmd(t, "catalog", "validate", dir, "--json")
	if err == nil {
		t.Fatal("expected error for malformed document, got nil")
	}
	var report validationReport
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("invalid JSON output: %v\nraw: %s", err, stdout)
	}
	if report.Error == "" {
		t.Error("report.Error is empty, want decode failure")
	}
}

func TestCatalogValidate_RequiresDir(t *testing.T) {
	_, _, err := executeCmd(t, "catalog", "validate")
	if err == nil {
		t.Fatal("expected error without a directory, got nil")
	}
	if !strings.Contains(err.Error(), "no catalog directory") {
		t.Errorf("error = %q, want it to mention the missing directory", err.Error())
	}
}

// --- milestones ---

func TestMilestones_Table(t *testing.T) {
	stdout, _, err := executeCmd(t, "milestones", "--age", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "first_smile") {
		t.Errorf("stdout = %q, want it to contain first_smile", stdout)
	}
	if !strings.Contains(stdout, catalog.EnhancedMilestones+" at 2 months") {
		t.Errorf("stdout = %q, want a summary line for the enhanced catalog", stdout)
	}
}

func TestMilestones_CompletedJSON(t *testing.T) {
	stdout, _, err := executeCmd(t, "milestones", "--age", "2", "--completed", "first_smile", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var view struct {
		Current struct {
			Items []struct {
				ID   string `json:"id"`
				Tier string `json:"tier"`
			} `json:"items"`
		} `json:"current"`
		Progress struct {
			Completed int `json:"completed"`
		} `json:"progress"`
	}
	if err := json.Unmarshal([]byte(stdout), &view); err != nil {
		t.Fatalf("invalid JSON output: %v\nraw: %s", err, stdout)
	}
	if view.Progress.Completed != 1 {
		t.Errorf("progress.completed = %d, want 1", view.Progress.Completed)
	}
	for _, item := range view.Current.Items {
		if item.ID == "first_smile" && item.Tier != "completed" {
			t.Errorf("first_smile tier = %q, want completed", item.Tier)
		}
	}
}

func TestMilestones_EmptyPastCatalog(t *testing.T) {
	stdout, _, err := executeCmd(t, "milestones", "--age", "120")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "No milestones for this age.") {
		t.Errorf("stdout = %q, want empty-state line", stdout)
	}
}

func TestMilestones_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing age", []string{"milestones"}, "--age is required"},
		{"unknown catalog", []string{"milestones", "--age", "3", "--catalog", "milestones/nope"}, "unknown catalog"},
		{"bad category", []string{"milestones", "--age", "3", "--category", "juggling"}, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCmd(t, tt.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.want)
			}
		})
	}
}

// --- activities ---

func TestActivities_CategoryFilter(t *testing.T) {
	stdout, _, err := executeCmd(t, "activities", "--age", "4", "--category", "physical", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sel struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
		Empty bool `json:"empty"`
	}
	if err := json.Unmarshal([]byte(stdout), &sel); err != nil {
		t.Fatalf("invalid JSON output: %v\nraw: %s", err, stdout)
	}
	if len(sel.Items) != 1 || sel.Items[0].ID != "tummy_time_fun" {
		t.Errorf("items = %+v, want only tummy_time_fun", sel.Items)
	}
}

func TestActivities_Empty(t *testing.T) {
	stdout, _, err := executeCmd(t, "activities", "--age", "70")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "No activities for this age.") {
		t.Errorf("stdout = %q, want empty-state line", stdout)
	}
}

func TestActivities_OverrideCatalog(t *testing.T) {
	dir := t.TempDir()
	writeCatalogFile(t, dir, "custom.yaml", customActivities)

	stdout, _, err := executeCmd(t, "activities", "--age", "20", "--dir", dir, "--catalog", "activities/custom")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "sock_sort") {
		t.Errorf("stdout = %q, want it to contain sock_sort", stdout)
	}
}

// --- medical ---

func TestMedical_Schedule(t *testing.T) {
	stdout, _, err := executeCmd(t, "medical", "--age", "2", "--completed", "birth_checkup", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var view selection.MedicalSchedule
	if err := json.Unmarshal([]byte(stdout), &view); err != nil {
		t.Fatalf("invalid JSON output: %v\nraw: %s", err, stdout)
	}
	if len(view.Completed) != 1 || view.Completed[0].ID != "birth_checkup" {
		t.Errorf("completed = %+v, want birth_checkup", view.Completed)
	}
	wantUpcoming := "hep_b_1,2m_checkup,dtap_1,polio_1,hib_1,4m_checkup,dtap_2,polio_2"
	if got := medicalIDs(view.Upcoming); got != wantUpcoming {
		t.Errorf("upcoming = %s, want %s", got, wantUpcoming)
	}
	wantUrgent := "hep_b_1,2m_checkup,dtap_1,polio_1,hib_1"
	if got := medicalIDs(view.Urgent); got != wantUrgent {
		t.Errorf("urgent = %s, want %s", got, wantUrgent)
	}
}

func medicalIDs(items []selection.MedicalItem) string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return strings.Join(ids, ",")
}

func TestMedical_TableStatuses(t *testing.T) {
	stdout, _, err := executeCmd(t, "medical", "--age", "2", "--completed", "birth_checkup")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"STATUS", "completed", "urgent", "upcoming"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

// --- age ---

func TestAge_Text(t *testing.T) {
	old := queryNow
	queryNow = func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }
	defer func() { queryNow = old }()

	stdout, _, err := executeCmd(t, "age", "--birth-date", "2024-12-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "180 days, 5 months") {
		t.Errorf("stdout = %q, want 180 days and 5 months", stdout)
	}
	if !strings.Contains(stdout, "stage infant") {
		t.Errorf("stdout = %q, want stage infant", stdout)
	}
}

func TestAge_FutureBirthDateWarns(t *testing.T) {
	old := queryNow
	queryNow = func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }
	defer func() { queryNow = old }()

	stdout, _, err := executeCmd(t, "age", "--birth-date", "2025-09-01", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var report struct {
		Days     int      `json:"days"`
		Warnings []string `json:"warnings"`
	}
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("invalid JSON output: %v\nraw: %s", err, stdout)
	}
	if report.Days != 0 || len(report.Warnings) != 1 {
		t.Errorf("report = %+v, want clamped age with one warning", report)
	}
}

func TestAge_Errors(t *testing.T) {
	if _, _, err := executeCmd(t, "age"); err == nil {
		t.Error("expected error without --birth-date")
	}
	if _, _, err := executeCmd(t, "age", "--birth-date", "June 1st"); err == nil {
		t.Error("expected error for unparseable birth date")
	}
}
