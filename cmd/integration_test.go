package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/causeboard/internal/mortality"
)

const testDataset = `Year,113 Cause Name,Cause Name,State,Deaths,Age-adjusted Death Rate
2016,Malignant neoplasms (C00-C97),Cancer,United States,"598,038",155.8
2017,All causes,All causes,United States,"2,813,503",731.9
2017,Malignant neoplasms (C00-C97),Cancer,United States,"599,108",
2017,Diseases of heart (I00-I09),Diseases of heart,United States,"647,457",165
2017,Malignant neoplasms (C00-C97),Cancer,Ohio,"25,000",160.1
`

// resetFlags clears values and Changed state left over from earlier runs.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd runs the root command with args and returns stdout and the error.
func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

// setupHome isolates config under a temp HOME and writes the dataset there.
func setupHome(t *testing.T) (home, data string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	data = filepath.Join(home, "deaths.csv")
	if err := os.WriteFile(data, []byte(testDataset), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return home, data
}

func TestCLI_Clean(t *testing.T) {
	home, data := setupHome(t)

	out := runCmd(t, "clean", data, "--head", "2")
	if !strings.Contains(out, "Shape: (5, 6)") {
		t.Fatalf("missing shape in output:\n%s", out)
	}
	if !strings.Contains(out, "| 2016 | Malignant neoplasms (C00-C97) | Cancer | United States | 598038 | 155.8 |") {
		t.Fatalf("missing head row in output:\n%s", out)
	}

	cleaned := filepath.Join(home, "out", "clean.csv")
	runCmd(t, "clean", data, "-o", cleaned)
	b, err := os.ReadFile(cleaned)
	if err != nil {
		t.Fatalf("read cleaned: %v", err)
	}
	// 2017 Cancer rate is forward-filled from the national 2017 all-causes row.
	if !strings.Contains(string(b), "2017,Malignant neoplasms (C00-C97),Cancer,United States,599108,731.9") {
		t.Fatalf("unexpected cleaned csv:\n%s", b)
	}

	book := filepath.Join(home, "out", "clean.xlsx")
	runCmd(t, "clean", data, "-o", book)
	tbl, err := mortality.Load(book, mortality.DefaultOptions())
	if err != nil {
		t.Fatalf("reload workbook: %v", err)
	}
	if tbl.Len() != 5 {
		t.Fatalf("expected 5 records in workbook, got %d", tbl.Len())
	}
	if r := tbl.At(2); r.Deaths != 599108 || r.AgeAdjustedRate != 731.9 {
		t.Fatalf("unexpected workbook record: %+v", r)
	}

	out = runCmd(t, "clean", data, "-o", "-")
	if !strings.HasPrefix(out, "Year,113 Cause Name,Cause Name,State,Deaths,Age-adjusted Death Rate\n") {
		t.Fatalf("expected csv on stdout, got:\n%s", out)
	}
}

func TestCLI_Years(t *testing.T) {
	_, data := setupHome(t)
	out := runCmd(t, "years", "--data", data)
	if out != "2016\n2017\n" {
		t.Fatalf("unexpected years output: %q", out)
	}
}

func TestCLI_AggregateFormats(t *testing.T) {
	home, data := setupHome(t)

	out := runCmd(t, "aggregate", data, "--sort", "deaths")
	if !strings.Contains(out, "Causes of Death in United States (2017)") {
		t.Fatalf("missing title:\n%s", out)
	}
	if strings.Contains(out, "All causes") {
		t.Fatalf("default exclusion should drop All causes:\n%s", out)
	}
	if !strings.Contains(out, "total deaths: 1246565") {
		t.Fatalf("unexpected total:\n%s", out)
	}

	out = runCmd(t, "aggregate", data, "--year", "2017", "--state", "", "--exclude", "", "--format", "json")
	var rows []struct {
		Cause  string `json:"cause"`
		Deaths int64  `json:"deaths"`
	}
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(rows) != 3 || rows[0].Cause != "All causes" || rows[1].Deaths != 599108+25000 {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	out = runCmd(t, "aggregate", data, "--timeline", "--format", "csv")
	want := "cause,year,deaths\nCancer,2016,598038\nCancer,2017,599108\nDiseases of heart,2017,647457\n"
	if out != want {
		t.Fatalf("unexpected timeline csv:\n%s", out)
	}

	xlsx := filepath.Join(home, "deaths.xlsx")
	runCmd(t, "aggregate", data, "--format", "xlsx", "-o", xlsx)
	if fi, err := os.Stat(xlsx); err != nil || fi.Size() == 0 {
		t.Fatalf("workbook not written: %v", err)
	}

	if _, err := execCmd(t, "aggregate", data, "--format", "xlsx"); err == nil {
		t.Fatalf("expected error for xlsx without --output")
	}
	if _, err := execCmd(t, "aggregate", data, "--year", "twenty"); err == nil {
		t.Fatalf("expected error for invalid year")
	}
}

func TestCLI_Chart(t *testing.T) {
	home, data := setupHome(t)
	png := filepath.Join(home, "deaths.png")
	runCmd(t, "chart", data, "-o", png)
	b, err := os.ReadFile(png)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Fatalf("chart is not a PNG")
	}

	if _, err := execCmd(t, "chart", data, "--year", "1999", "-o", png); err == nil {
		t.Fatalf("expected error for a year without data")
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home, data := setupHome(t)

	runCmd(t, "config", "set", "data_path", data)
	runCmd(t, "config", "set", "fill_scope", "cause")
	if _, err := os.Stat(filepath.Join(home, ".causeboard", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "data_path: "+data) || !strings.Contains(out, "fill_scope: cause") {
		t.Fatalf("unexpected config show:\n%s", out)
	}

	if _, err := execCmd(t, "config", "set", "fill_scope", "county"); err == nil {
		t.Fatalf("expected validation error for bad fill_scope")
	}
	if _, err := execCmd(t, "config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected error for unknown key")
	}

	// data_path from config is used when no file argument is given.
	if out := runCmd(t, "years"); out != "2016\n2017\n" {
		t.Fatalf("unexpected years output: %q", out)
	}
}

func TestCLI_ConfigSetIgnoresOverrideFlags(t *testing.T) {
	home, _ := setupHome(t)
	oneOff := filepath.Join(home, "one-off.csv")

	runCmd(t, "--data", oneOff, "--debug", "--fill", "zero", "config", "set", "chart_width", "800")
	b, err := os.ReadFile(filepath.Join(home, ".causeboard", "config.yaml"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	saved := string(b)
	if !strings.Contains(saved, "chart_width: 800") {
		t.Fatalf("chart_width not saved:\n%s", saved)
	}
	for _, leaked := range []string{oneOff, "log_level: debug", "fill_strategy: zero"} {
		if strings.Contains(saved, leaked) {
			t.Fatalf("override %q persisted:\n%s", leaked, saved)
		}
	}
}

func TestCLI_Delimiter(t *testing.T) {
	home, _ := setupHome(t)
	semi := filepath.Join(home, "deaths.txt")
	body := "Year;Cause Name;State;Deaths\n2016;Cancer;Ohio;1500\n2017;Cancer;Ohio;1600\n"
	if err := os.WriteFile(semi, []byte(body), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	if out := runCmd(t, "--delimiter", ";", "years", semi); out != "2016\n2017\n" {
		t.Fatalf("unexpected years output: %q", out)
	}
	if _, err := execCmd(t, "years", semi); err == nil {
		t.Fatalf("expected error reading ';' file as comma-separated")
	}
	if _, err := execCmd(t, "--delimiter", "colon", "years", semi); err == nil {
		t.Fatalf("expected error for unsupported delimiter")
	}
}

func TestCLI_MissingDatasetFails(t *testing.T) {
	home, _ := setupHome(t)
	if _, err := execCmd(t, "years", filepath.Join(home, "missing.csv")); err == nil {
		t.Fatalf("expected error for missing dataset")
	}
}
