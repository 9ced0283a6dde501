package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cfgpkg "github.com/KaramelBytes/bookdash/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/text/encoding/charmap"
)

var fixtureRows = []string{
	"isbn,book_title,book_author,year_pub,user_id,location,age,book_rating,publisher",
	"0195153448,Classical Mythology,Mark P. O. Morford,2002,2,\"stockton, california, usa\",18,0,Oxford University Press",
	"0002005018,Clara Callan,Richard Bruce Wright,2001,8,\"timmins, ontario, canada\",81,5,HarperFlamingo Canada",
	"0060973129,Decision in Normandy,Carlo D'Este,1991,8,\"timmins, ontario, canada\",80,1,HarperPerennial",
	"0374157065,Flu,Gina Bari Kolata,1999,11400,\"ottawa, ontario, canada\",N/A,8,Farrar Straus Giroux",
	"0393045218,The Mummies of Urumchi,E. J. W. Barber,1999,41385,\"sudbury, ontario, canada\",35,10,W. W. Norton & Company",
	"2080674722,Les Misérables,Victor Hugo,1950,67544,\"québec, quebec, canada\",30,9,Gallimard",
}

// resetFlags clears values and Changed state that persist between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd runs the root command with args and returns its stdout.
func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is execCmd that fails the test on error.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeFixture(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "bookrec.csv")
	enc, err := charmap.ISO8859_1.NewEncoder().String(strings.Join(fixtureRows, "\n") + "\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(p, []byte(enc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return p
}

func readLatin1(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read %s: %v", p, err)
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return string(s)
}

func TestCLI_CleanThenSummary(t *testing.T) {
	home := isolateHome(t)
	p := writeFixture(t, home)

	out := runCmd(t, "clean", "--dataset", p)
	if !strings.Contains(out, "[1/1] Cleaning bookrec.csv...") {
		t.Fatalf("missing progress line:\n%s", out)
	}
	if !strings.Contains(out, "1 ages and 1 ratings set to missing") {
		t.Fatalf("unexpected clean report:\n%s", out)
	}
	body := readLatin1(t, p)
	if !strings.Contains(body, "\"timmins, ontario, canada\",N/A,5,") {
		t.Fatalf("age 81 not replaced:\n%s", body)
	}
	if !strings.Contains(body, ",18,N/A,Oxford") {
		t.Fatalf("rating 0 not replaced:\n%s", body)
	}
	if !strings.Contains(body, ",80,1,HarperPerennial") || !strings.Contains(body, "Les Misérables") {
		t.Fatalf("untouched values changed:\n%s", body)
	}

	out = runCmd(t, "clean", p)
	if !strings.Contains(out, "already clean") {
		t.Fatalf("second pass must be a no-op:\n%s", out)
	}

	out = runCmd(t, "summary", "--dataset", p, "--lo", "1990", "--hi", "2005")
	for _, want := range []string{"[DATASET SUMMARY]", "Year range: 1990-2005", "Records: 5 of 6", "[TOP RATED AUTHORS]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_CleanDryRunAndOutput(t *testing.T) {
	home := isolateHome(t)
	p := writeFixture(t, home)
	before, _ := os.ReadFile(p)

	out := runCmd(t, "clean", p, "--dry-run")
	if !strings.Contains(out, "would null 1 ages and 1 ratings") {
		t.Fatalf("dry run report:\n%s", out)
	}
	after, _ := os.ReadFile(p)
	if !bytes.Equal(before, after) {
		t.Fatalf("dry run modified the input")
	}

	dst := filepath.Join(home, "clean.csv")
	runCmd(t, "clean", p, "--output", dst, "--max-age", "75")
	body := readLatin1(t, dst)
	if !strings.Contains(body, "canada\",N/A,1,HarperPerennial") {
		t.Fatalf("--max-age 75 must null age 80:\n%s", body)
	}
	after, _ = os.ReadFile(p)
	if !bytes.Equal(before, after) {
		t.Fatalf("--output must leave the input untouched")
	}
}

func TestCLI_CleanGlobAndMissingFile(t *testing.T) {
	home := isolateHome(t)
	for _, d := range []string{"a", "b"} {
		dir := filepath.Join(home, d)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		writeFixture(t, dir)
	}
	out := runCmd(t, "clean", filepath.Join(home, "*", "bookrec.csv"), "--dry-run")
	if !strings.Contains(out, "[1/2]") || !strings.Contains(out, "[2/2]") {
		t.Fatalf("expected two files:\n%s", out)
	}

	if _, err := execCmd(t, "clean", filepath.Join(home, "missing.csv")); err == nil {
		t.Fatalf("expected error for missing input")
	}
	if _, err := execCmd(t, "summary", "--dataset", filepath.Join(home, "missing.csv")); err == nil {
		t.Fatalf("expected error for missing dataset")
	}
}

func TestCLI_SummaryRejectsInvertedRange(t *testing.T) {
	home := isolateHome(t)
	p := writeFixture(t, home)
	if _, err := execCmd(t, "summary", "--dataset", p, "--lo", "2010", "--hi", "2000"); err == nil {
		t.Fatalf("expected error for inverted range")
	}
	out := runCmd(t, "summary", "--dataset", p, "--lo", "1960", "--hi", "1970")
	if !strings.Contains(out, "no records in the selected range") {
		t.Fatalf("empty range must still report:\n%s", out)
	}
	_, err := execCmd(t, "summary", "--dataset", p, "--lo", "1900", "--hi", "1940")
	if err == nil || !strings.Contains(err.Error(), "outside 1950-2020") {
		t.Fatalf("expected out-of-slider error, got %v", err)
	}
}

func TestCLI_SummaryOutputFile(t *testing.T) {
	home := isolateHome(t)
	p := writeFixture(t, home)
	dir := filepath.Join(home, "reports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	dst := filepath.Join(dir, "summary.md")
	if err := os.WriteFile(dst, []byte("stale"), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	out := runCmd(t, "summary", "--dataset", p, "--output", dst)
	if !strings.Contains(out, "✓ Wrote summary to "+dst) {
		t.Fatalf("unexpected output:\n%s", out)
	}
	body, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if !strings.Contains(string(body), "[DATASET SUMMARY]") {
		t.Fatalf("summary not written:\n%s", body)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want existing 0600 kept", info.Mode().Perm())
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}
}

func TestCLI_Export(t *testing.T) {
	home := isolateHome(t)
	p := writeFixture(t, home)
	dir := filepath.Join(home, "out")
	runCmd(t, "export", "--dataset", p, "--out-dir", dir)
	for _, name := range []string{
		"age-distribution.svg", "top-locations.svg", "top-books.svg", "top-authors.svg",
		"rating-distribution.svg", "age-vs-rating.svg", "correlation-heatmap.svg",
		"scatter-3d.json", "bookdash.xlsx", "summary.md",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing export %s: %v", name, err)
		}
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := isolateHome(t)
	runCmd(t, "config", "set", "top_n", "5")
	if _, err := os.Stat(filepath.Join(home, ".bookdash", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "top_n: 5") || !strings.Contains(out, "encoding: latin1") {
		t.Fatalf("unexpected config:\n%s", out)
	}
	if _, err := execCmd(t, "config", "set", "encoding", "ebcdic"); err == nil {
		t.Fatalf("expected error for unknown encoding")
	}
	if _, err := execCmd(t, "config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestCLI_ConfigSetKeepsOverridesOutOfFile(t *testing.T) {
	home := isolateHome(t)
	t.Setenv("BOOKDASH_TOP_N", "7")
	runCmd(t, "config", "set", "max_age", "70", "--dataset", filepath.Join(home, "other.csv"))

	saved, err := cfgpkg.LoadFile("")
	if err != nil {
		t.Fatalf("load saved config: %v", err)
	}
	if saved.MaxAge != 70 {
		t.Fatalf("max_age not saved: %+v", saved)
	}
	if saved.TopN != 10 || saved.DatasetPath != "bookrec.csv" {
		t.Fatalf("overrides persisted: top_n=%d dataset_path=%s", saved.TopN, saved.DatasetPath)
	}
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "top_n: 7") || !strings.Contains(out, "max_age: 70") {
		t.Fatalf("effective config must still apply env:\n%s", out)
	}
}
