package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("LOGS_FOLDER", filepath.Join(dir, "logs"))

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

func writeCounts(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "counts.csv")
	content := "date,lineage,count\n2021-01-04,A,3\n2021-01-04,B,7\n2021-01-05,A,5\n2021-01-05,B,5\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write counts: %v", err)
	}
	return path
}

func TestProportionsCmd(t *testing.T) {
	counts := writeCounts(t)
	out, err := run(t, "proportions", "-i", counts, "--smoothing", "0", "--format", "csv")
	if err != nil {
		t.Fatalf("proportions failed: %v", err)
	}

	for _, want := range []string{
		"key,lineage,count,total,proportion,confidenceLow,confidenceHigh",
		"2021-01-04,A,3,10,0.3,",
		"2021-01-05,A,5,10,0.5,",
		"2021-01-04,B,7,10,0.7,",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestProportionsCmd_OutFile(t *testing.T) {
	counts := writeCounts(t)
	target := filepath.Join(t.TempDir(), "out.jsonl")

	stdout, err := run(t, "proportions", "-i", counts, "--smoothing", "1", "--format", "json", "--lineage", "B", "--out", target)
	if err != nil {
		t.Fatalf("proportions failed: %v", err)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want nothing when --out is set", stdout)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("wrote %d lines, want 2:\n%s", len(lines), data)
	}
	if !strings.Contains(lines[0], `"key":"2021-01-04","lineage":"B"`) {
		t.Errorf("first line = %s", lines[0])
	}
}

func TestProportionsCmd_Errors(t *testing.T) {
	if _, err := run(t, "proportions"); err == nil {
		t.Errorf("proportions without --input should fail")
	}
	if _, err := run(t, "proportions", "-i", filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Errorf("proportions with a missing file should fail")
	}
	if _, err := run(t, "proportions", "-i", writeCounts(t), "--format", "xml"); err == nil {
		t.Errorf("proportions with an unknown format should fail")
	}
}

func TestDayCmd(t *testing.T) {
	tests := []struct {
		arg  string
		want []string
	}{
		{"2021-01-03", []string{"2021-01-03 (Sunday)", "iso week:  2020-53", "first day: 2020-12-28"}},
		{"2021-01-04T23:59:00Z", []string{"2021-01-04 (Monday)", "iso week:  2021-01", "first day: 2021-01-04"}},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			out, err := run(t, "day", tt.arg)
			if err != nil {
				t.Fatalf("day %s failed: %v", tt.arg, err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}

	if _, err := run(t, "day", "2021-02-30"); err == nil {
		t.Errorf("day 2021-02-30 should fail")
	}
}

func TestWeekCmd(t *testing.T) {
	out, err := run(t, "week", "2021-1")
	if err != nil {
		t.Fatalf("week failed: %v", err)
	}
	for _, want := range []string{
		"iso week:  2021-01 (year 2021, week 1)",
		"first day: 2021-01-04",
		"days:      2021-01-04 2021-01-05 2021-01-06 2021-01-07 2021-01-08 2021-01-09 2021-01-10",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if _, err := run(t, "week", "2021-53"); err == nil {
		t.Errorf("week 2021-53 should fail")
	}
}
