package cli

import (
	"bytes"
	"strings"
	"testing"
)

func interact(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand(Options{Name: "listquery-test", EnvPrefix: "LISTQUERY_TEST"})
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"interact", "-d", "products", "-f", productsFile}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func lastSummary(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	return lines[len(lines)-1]
}

func TestInteract_AppliesCommandsInOrder(t *testing.T) {
	input := "filter active\nsort price_asc\n# comment\n\ntype mang\nflush\n"
	out, errOut, err := interact(t, input)
	if err != nil {
		t.Fatalf("interact failed: %v (stderr=%s)", err, errOut)
	}
	want := `products: 1 of 4 (filter=ACTIVE search="mang" sort=PRICE_ASC)`
	if got := lastSummary(out); got != want {
		t.Fatalf("last summary = %q, want %q", got, want)
	}
	if !strings.Contains(out, `products: 4 of 4 (filter=ALL search="" sort=NEWEST)`) {
		t.Fatalf("expected mount render, got:\n%s", out)
	}
}

func TestInteract_PendingTermAppliedAtEOF(t *testing.T) {
	out, _, err := interact(t, "type onion\n", "--log-level", "error")
	if err != nil {
		t.Fatalf("interact failed: %v", err)
	}
	if got := lastSummary(out); !strings.Contains(got, `1 of 4`) || !strings.Contains(got, `search="onion"`) {
		t.Fatalf("last summary = %q", got)
	}
}

func TestInteract_ResetAndQuit(t *testing.T) {
	out, _, err := interact(t, "filter EXPIRED\nreset\nquit\nfilter ACTIVE\n")
	if err != nil {
		t.Fatalf("interact failed: %v", err)
	}
	if got := lastSummary(out); !strings.Contains(got, "4 of 4") || !strings.Contains(got, "filter=ALL") {
		t.Fatalf("expected reset selection after quit, got %q", got)
	}
}

func TestInteract_ErrorsAreReportedAndLoopContinues(t *testing.T) {
	out, errOut, err := interact(t, "dance\nsort BOGUS\nfilter PENDING\n", "--strict")
	if err != nil {
		t.Fatalf("interact failed: %v", err)
	}
	if !strings.Contains(errOut, `unknown command "dance"`) {
		t.Errorf("expected unknown command error, got %q", errOut)
	}
	if !strings.Contains(errOut, "unknown sort key") {
		t.Errorf("expected strict sort error, got %q", errOut)
	}
	if got := lastSummary(out); !strings.Contains(got, "1 of 4") || !strings.Contains(got, "sort=NEWEST") {
		t.Fatalf("last summary = %q", got)
	}
}

func TestInteract_MetricsAndMissingFile(t *testing.T) {
	_, errOut, err := interact(t, "refresh\n", "--metrics")
	if err != nil {
		t.Fatalf("interact failed: %v", err)
	}
	if !strings.Contains(errOut, `listquery_refreshes_total{domain="products",outcome="success"} 2`) {
		t.Fatalf("expected two refreshes in metrics, got:\n%s", errOut)
	}

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand(Options{Name: "listquery-test", EnvPrefix: "LISTQUERY_TEST"})
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"interact", "-d", "orders", "-f", "testdata/missing.yaml"})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "refresh orders") {
		t.Fatalf("expected refresh error, got %v", err)
	}
}
