package cli

import (
	"bytes"
	"encoding/json"
	"github.com/alvinbaena/pwd-advisor/internal/store"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHashList(t *testing.T) {
	in := strings.NewReader("password\r\n\n   \nletmein\nXk9#mP2$vL7!\n")

	var out bytes.Buffer
	n, err := hashList(in, &out)
	if err != nil {
		t.Fatalf("Should not fail: %s", err)
	}
	if n != 3 {
		t.Errorf("Should hash 3 passwords, hashed %d", n)
	}

	want := strings.Join([]string{
		"5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8",
		store.HashPassword("letmein"),
		store.HashPassword("Xk9#mP2$vL7!"),
	}, "\n") + "\n"
	if out.String() != want {
		t.Errorf("hashList: %q, want: %q", out.String(), want)
	}
}

func TestCreateOutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	f, err := createOutFile(path, false)
	if err != nil {
		t.Fatalf("Should create a new file: %s", err)
	}
	f.Close()

	if _, err = createOutFile(path, false); err == nil {
		t.Errorf("Should not replace an existing file without overwrite")
	}

	f, err = createOutFile(path, true)
	if err != nil {
		t.Fatalf("Should replace the file with overwrite: %s", err)
	}
	f.Close()
}

func TestEvaluateCommand_Offline(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"evaluate", "--offline", "--format", "json", "P@ssw0rd123!"})
	t.Cleanup(func() {
		rootCmd.SetOut(os.Stdout)
		rootCmd.SetArgs(nil)
		offline, format = false, "text"
	})

	if err := Execute(); err != nil {
		t.Fatalf("Should not fail: %s", err)
	}

	var report map[string]interface{}
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("Should print a JSON report: %s, output: %s", err, out.String())
	}
	if report["score"] != float64(90) {
		t.Errorf("Score: %v, want: 90", report["score"])
	}
	if report["unknown"] != true || report["leaked_count"] != nil {
		t.Errorf("Offline breach status should be unknown: %v", report)
	}
}
