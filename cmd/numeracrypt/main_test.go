package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	ncerrors "github.com/provide-io/numeracrypt/go/numeracrypt/pkg/errors"
	"github.com/provide-io/numeracrypt/go/numeracrypt/pkg/key"
)

const testKey = "5/ytVE[hFBrI,(KC{QxtVE[hFBrI,(KC{QxtVE[hFBrI,(KC{QxtVE[hFBrI,(KC{QxtVE[hFBrI2+vvG"

// isolate points every setting at a fresh temp directory.
func isolate(t *testing.T) string {
	t.Helper()
	color.NoColor = true

	dir := t.TempDir()
	t.Setenv("KEY_STORAGE_DIRECTORY", filepath.Join(dir, "keys"))
	t.Setenv("KEY_FILE_EXTENSION", "nkey")
	t.Setenv("KEY_FILE_MODE", "")
	t.Setenv("NUMERACRYPT_KEY", "")
	t.Setenv("NUMERACRYPT_LOG_LEVEL", "")
	t.Setenv("NUMERACRYPT_LOG_PATH", "")
	t.Setenv("NUMERACRYPT_JSON_LOG", "")
	return dir
}

func runApp(t *testing.T, a *app, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newAppCmd(a)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	a := newApp()
	a.readKey = func(string, io.Writer) (string, error) {
		t.Fatal("unexpected key prompt")
		return "", nil
	}
	return runApp(t, a, args...)
}

// lineValue returns what follows prefix on the first line that has it.
func lineValue(t *testing.T, output, prefix string) string {
	t.Helper()
	for _, line := range strings.Split(output, "\n") {
		if v, ok := strings.CutPrefix(line, prefix); ok {
			return v
		}
	}
	t.Fatalf("no line starting with %q in:\n%s", prefix, output)
	return ""
}

func TestEncryptDecryptContent(t *testing.T) {
	isolate(t)

	stdout, _, err := run(t, "encrypt", "--content", "Hello", "--key", testKey)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if got := lineValue(t, stdout, "🔒 Encrypted content: "); got != "KJm4mUEmK" {
		t.Errorf("encrypted = %q, want KJm4mUEmK", got)
	}

	stdout, _, err = run(t, "decrypt", "--content", "KJm4mUEmK", "--key", testKey)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if got := lineValue(t, stdout, "🔓 Decrypted content: "); got != "Hello" {
		t.Errorf("decrypted = %q, want Hello", got)
	}
}

func TestEncrypt_GeneratesKey(t *testing.T) {
	isolate(t)

	stdout, _, err := run(t, "encrypt", "--content", "round trip me")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	generated := lineValue(t, stdout, "🔑 Generated key: ")
	if !strings.HasPrefix(generated, "8/") || !key.Validate(generated) {
		t.Fatalf("generated key %q is not a valid 8-round key", generated)
	}
	ciphertext := lineValue(t, stdout, "🔒 Encrypted content: ")

	stdout, _, err = run(t, "decrypt", "--content", ciphertext, "--key", generated)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if got := lineValue(t, stdout, "🔓 Decrypted content: "); got != "round trip me" {
		t.Errorf("decrypted = %q", got)
	}
}

func TestKeyFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("NUMERACRYPT_KEY", testKey)

	stdout, _, err := run(t, "decrypt", "--content", "KJm4mUEmK")
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if got := lineValue(t, stdout, "🔓 Decrypted content: "); got != "Hello" {
		t.Errorf("decrypted = %q, want Hello", got)
	}
}

func TestDecrypt_PromptsForKey(t *testing.T) {
	isolate(t)

	prompted := false
	a := newApp()
	a.readKey = func(prompt string, stderr io.Writer) (string, error) {
		prompted = true
		return testKey, nil
	}

	stdout, _, err := runApp(t, a, "decrypt", "--content", "KJm4mUEmK")
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if !prompted {
		t.Error("key prompt was not used")
	}
	if got := lineValue(t, stdout, "🔓 Decrypted content: "); got != "Hello" {
		t.Errorf("decrypted = %q, want Hello", got)
	}
}

func TestInvalidKey(t *testing.T) {
	isolate(t)

	for _, verb := range []string{"encrypt", "decrypt"} {
		t.Run(verb, func(t *testing.T) {
			_, stderr, err := run(t, verb, "--content", "Hello", "--key", "5/short")
			if !errors.Is(err, errReported) {
				t.Fatalf("error = %v, want errReported", err)
			}
			if !strings.Contains(stderr, "Invalid key format") {
				t.Errorf("stderr = %q", stderr)
			}
		})
	}
}

func TestDecrypt_ExpectFingerprint(t *testing.T) {
	isolate(t)

	_, _, err := run(t, "decrypt", "--content", "KJm4mUEmK", "--key", testKey,
		"--expect-fingerprint", key.Fingerprint(testKey))
	if err != nil {
		t.Fatalf("matching fingerprint rejected: %v", err)
	}

	_, stderr, err := run(t, "decrypt", "--content", "KJm4mUEmK", "--key", testKey,
		"--expect-fingerprint", "blake2b:0000000000000000")
	if !errors.Is(err, errReported) {
		t.Fatalf("error = %v, want errReported", err)
	}
	if !strings.Contains(stderr, "does not match") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestDecrypt_BadCiphertext(t *testing.T) {
	isolate(t)

	_, _, err := run(t, "decrypt", "--content", "fP NKd", "--key", testKey)
	if !errors.Is(err, ncerrors.ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}
}

func TestContentSourceFlags(t *testing.T) {
	isolate(t)

	if _, _, err := run(t, "encrypt", "--key", testKey); err == nil {
		t.Error("expected error with no content source")
	}
	if _, _, err := run(t, "encrypt", "--content", "x", "--file", "y", "--key", testKey); err == nil {
		t.Error("expected error with two content sources")
	}
}

func TestFileRoundTrip_SaveKey(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("Hello"), 0o600); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := run(t, "encrypt", "--file", path, "--key", testKey, "--save-key")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "KJm4mUEmK" {
		t.Errorf("file contents = %q, want KJm4mUEmK", data)
	}

	keyPath := lineValue(t, stdout, "📄 Key saved to ")
	if filepath.Dir(keyPath) != filepath.Join(dir, "keys") || filepath.Ext(keyPath) != ".nkey" {
		t.Errorf("key saved to %s", keyPath)
	}
	saved, err := os.ReadFile(keyPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(saved) != testKey {
		t.Errorf("saved key = %q", saved)
	}

	if _, _, err := run(t, "decrypt", "--file", path, "--key", testKey); err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Hello" {
		t.Errorf("file contents = %q, want Hello", data)
	}
}

func TestDirRoundTrip(t *testing.T) {
	dir := isolate(t)
	target := filepath.Join(dir, "docs")
	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{"a.txt": "alpha", "b.txt": "beta", "empty.txt": ""}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(target, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	stdout, _, err := run(t, "encrypt", "--dir", target, "--key", testKey)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if !strings.Contains(stdout, "(2 files, 1 skipped)") {
		t.Errorf("stdout = %q", stdout)
	}

	if _, _, err := run(t, "decrypt", "--dir", target, "--key", testKey); err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	for name, body := range files {
		data, err := os.ReadFile(filepath.Join(target, name))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != body {
			t.Errorf("%s = %q, want %q", name, data, body)
		}
	}
}

func TestSaveContent(t *testing.T) {
	dir := isolate(t)
	out := filepath.Join(dir, "cipher.txt")

	_, _, err := run(t, "encrypt", "--content", "Hello", "--key", testKey,
		"--save-content", "--content-out", out)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "KJm4mUEmK" {
		t.Errorf("saved content = %q", data)
	}
}

func TestKeygen(t *testing.T) {
	dir := isolate(t)
	keyDir := filepath.Join(dir, "elsewhere")

	stdout, _, err := run(t, "keygen", "--salt", "pepper", "--rounds", "6", "--dir", keyDir)
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}

	generated := lineValue(t, stdout, "🔑 Generated key: ")
	if !strings.HasPrefix(generated, "6/") || !key.Validate(generated) {
		t.Errorf("generated key %q", generated)
	}

	keyPath := lineValue(t, stdout, "📄 Key saved to ")
	if filepath.Dir(keyPath) != keyDir {
		t.Errorf("key saved to %s, want a file in %s", keyPath, keyDir)
	}

	_, _, err = run(t, "keygen", "--rounds", "3")
	if !errors.Is(err, ncerrors.ErrInvalidRounds) {
		t.Errorf("error = %v, want ErrInvalidRounds", err)
	}
}

func TestValidate(t *testing.T) {
	isolate(t)

	stdout, _, err := run(t, "validate", testKey)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(stdout, key.Fingerprint(testKey)) {
		t.Errorf("stdout = %q", stdout)
	}

	if _, _, err := run(t, "validate", "5/short"); !errors.Is(err, errReported) {
		t.Errorf("error = %v, want errReported", err)
	}
	if _, _, err := run(t, "validate", testKey, "--max-length", "100"); !errors.Is(err, errReported) {
		t.Errorf("error = %v, want errReported for a too-short payload", err)
	}
}

func TestVersionFlag(t *testing.T) {
	isolate(t)

	stdout, _, err := run(t, "--version")
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}
	if !strings.HasPrefix(stdout, "numeracrypt "+version+"\n") || !strings.Contains(stdout, "Built: ") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestMissingSource(t *testing.T) {
	dir := isolate(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing file", []string{"encrypt", "--file", filepath.Join(dir, "nope.txt")}, "File does not exist"},
		{"file is dir", []string{"decrypt", "--file", dir, "--key", testKey}, "is a directory"},
		{"missing dir", []string{"encrypt", "--dir", filepath.Join(dir, "nope")}, "Directory does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := run(t, tt.args...)
			if !errors.Is(err, errReported) {
				t.Fatalf("error = %v, want errReported", err)
			}
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("stderr = %q, want %q", stderr, tt.want)
			}
			if strings.Contains(stdout, "Generated key") {
				t.Error("key generated before the source was checked")
			}
		})
	}
}
