//go:build stave

package main

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

const binary = "bin/mdstream"

// Default target runs build.
var Default = Build

// Aliases for common targets.
var Aliases = map[string]any{
	"b":   Build,
	"t":   Test.Default,
	"l":   Lint.Default,
	"c":   Check,
	"fmt": Lint.Fmt,
	"bs":  Bench.Stream,
	"br":  Bench.Replay,
}

// Namespace types group related targets.
type (
	Test  st.Namespace
	Lint  st.Namespace
	CI    st.Namespace
	Bench st.Namespace
)

// Build compiles bin/mdstream with version info when sources changed.
func Build() error {
	rebuild, err := target.Dir(binary, "cmd/", "pkg/", "internal/", "go.mod", "go.sum")
	if err != nil {
		return err
	}
	if !rebuild {
		fmt.Println(binary, "is up to date")
		return nil
	}
	fmt.Println("Building mdstream...")
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", binary, "./cmd/mdstream")
}

// Install installs mdstream to $GOBIN or $GOPATH/bin.
func Install() error {
	return sh.RunV("go", "install", "-ldflags", ldflags(), "./cmd/mdstream")
}

// Check formats, lints and tests.
func Check() {
	st.SerialDeps(Lint.Fmt, Lint.Default, Test.Default)
}

// Clean removes build and coverage artifacts.
func Clean() error {
	for _, path := range []string{"bin", "coverage.out", "coverage.html"} {
		if err := sh.Rm(path); err != nil {
			return err
		}
	}
	return nil
}

// Default runs all tests with race detection and coverage.
func (Test) Default() error {
	return gotestsum("pkgname-and-test-fails", raceFlags()...)
}

// Verbose runs all tests with standard-verbose output.
func (Test) Verbose() error {
	return gotestsum("standard-verbose", raceFlags()...)
}

// Fuzz fuzzes the grammar engine for $FUZZ_TIME (default 30s) per target.
func (Test) Fuzz() error {
	fuzzTime := cmp.Or(os.Getenv("FUZZ_TIME"), "30s")
	for _, fuzz := range []string{"FuzzParse", "FuzzParseDeterministic"} {
		fmt.Printf("Fuzzing %s for %s...\n", fuzz, fuzzTime)
		err := sh.RunV("go", "test", "-run=^$", "-fuzz=^"+fuzz+"$", "-fuzztime", fuzzTime,
			"./pkg/parser/goldmark/")
		if err != nil {
			return err
		}
	}
	return nil
}

// Default runs golangci-lint with auto-fix.
func (Lint) Default() error {
	return sh.RunV("golangci-lint", "run", "--fix", "./...")
}

// Fmt formats all Go code.
func (Lint) Fmt() error {
	return sh.RunV("gofmt", "-w", ".")
}

// Vet runs go vet.
func (Lint) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Gate runs the checks CI requires, without modifying the tree.
func (CI) Gate() error {
	st.SerialDeps(CI.Fmt, Lint.Vet, CI.Lint, Build, Test.Default, CI.Tidy, CI.Cross)
	fmt.Println("✓ CI gate passed")
	return nil
}

// Fmt fails when any file is not gofmt-clean.
func (CI) Fmt() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return fmt.Errorf("gofmt: %w", err)
	}
	if out != "" {
		return fmt.Errorf("unformatted files:\n%s", out)
	}
	return nil
}

// Lint runs golangci-lint without auto-fix.
func (CI) Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Tidy fails when go mod tidy changes go.mod or go.sum.
func (CI) Tidy() error {
	files := []string{"go.mod", "go.sum"}
	before, err := readAll(files)
	if err != nil {
		return err
	}
	if err := sh.RunV("go", "mod", "tidy"); err != nil {
		return err
	}
	after, err := readAll(files)
	if err != nil {
		return err
	}
	if !bytes.Equal(before, after) {
		return errors.New("go mod tidy changed go.mod or go.sum")
	}
	return nil
}

// Cross builds the binary for every release platform.
func (CI) Cross() error {
	for _, platform := range []string{
		"linux/amd64", "linux/arm64", "darwin/arm64", "windows/amd64", "freebsd/amd64",
	} {
		goos, goarch, _ := strings.Cut(platform, "/")
		fmt.Printf("  %s\n", platform)
		env := map[string]string{"GOOS": goos, "GOARCH": goarch, "CGO_ENABLED": "0"}
		if err := sh.RunWith(env, "go", "build", "-o", os.DevNull, "./cmd/mdstream"); err != nil {
			return fmt.Errorf("build %s: %w", platform, err)
		}
	}
	return nil
}

// Default runs every benchmark in the module.
func (Bench) Default() error {
	return gotestsum("pkgname-and-test-fails", "-run=^$", "-bench=.", "-benchmem")
}

// Stream benchmarks the streaming path: patcher, incremental parser and
// lexer. $BENCH_COUNT repeats each benchmark for benchstat.
func (Bench) Stream() error {
	return sh.RunV("go", "test", "-run=^$", "-bench=.", "-benchmem",
		"-count", cmp.Or(os.Getenv("BENCH_COUNT"), "1"),
		"./pkg/stream/", "./pkg/incremental/", "./pkg/lexer/",
	)
}

// Replay builds the binary and streams $REPLAY_FILE (default README.md)
// through the patcher one character at a time.
func (Bench) Replay() error {
	st.Deps(Build)
	doc := cmp.Or(os.Getenv("REPLAY_FILE"), "README.md")
	start := time.Now()
	if err := sh.RunV(binary, "replay", "--chunk", "1", "--format", "json", doc); err != nil {
		return err
	}
	fmt.Printf("Replayed %s in %s\n", doc, time.Since(start).Round(time.Millisecond))
	return nil
}

// gotestsum runs the whole module under gotestsum with the given format.
func gotestsum(format string, testFlags ...string) error {
	args := append([]string{"tool", "gotestsum", "-f", format, "--"}, testFlags...)
	return sh.RunV("go", append(args, "./...")...)
}

func raceFlags() []string {
	procs := cmp.Or(os.Getenv("STAVE_NUM_PROCESSORS"), "4")
	return []string{"-race", "-p", procs, "-parallel", procs, "-coverprofile=coverage.out", "-covermode=atomic"}
}

func readAll(paths []string) ([]byte, error) {
	var all []byte
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		all = append(all, content...)
	}
	return all, nil
}

func gitOutput(args ...string) string {
	out, err := sh.Output("git", args...)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// ldflags injects version info into main.
func ldflags() string {
	version := cmp.Or(gitOutput("describe", "--tags", "--always", "--dirty"), "dev")
	commit := cmp.Or(gitOutput("rev-parse", "--short", "HEAD"), "none")
	date := time.Now().UTC().Format(time.RFC3339)
	return fmt.Sprintf("-X main.version=%s -X main.commit=%s -X main.date=%s", version, commit, date)
}
