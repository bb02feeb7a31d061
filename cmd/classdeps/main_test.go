package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhamidi/classdeps/classfile"
	"github.com/dhamidi/classdeps/classfile/classfiletest"
	"github.com/dhamidi/classdeps/signature"
	"github.com/dhamidi/classdeps/store"
)

func writeClass(t *testing.T, dir, name string, refs ...string) {
	t.Helper()
	b := classfiletest.New().SetThis(name)
	for _, ref := range refs {
		b.Class(ref)
	}
	path := filepath.Join(dir, filepath.FromSlash(name)+".class")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeRoots(t *testing.T, roots ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roots.txt")
	if err := os.WriteFile(path, []byte(strings.Join(roots, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunClosure(t *testing.T) {
	libs := t.TempDir()
	writeClass(t, libs, "app/Main", "app/Util", "java/lang/Object")
	writeClass(t, libs, "app/Util")
	writeClass(t, libs, "java/lang/Object")

	var out, errOut bytes.Buffer
	err := runClosure(&out, &errOut, writeRoots(t, "app/Main.class"), libs, closureOptions{})
	if err != nil {
		t.Fatalf("runClosure: %v", err)
	}
	want := "app/Main.class\napp/Util.class\njava/lang/Object.class\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	out.Reset()
	err = runClosure(&out, &errOut, writeRoots(t, "app/Main"), libs, closureOptions{excludes: []string{"java/**"}})
	if err != nil {
		t.Fatalf("runClosure with exclude: %v", err)
	}
	if got := out.String(); got != "app/Main.class\napp/Util.class\n" {
		t.Errorf("excluded output = %q", got)
	}
}

func TestRunClosureErrors(t *testing.T) {
	libs := t.TempDir()
	var out, errOut bytes.Buffer

	err := runClosure(&out, &errOut, filepath.Join(libs, "missing.txt"), libs, closureOptions{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing roots file err = %v", err)
	}
	if err := runClosure(&out, &errOut, writeRoots(t, "# nothing"), libs, closureOptions{}); err == nil {
		t.Error("empty roots file succeeded")
	}
	if err := runClosure(&out, &errOut, writeRoots(t, "A"), "", closureOptions{}); err == nil {
		t.Error("empty classpath succeeded")
	}
}

func TestRecordListAndDiff(t *testing.T) {
	libs := t.TempDir()
	writeClass(t, libs, "A", "B")
	writeClass(t, libs, "B")
	db := filepath.Join(t.TempDir(), "runs.db")
	roots := writeRoots(t, "A")

	var out, errOut bytes.Buffer
	if err := runClosure(&out, &errOut, roots, libs, closureOptions{record: db}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	writeClass(t, libs, "A", "B", "C")
	writeClass(t, libs, "C")
	if err := runClosure(&out, &errOut, roots, libs, closureOptions{record: db}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if n := strings.Count(errOut.String(), "recorded run "); n != 2 {
		t.Errorf("stderr = %q", errOut.String())
	}

	st, err := store.Open(db)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	runs, err := st.Runs()
	if err != nil || len(runs) != 2 {
		t.Fatalf("Runs = %v, %v", runs, err)
	}

	var listing bytes.Buffer
	if err := listRuns(&listing, st); err != nil {
		t.Fatalf("listRuns: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(listing.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], runs[0].ID[:8]) || !strings.Contains(lines[0], "3 classes") {
		t.Errorf("listing = %q", listing.String())
	}

	var diff bytes.Buffer
	if err := diffRuns(&diff, st, runs[1].ID[:8], runs[0].ID); err != nil {
		t.Fatalf("diffRuns: %v", err)
	}
	if !strings.Contains(diff.String(), "+C.class\t"+libs+"\n") {
		t.Errorf("diff = %q", diff.String())
	}
	if strings.Contains(diff.String(), "-A.class") {
		t.Errorf("diff removes A: %q", diff.String())
	}

	diff.Reset()
	if err := diffRuns(&diff, st, runs[0].ID, runs[0].ID); err != nil || diff.Len() != 0 {
		t.Errorf("self diff = %q, %v", diff.String(), err)
	}
	if err := diffRuns(&diff, st, "nope", runs[0].ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown run err = %v", err)
	}
}

func TestRunSig(t *testing.T) {
	tests := []struct {
		name   string
		sig    string
		asType bool
		events bool
		want   string
	}{
		{"method", "<T:Ljava/lang/Object;>(TT;)V", false, false, "<T extends java.lang.Object> (T) void\n"},
		{"type", "Ljava/util/List<+Ljava/lang/Number;>;", true, false, "java.util.List<? extends java.lang.Number>\n"},
		{"events", "[TT;", true, true, "0\tArrayType\n1\tTypeVariable T\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := runSig(&out, tt.sig, tt.asType, tt.events); err != nil {
				t.Fatalf("runSig: %v", err)
			}
			if got := out.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}

	var out bytes.Buffer
	if err := runSig(&out, "Ljava/util/List<", true, false); !errors.Is(err, signature.ErrMalformed) {
		t.Errorf("malformed err = %v", err)
	}
}

func TestPrintSignatures(t *testing.T) {
	data := classfiletest.New().
		SetThis("p/Box").
		ClassSignature("<T:Ljava/lang/Object;>Ljava/lang/Object;").
		Field(0x0002, "items", "Ljava/util/List;", "Ljava/util/List<TT;>;").
		Field(0x0002, "broken", "Ljava/util/List;", "Ljava/util/List<").
		Method(0x0001, "get", "(I)Ljava/lang/Object;", "(I)TT;").
		Bytes()

	cf, err := classfile.Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var out bytes.Buffer
	printSignatures(&out, cf)

	want := strings.Join([]string{
		"class p.Box: <T extends java.lang.Object> extends java.lang.Object",
		"field items: java.util.List<T>  [erased java.util.List]",
		`field broken: <malformed "Ljava/util/List<">  [erased java.util.List]`,
		"method get: (int) T  [erased (int) java.lang.Object]",
		"",
	}, "\n")
	if got := out.String(); got != want {
		t.Errorf("output:\n%s\nwant:\n%s", got, want)
	}
}

func TestRootCommandSig(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"sig", "--type", "[I"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := out.String(); got != "int[]\n" {
		t.Errorf("output = %q", got)
	}
}
