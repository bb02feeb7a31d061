package closure

import (
	"archive/zip"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/dhamidi/classdeps/classfile/classfiletest"
)

// writeClass writes dir/name.class whose pool references refs as classes.
func writeClass(t *testing.T, dir, name string, refs ...string) {
	t.Helper()
	b := classfiletest.New().SetThis(name).SetSuper("java/lang/Object")
	for _, ref := range refs {
		b.Class(ref)
	}
	writeFile(t, filepath.Join(dir, filepath.FromSlash(name)+".class"), b.Bytes())
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func assertDeps(t *testing.T, got, want DependencySet) {
	t.Helper()
	if !maps.Equal(got, want) {
		t.Errorf("deps = %v, want %v", got, want)
	}
}

func TestComputeSingleReference(t *testing.T) {
	libs := t.TempDir()
	b := classfiletest.New()
	b.Utf8("B")
	writeFile(t, filepath.Join(libs, "A.class"), b.PoolBytes())
	writeClass(t, libs, "B")

	got := Compute([]string{"A"}, []string{libs})
	assertDeps(t, got, DependencySet{"A": libs, "B": libs})
}

func TestComputeTransitive(t *testing.T) {
	libs := t.TempDir()
	writeClass(t, libs, "p/A", "p/B")
	writeClass(t, libs, "p/B", "q/C", "p/Missing")
	writeClass(t, libs, "q/C")
	writeClass(t, libs, "q/Unreferenced")

	got := Compute([]string{"p/A"}, []string{libs})
	assertDeps(t, got, DependencySet{"p/A": libs, "p/B": libs, "q/C": libs})
	if want := []string{"p/A", "p/B", "q/C"}; !slices.Equal(got.Sorted(), want) {
		t.Errorf("Sorted() = %v, want %v", got.Sorted(), want)
	}
}

func TestComputeCycle(t *testing.T) {
	libs := t.TempDir()
	writeClass(t, libs, "A", "B")
	writeClass(t, libs, "B", "A", "B")

	got := Compute([]string{"A", "B"}, []string{libs})
	assertDeps(t, got, DependencySet{"A": libs, "B": libs})
}

func TestComputeFirstMatchWins(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writeClass(t, first, "A", "Shared")
	writeClass(t, first, "Shared")
	writeClass(t, second, "Shared", "OnlySecond")
	writeClass(t, second, "OnlySecond")

	got := Compute([]string{"A"}, []string{first, second})
	assertDeps(t, got, DependencySet{"A": first, "Shared": first})

	got = Compute([]string{"A"}, []string{second, first})
	assertDeps(t, got, DependencySet{"A": first, "Shared": second, "OnlySecond": second})
}

func TestComputeWideConstants(t *testing.T) {
	libs := t.TempDir()
	b := classfiletest.New()
	b.Long(42)
	b.Utf8("AfterLong")
	b.Double(1.5)
	b.Class("AfterDouble")
	writeFile(t, filepath.Join(libs, "A.class"), b.PoolBytes())
	writeClass(t, libs, "AfterLong")
	writeClass(t, libs, "AfterDouble")

	got := Compute([]string{"A"}, []string{libs})
	assertDeps(t, got, DependencySet{"A": libs, "AfterLong": libs, "AfterDouble": libs})
}

func TestComputeMalformedFiles(t *testing.T) {
	libs := t.TempDir()
	writeClass(t, libs, "A", "BadMagic", "BadTag", "C")
	writeClass(t, libs, "C")
	writeClass(t, libs, "Hidden")

	bad := classfiletest.New()
	bad.Class("Hidden")
	data := bad.PoolBytes()
	data[3] = 0x00
	writeFile(t, filepath.Join(libs, "BadMagic.class"), data)

	tagged := classfiletest.New()
	tagged.Class("Hidden")
	tagged.Raw(99)
	writeFile(t, filepath.Join(libs, "BadTag.class"), tagged.PoolBytes())

	got := Compute([]string{"A"}, []string{libs})
	assertDeps(t, got, DependencySet{
		"A":        libs,
		"BadMagic": libs,
		"BadTag":   libs,
		"C":        libs,
	})
}

func TestComputeUnresolvableRoot(t *testing.T) {
	libs := t.TempDir()
	writeClass(t, libs, "A")

	got := Compute([]string{"Nope", "A"}, []string{libs, filepath.Join(libs, "missing")})
	assertDeps(t, got, DependencySet{"A": libs})
}

func TestComputeDeterministic(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeClass(t, a, "R", "X", "Y")
	writeClass(t, a, "X", "Y", "Z")
	writeClass(t, b, "Y", "X")
	writeClass(t, b, "Z")

	first := Compute([]string{"R"}, []string{a, b})
	for i := 0; i < 5; i++ {
		assertDeps(t, Compute([]string{"R"}, []string{a, b}), first)
	}
}

func TestComputeExclude(t *testing.T) {
	libs := t.TempDir()
	writeClass(t, libs, "app/Main", "java/lang/String", "app/Helper", "app/HelperTest")
	writeClass(t, libs, "java/lang/String")
	writeClass(t, libs, "java/lang/Object")
	writeClass(t, libs, "app/Helper")
	writeClass(t, libs, "app/HelperTest")

	gi, err := CompileExclude([]string{"java/**", "*Test"}, "")
	if err != nil {
		t.Fatalf("CompileExclude: %v", err)
	}
	got := Compute([]string{"app/Main"}, []string{libs}, WithExclude(gi))
	assertDeps(t, got, DependencySet{"app/Main": libs, "app/Helper": libs})

	got = Compute([]string{"app/Main"}, []string{libs})
	if len(got) != 5 {
		t.Errorf("without exclusions got %v", got)
	}
}

func TestCompileExcludeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude")
	writeFile(t, path, []byte("# platform\njavax/\n"))

	gi, err := CompileExclude([]string{"sun/**"}, path)
	if err != nil {
		t.Fatalf("CompileExclude: %v", err)
	}
	for name, want := range map[string]bool{
		"javax/swing/JFrame": true,
		"sun/misc/Unsafe":    true,
		"java/lang/Object":   false,
		"app/javax":          false,
	} {
		if got := gi.MatchesPath(name); got != want {
			t.Errorf("MatchesPath(%q) = %v, want %v", name, got, want)
		}
	}

	if gi, err := CompileExclude(nil, ""); gi != nil || err != nil {
		t.Errorf("CompileExclude(nil, \"\") = %v, %v", gi, err)
	}
	if _, err := CompileExclude(nil, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("CompileExclude with missing file succeeded")
	}
}

func TestComputeArchive(t *testing.T) {
	dir := t.TempDir()
	jar := filepath.Join(dir, "lib.jar")
	f, err := os.Create(jar)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, refs := range map[string][]string{
		"lib/A": {"lib/B"},
		"lib/B": {"app/Override"},
	} {
		b := classfiletest.New().SetThis(name)
		for _, ref := range refs {
			b.Class(ref)
		}
		w, err := zw.Create(name + ".class")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(b.Bytes()); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := zw.Create("META-INF/"); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	classes := filepath.Join(dir, "classes")
	writeClass(t, classes, "app/Main", "lib/A")
	writeClass(t, classes, "app/Override")

	got := Compute([]string{"app/Main"}, []string{classes, jar})
	assertDeps(t, got, DependencySet{
		"app/Main":     classes,
		"lib/A":        jar,
		"lib/B":        jar,
		"app/Override": classes,
	})
}

func TestExtendReusesSet(t *testing.T) {
	libs := t.TempDir()
	writeClass(t, libs, "A", "B")
	writeClass(t, libs, "B", "C")
	writeClass(t, libs, "C")

	f := NewFinder([]Locator{NewDirLocator(libs)})
	deps := DependencySet{"B": "elsewhere"}
	f.Extend(deps, "A")
	assertDeps(t, deps, DependencySet{"A": libs, "B": "elsewhere"})

	f.Extend(deps, "A", "C")
	assertDeps(t, deps, DependencySet{"A": libs, "B": "elsewhere", "C": libs})
}

func TestDirLocatorReservedNames(t *testing.T) {
	libs := t.TempDir()
	writeClass(t, libs, "con")
	writeClass(t, libs, "p/Aux")
	writeClass(t, libs, "p/Console")

	l := &DirLocator{Dir: libs, DenyDevices: true}
	for name, want := range map[string]bool{
		"con":       false,
		"p/Aux":     false,
		"p/Console": true,
		"p/Missing": false,
	} {
		if got := l.Has(name); got != want {
			t.Errorf("Has(%q) = %v, want %v", name, got, want)
		}
	}

	l.DenyDevices = false
	if !l.Has("con") {
		t.Error("Has(\"con\") = false with DenyDevices off")
	}
}
