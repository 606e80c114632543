package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/albbas/divvunspell/internal/fstbuild"
)

// buildLexicon accepts "cat" only.
func buildLexicon() []byte {
	b := fstbuild.New("c", "a", "t")
	b.Arc(0, 1, "c", "c", 0)
	b.Arc(1, 2, "a", "a", 0)
	b.Arc(2, 3, "t", "t", 0)
	b.Final(3, 0)
	return b.Build()
}

// buildErrModel passes symbols through at 0 and prices o->a at 1.
func buildErrModel() []byte {
	symbols := []string{"c", "a", "t", "o"}
	b := fstbuild.New(symbols...)
	for _, s := range symbols {
		b.Arc(0, 0, s, s, 0)
	}
	b.Arc(0, 0, "o", "a", 1.0)
	b.Final(0, 0)
	return b.Build()
}

// writeBundle assembles a speller archive on disk. The acceptor is stored
// uncompressed, the errmodel deflated, covering both member paths.
func writeBundle(t *testing.T, withMeta bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "se.zhfst")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating bundle: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	if withMeta {
		mw, err := w.Create("index.xml")
		if err != nil {
			t.Fatalf("adding index.xml: %v", err)
		}
		if _, err := mw.Write([]byte(sampleMetadata)); err != nil {
			t.Fatalf("writing index.xml: %v", err)
		}
	}

	aw, err := w.CreateHeader(&zip.FileHeader{Name: "acceptor.default.hfst", Method: zip.Store})
	if err != nil {
		t.Fatalf("adding acceptor: %v", err)
	}
	if _, err := aw.Write(buildLexicon()); err != nil {
		t.Fatalf("writing acceptor: %v", err)
	}

	ew, err := w.CreateHeader(&zip.FileHeader{Name: "errmodel.default.hfst", Method: zip.Deflate})
	if err != nil {
		t.Fatalf("adding errmodel: %v", err)
	}
	if _, err := ew.Write(buildErrModel()); err != nil {
		t.Fatalf("writing errmodel: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("closing bundle: %v", err)
	}
	return path
}

func TestOpenBundle(t *testing.T) {
	a, err := Open(writeBundle(t, true))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	if a.Locale() != "se" {
		t.Errorf("Locale = %q, want se", a.Locale())
	}
	sp := a.Speller()
	if !sp.IsCorrect("cat") {
		t.Error("bundle lexicon should accept \"cat\"")
	}
	if sp.IsCorrect("cot") {
		t.Error("bundle lexicon should reject \"cot\"")
	}
	suggestions := sp.Suggest("cot")
	if len(suggestions) == 0 || suggestions[0].Value != "cat" {
		t.Errorf("Suggest(\"cot\") = %v, want cat first", suggestions)
	}
}

func TestOpenBundleWithoutMetadata(t *testing.T) {
	a, err := Open(writeBundle(t, false))
	if err != nil {
		t.Fatalf("Open without metadata: %v", err)
	}
	defer a.Close()

	if a.Metadata() != nil {
		t.Error("Metadata should be nil when the bundle has no index.xml")
	}
	if !a.Speller().IsCorrect("cat") {
		t.Error("members must resolve by conventional names without metadata")
	}
}

func TestOpenRejectsNonArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.zhfst")
	if err := os.WriteFile(path, []byte("this is not a zip"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("Open accepted a non-zip file")
	}
}

func TestOpenRejectsMissingMember(t *testing.T) {
	path := filepath.Join(t.TempDir(), "half.zhfst")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	aw, _ := w.Create("acceptor.default.hfst")
	aw.Write(buildLexicon())
	w.Close()
	f.Close()

	if _, err := Open(path); err == nil {
		t.Error("Open accepted a bundle without an errmodel")
	}
}
