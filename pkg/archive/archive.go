// Package archive opens speller bundles: zip files carrying an index.xml
// plus a lexicon and an error model in optimized-lookup form. The zip is
// memory-mapped once; stored members are decoded in place without copying,
// compressed members are inflated into memory.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/edsrzf/mmap-go"

	"github.com/albbas/divvunspell/pkg/speller"
	"github.com/albbas/divvunspell/pkg/transducer"
)

const (
	metadataName    = "index.xml"
	acceptorPrefix  = "acceptor"
	errModelPrefix  = "errmodel"
	acceptorDefault = "acceptor.default.hfst"
	errModelDefault = "errmodel.default.hfst"
)

// SpellerArchive is an opened bundle. The transducers reference the mapped
// file, so the archive must stay open while its speller is in use.
type SpellerArchive struct {
	meta    *Metadata
	speller *speller.Speller
	lexicon *transducer.HfstTransducer
	mutator *transducer.HfstTransducer
	mapped  mmap.MMap
}

// Open memory-maps the bundle at path and decodes its members.
func Open(path string) (*SpellerArchive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening speller archive: %w", err)
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mapping speller archive %s: %w", path, err)
	}

	a, err := fromMapped(m)
	if err != nil {
		if uerr := m.Unmap(); uerr != nil {
			log.Warnf("unmapping rejected archive %s: %v", path, uerr)
		}
		return nil, err
	}
	a.mapped = m
	return a, nil
}

func fromMapped(m mmap.MMap) (*SpellerArchive, error) {
	r, err := zip.NewReader(bytes.NewReader(m), int64(len(m)))
	if err != nil {
		return nil, fmt.Errorf("reading speller archive: %w", err)
	}

	a := &SpellerArchive{}

	metaFile := findMember(r, metadataName)
	if metaFile != nil {
		data, err := memberBytes(m, metaFile)
		if err != nil {
			return nil, err
		}
		a.meta, err = ParseMetadata(data)
		if err != nil {
			return nil, err
		}
	}

	acceptorName, errModelName := a.memberNames()
	lexFile := findMember(r, acceptorName)
	if lexFile == nil {
		lexFile = findPrefixed(r, acceptorPrefix)
	}
	if lexFile == nil {
		return nil, fmt.Errorf("speller archive has no acceptor member")
	}
	mutFile := findMember(r, errModelName)
	if mutFile == nil {
		mutFile = findPrefixed(r, errModelPrefix)
	}
	if mutFile == nil {
		return nil, fmt.Errorf("speller archive has no errmodel member")
	}

	lexBytes, err := memberBytes(m, lexFile)
	if err != nil {
		return nil, err
	}
	mutBytes, err := memberBytes(m, mutFile)
	if err != nil {
		return nil, err
	}

	a.lexicon, err = transducer.FromBytes(lexBytes)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", lexFile.Name, err)
	}
	a.mutator, err = transducer.FromBytes(mutBytes)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", mutFile.Name, err)
	}

	log.Debugf("speller archive opened: acceptor=%s errmodel=%s locale=%s",
		lexFile.Name, mutFile.Name, a.Locale())

	a.speller = speller.New(a.mutator, a.lexicon)
	return a, nil
}

// memberNames resolves the transducer member names, preferring the ids the
// metadata declares over the conventional defaults.
func (a *SpellerArchive) memberNames() (acceptor, errModel string) {
	acceptor, errModel = acceptorDefault, errModelDefault
	if a.meta == nil {
		return acceptor, errModel
	}
	if len(a.meta.Acceptors) > 0 && a.meta.Acceptors[0].ID != "" {
		acceptor = a.meta.Acceptors[0].ID
	}
	if len(a.meta.ErrModels) > 0 && a.meta.ErrModels[0].ID != "" {
		errModel = a.meta.ErrModels[0].ID
	}
	return acceptor, errModel
}

// memberBytes returns the decompressed contents of one zip member. Stored
// members are sliced straight out of the mapping.
func memberBytes(m mmap.MMap, f *zip.File) ([]byte, error) {
	if f.Method == zip.Store {
		offset, err := f.DataOffset()
		if err != nil {
			return nil, fmt.Errorf("locating archive member %s: %w", f.Name, err)
		}
		end := offset + int64(f.UncompressedSize64)
		if end > int64(len(m)) {
			return nil, fmt.Errorf("archive member %s extends past end of file", f.Name)
		}
		return m[offset:end], nil
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening archive member %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("inflating archive member %s: %w", f.Name, err)
	}
	return data, nil
}

func findMember(r *zip.Reader, name string) *zip.File {
	for _, f := range r.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func findPrefixed(r *zip.Reader, prefix string) *zip.File {
	for _, f := range r.File {
		if strings.HasPrefix(f.Name, prefix) {
			return f
		}
	}
	return nil
}

// Speller returns the speller over the bundle's transducers.
func (a *SpellerArchive) Speller() *speller.Speller { return a.speller }

// Metadata returns the parsed index.xml, or nil when the bundle has none.
func (a *SpellerArchive) Metadata() *Metadata { return a.meta }

// Locale returns the bundle's declared locale, or the empty string.
func (a *SpellerArchive) Locale() string {
	if a.meta == nil {
		return ""
	}
	return a.meta.Info.Locale
}

// Close releases the transducers and the file mapping. No speller call may
// be in flight.
func (a *SpellerArchive) Close() error {
	if a.lexicon != nil {
		if err := a.lexicon.Close(); err != nil {
			return err
		}
	}
	if a.mutator != nil {
		if err := a.mutator.Close(); err != nil {
			return err
		}
	}
	if a.mapped != nil {
		err := a.mapped.Unmap()
		a.mapped = nil
		return err
	}
	return nil
}
