package archive

import "testing"

const sampleMetadata = `<hfstspeller dtdversion="1.0" hfstversion="3">
  <info>
    <locale>se</locale>
    <title>Giellatekno/Divvun/UiT fst-based speller for Northern Sami</title>
    <description>This is an fst-based speller for Northern Sami.</description>
    <version vcsrev="GT_REVISION">GT_VERSION</version>
    <date>DATE</date>
    <producer>Giellatekno/Divvun/UiT contributors</producer>
    <contact email="feedback@divvun.no" name="Divvun team"/>
  </info>
  <acceptor type="general" id="acceptor.default.hfst">
    <title>Giellatekno/Divvun/UiT dictionary Northern Sami</title>
    <description>Giellatekno/Divvun/UiT dictionary for Northern Sami compiled for HFST.</description>
  </acceptor>
  <errmodel id="errmodel.default.hfst">
    <title>Levenshtein edit distance transducer</title>
    <description>Correction model for keyboard misstrokes, at most 2 per word.</description>
  </errmodel>
</hfstspeller>`

func TestParseMetadata(t *testing.T) {
	meta, err := ParseMetadata([]byte(sampleMetadata))
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}

	if meta.DTDVersion != "1.0" || meta.HfstVersion != "3" {
		t.Errorf("versions = %q/%q, want 1.0/3", meta.DTDVersion, meta.HfstVersion)
	}
	if meta.Info.Locale != "se" {
		t.Errorf("locale = %q, want se", meta.Info.Locale)
	}
	if meta.Info.Contact.Email != "feedback@divvun.no" {
		t.Errorf("contact email = %q", meta.Info.Contact.Email)
	}
	if len(meta.Acceptors) != 1 || meta.Acceptors[0].ID != "acceptor.default.hfst" {
		t.Fatalf("acceptors = %+v", meta.Acceptors)
	}
	if meta.Acceptors[0].Type != "general" {
		t.Errorf("acceptor type = %q, want general", meta.Acceptors[0].Type)
	}
	if len(meta.ErrModels) != 1 || meta.ErrModels[0].ID != "errmodel.default.hfst" {
		t.Fatalf("errmodels = %+v", meta.ErrModels)
	}
}

func TestParseMetadataRejectsGarbage(t *testing.T) {
	if _, err := ParseMetadata([]byte("not xml at all <")); err == nil {
		t.Error("garbage input should fail to parse")
	}
}
