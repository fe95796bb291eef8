package igsn

import (
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

type Institution struct {
	Code string            `yaml:"code" json:"code"`
	Name string            `yaml:"name" json:"name"`
	Labs map[string]string `yaml:"labs" json:"labs"`
}

type Material struct {
	Name          string            `yaml:"name" json:"name"`
	Subcategories map[string]string `yaml:"subcategories" json:"subcategories,omitempty"`
}

// Vocabulary is the two-level controlled vocabulary prefixes are validated
// against. Institutions own lab codes, materials own subcategory codes.
type Vocabulary struct {
	Institutions map[string]Institution `yaml:"institutions" json:"institutions"`
	Materials    map[string]Material    `yaml:"materials" json:"materials"`
}

// defaultVocabularyYAML seeds the settings store on first use. Lab code X
// and subcategory X are the "not applicable" markers.
const defaultVocabularyYAML = `
institutions:
  JH:
    code: JH
    name: Johns Hopkins University
    labs:
      A: Hopkins Extreme Materials Institute
      B: Some other lab
      X: No specific lab
  TM:
    code: TM
    name: Texas A&M University
    labs:
      A: MESAM
      B: Some other lab
      X: No specific lab
  SB:
    code: SB
    name: University of California, Santa Barbara
    labs:
      X: No specific lab
materials:
  BO:
    name: biological
  BM:
    name: biomaterials
  CR:
    name: ceramics
    subcategories:
      A: carbides
      B: cements
      C: nitrides
      D: oxides
      E: perovskites
      F: silicates
  MA:
    name: metals and alloys
    subcategories:
      A: Al-containing
      B: commercially pure metals
      C: Cu-containing
      D: Fe-containing
      E: intermetallics
      F: Mg-containing
      G: Ni-containing
      H: rare earth
      I: refractories
      J: steels
      K: superalloys
      L: Ti-containing
  ME:
    name: metamaterials
  MO:
    name: molecular fluids
  OC:
    name: organic compounds
    subcategories:
      A: alcohols
      B: aldehydes
      C: alkanes
      D: alkenes
      E: alkynes
      F: amines
      G: carboxylic acids
      H: cyclic compounds
      I: cycloalkanes
      J: esters
      K: ketones
      L: nitriles
  OG:
    name: organometallics
  PL:
    name: polymers
    subcategories:
      A: copolymers
      B: elastomers
      C: homopolymers
      D: liquid crystals
      E: polymer blends
      F: rubbers
      G: thermoplastics
      H: thermosets
  SM:
    name: semiconductors
    subcategories:
      A: extrinsic
      B: II-VI
      C: III-V
      D: intrinsic
      E: n-type
      F: p-type
`

var (
	defaultVocabOnce sync.Once
	defaultVocab     Vocabulary
	defaultVocabErr  error
)

// DefaultVocabulary returns the built-in vocabulary seed.
func DefaultVocabulary() (Vocabulary, error) {
	defaultVocabOnce.Do(func() {
		defaultVocabErr = yaml.Unmarshal([]byte(defaultVocabularyYAML), &defaultVocab)
	})
	if defaultVocabErr != nil {
		return Vocabulary{}, fmt.Errorf("parse default vocabulary: %w", defaultVocabErr)
	}
	return defaultVocab, nil
}
