// Package taxonomy holds the static lookup tables shared by every analysis
// stage: the skill taxonomy, inference maps, critique vocabularies and the
// interview stage definitions. Tables are loaded once and never mutated.
package taxonomy

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/taxonomy.yaml
var defaultYAML []byte

// Skill categories used in the taxonomy file.
const (
	CategoryLanguage          = "language"
	CategoryFramework         = "framework"
	CategoryDatabase          = "database"
	CategoryCloud             = "cloud"
	CategoryDevOps            = "devops"
	CategoryDataTool          = "data-tool"
	CategoryCollaborationTool = "collaboration-tool"
	CategoryMethodology       = "methodology"
	CategorySoftSkill         = "soft-skill"
)

// Signal kinds understood by Signals.
const (
	SignalSalary   = "salary"
	SignalLocation = "location"
	SignalBenefits = "benefits"
	SignalGrowth   = "growth"
	SignalCulture  = "culture"
	SignalResearch = "research"
)

// FocusDomain is a named cluster of skills.
type FocusDomain struct {
	Name   string   `yaml:"name"`
	Skills []string `yaml:"skills"`
}

// RoleTemplate describes a role by the skills that characterise it.
type RoleTemplate struct {
	Name      string   `yaml:"name"`
	Signature []string `yaml:"signature"`
}

// Stage is an interview stage and the phrases that reveal it.
type Stage struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// DegreeLevel maps a normalized degree level to the phrases naming it.
type DegreeLevel struct {
	Level    string   `yaml:"level"`
	Keywords []string `yaml:"keywords"`
}

// Layer is one technology layer of a software stack (frontend, backend...).
type Layer struct {
	Name  string
	Terms []string
}

// file mirrors the YAML document layout.
type file struct {
	Skills          map[string][]string `yaml:"skills"`
	Aliases         map[string]string   `yaml:"aliases"`
	AmbiguousTokens []string            `yaml:"ambiguous_tokens"`
	HiddenSkills    map[string][]string `yaml:"hidden_skills"`
	FocusAreas      []FocusDomain       `yaml:"focus_areas"`
	Roles           []RoleTemplate      `yaml:"roles"`
	TechnologyAges  map[string]int      `yaml:"technology_ages"`
	CloudProviders  []string            `yaml:"cloud_providers"`
	StackLayers     yaml.Node           `yaml:"stack_layers"`
	Buzzwords       []string            `yaml:"buzzwords"`
	InterviewStages []Stage             `yaml:"interview_stages"`
	Signals         map[string][]string `yaml:"signals"`
	Degrees         []DegreeLevel       `yaml:"degrees"`
	StudyFields     []string            `yaml:"study_fields"`
}

// Tables is the immutable, process-wide set of lookup tables.
type Tables struct {
	categories     map[string]string
	categoryOrder  []string
	skillsByCat    map[string][]string
	aliases        map[string]string
	ambiguous      map[string]bool
	phrases        []string
	hidden         map[string][]string
	focus          []FocusDomain
	roles          []RoleTemplate
	techAges       map[string]int
	technologies   []string
	cloudProviders []string
	layers         []Layer
	buzzwords      []string
	stages         []Stage
	signals        map[string][]string
	degrees        []DegreeLevel
	studyFields    []string
}

var (
	defaultOnce   sync.Once
	defaultTables *Tables
)

// Default returns the tables compiled into the binary. The embedded file is
// parsed on first use only.
func Default() *Tables {
	defaultOnce.Do(func() {
		t, err := Load(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("taxonomy: embedded tables are invalid: %v", err))
		}
		defaultTables = t
	})
	return defaultTables
}

// Load parses a taxonomy document.
func Load(data []byte) (*Tables, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy: %w", err)
	}
	if len(f.Skills) == 0 {
		return nil, fmt.Errorf("taxonomy defines no skills")
	}

	t := &Tables{
		categories:     make(map[string]string),
		skillsByCat:    make(map[string][]string),
		aliases:        make(map[string]string, len(f.Aliases)),
		ambiguous:      make(map[string]bool, len(f.AmbiguousTokens)),
		hidden:         make(map[string][]string, len(f.HiddenSkills)),
		focus:          f.FocusAreas,
		roles:          f.Roles,
		techAges:       f.TechnologyAges,
		cloudProviders: lowerAll(f.CloudProviders),
		buzzwords:      lowerAll(f.Buzzwords),
		stages:         f.InterviewStages,
		signals:        make(map[string][]string, len(f.Signals)),
		degrees:        f.Degrees,
		studyFields:    lowerAll(f.StudyFields),
	}

	for cat, names := range f.Skills {
		t.categoryOrder = append(t.categoryOrder, cat)
		for _, name := range names {
			name = strings.ToLower(strings.TrimSpace(name))
			if prev, ok := t.categories[name]; ok {
				return nil, fmt.Errorf("skill %q listed under both %q and %q", name, prev, cat)
			}
			t.categories[name] = cat
			t.skillsByCat[cat] = append(t.skillsByCat[cat], name)
		}
	}
	sort.Strings(t.categoryOrder)

	for variant, canonical := range f.Aliases {
		canonical = strings.ToLower(canonical)
		if _, ok := t.categories[canonical]; !ok {
			return nil, fmt.Errorf("alias %q points at unknown skill %q", variant, canonical)
		}
		t.aliases[strings.ToLower(variant)] = canonical
	}
	for _, tok := range f.AmbiguousTokens {
		t.ambiguous[strings.ToLower(tok)] = true
	}
	for skill, implied := range f.HiddenSkills {
		t.hidden[strings.ToLower(skill)] = lowerAll(implied)
	}
	for kind, terms := range f.Signals {
		t.signals[kind] = lowerAll(terms)
	}

	for _, d := range t.focus {
		for _, s := range d.Skills {
			if _, ok := t.categories[s]; !ok {
				return nil, fmt.Errorf("focus area %q references unknown skill %q", d.Name, s)
			}
		}
	}
	for _, r := range t.roles {
		if len(r.Signature) == 0 {
			return nil, fmt.Errorf("role %q has an empty signature", r.Name)
		}
	}

	layers, err := decodeLayers(&f.StackLayers)
	if err != nil {
		return nil, err
	}
	t.layers = layers

	for name := range t.techAges {
		t.technologies = append(t.technologies, name)
	}
	sortLongestFirst(t.technologies)

	// Phrases are any term the tokenizer would split apart.
	for name := range t.categories {
		if isPhrase(name) {
			t.phrases = append(t.phrases, name)
		}
	}
	for variant := range t.aliases {
		if isPhrase(variant) {
			t.phrases = append(t.phrases, variant)
		}
	}
	sortLongestFirst(t.phrases)

	return t, nil
}

// decodeLayers keeps the declaration order of the stack_layers mapping.
func decodeLayers(node *yaml.Node) ([]Layer, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("stack_layers must be a mapping")
	}
	layers := make([]Layer, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var terms []string
		if err := node.Content[i+1].Decode(&terms); err != nil {
			return nil, fmt.Errorf("stack layer %q: %w", node.Content[i].Value, err)
		}
		layers = append(layers, Layer{Name: node.Content[i].Value, Terms: lowerAll(terms)})
	}
	return layers, nil
}

func isPhrase(term string) bool {
	return strings.ContainsAny(term, " /()")
}

func sortLongestFirst(terms []string) {
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

// Canonical resolves a lower-case token or phrase to its canonical skill name.
// Ambiguous bare tokens are not resolved.
func (t *Tables) Canonical(term string) (string, bool) {
	if canonical, ok := t.aliases[term]; ok {
		return canonical, true
	}
	if t.ambiguous[term] {
		return "", false
	}
	if _, ok := t.categories[term]; ok {
		return term, true
	}
	return "", false
}

// Category returns the category of a canonical skill.
func (t *Tables) Category(skill string) (string, bool) {
	c, ok := t.categories[skill]
	return c, ok
}

// Categories lists category names in sorted order.
func (t *Tables) Categories() []string {
	return append([]string(nil), t.categoryOrder...)
}

// SkillsIn returns the skills of a category in declaration order.
func (t *Tables) SkillsIn(category string) []string {
	return append([]string(nil), t.skillsByCat[category]...)
}

// Phrases returns multi-word skill names and aliases, longest first.
func (t *Tables) Phrases() []string {
	return append([]string(nil), t.phrases...)
}

// Implied returns the hidden skills implied by a canonical skill.
func (t *Tables) Implied(skill string) []string {
	return append([]string(nil), t.hidden[skill]...)
}

// FocusDomains returns the focus domains in declaration order.
func (t *Tables) FocusDomains() []FocusDomain {
	out := make([]FocusDomain, len(t.focus))
	for i, d := range t.focus {
		out[i] = FocusDomain{Name: d.Name, Skills: append([]string(nil), d.Skills...)}
	}
	return out
}

// Roles returns the role templates in priority order.
func (t *Tables) Roles() []RoleTemplate {
	out := make([]RoleTemplate, len(t.roles))
	for i, r := range t.roles {
		out[i] = RoleTemplate{Name: r.Name, Signature: append([]string(nil), r.Signature...)}
	}
	return out
}

// Technologies lists the names with a known age, longest name first.
func (t *Tables) Technologies() []string {
	return append([]string(nil), t.technologies...)
}

// TechnologyAge returns how many years a technology has existed.
func (t *Tables) TechnologyAge(name string) (int, bool) {
	age, ok := t.techAges[name]
	return age, ok
}

func (t *Tables) CloudProviders() []string {
	return append([]string(nil), t.cloudProviders...)
}

// StackLayers returns the stack layers in declaration order.
func (t *Tables) StackLayers() []Layer {
	out := make([]Layer, len(t.layers))
	for i, l := range t.layers {
		out[i] = Layer{Name: l.Name, Terms: append([]string(nil), l.Terms...)}
	}
	return out
}

func (t *Tables) Buzzwords() []string {
	return append([]string(nil), t.buzzwords...)
}

// InterviewStages returns the stage definitions in detection order.
func (t *Tables) InterviewStages() []Stage {
	out := make([]Stage, len(t.stages))
	for i, s := range t.stages {
		out[i] = Stage{Name: s.Name, Keywords: lowerAll(s.Keywords)}
	}
	return out
}

// Signals returns the vocabulary for one signal kind.
func (t *Tables) Signals(kind string) []string {
	return append([]string(nil), t.signals[kind]...)
}

// Degrees returns degree levels from highest to lowest.
func (t *Tables) Degrees() []DegreeLevel {
	out := make([]DegreeLevel, len(t.degrees))
	for i, d := range t.degrees {
		out[i] = DegreeLevel{Level: d.Level, Keywords: lowerAll(d.Keywords)}
	}
	return out
}

func (t *Tables) StudyFields() []string {
	return append([]string(nil), t.studyFields...)
}
