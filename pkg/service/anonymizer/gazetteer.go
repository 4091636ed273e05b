package anonymizer

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/secmon-lab/mentorag/pkg/domain/interfaces"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
)

// DefaultLocations are Brazilian states, capitals and large cities
var DefaultLocations = []string{
	"Acre", "Alagoas", "Amapá", "Amazonas", "Bahia", "Ceará", "Distrito Federal",
	"Espírito Santo", "Goiás", "Maranhão", "Mato Grosso", "Mato Grosso do Sul",
	"Minas Gerais", "Pará", "Paraíba", "Paraná", "Pernambuco", "Piauí",
	"Rio de Janeiro", "Rio Grande do Norte", "Rio Grande do Sul", "Rondônia",
	"Roraima", "Santa Catarina", "São Paulo", "Sergipe", "Tocantins",

	"Rio Branco", "Maceió", "Macapá", "Manaus", "Salvador", "Fortaleza", "Brasília",
	"Vitória", "Goiânia", "São Luís", "Cuiabá", "Campo Grande", "Belo Horizonte",
	"Belém", "João Pessoa", "Curitiba", "Recife", "Teresina", "Natal", "Porto Alegre",
	"Porto Velho", "Boa Vista", "Florianópolis", "Aracaju", "Palmas",

	"Campinas", "Guarulhos", "Santos", "Ribeirão Preto", "Sorocaba", "Niterói",
	"Londrina", "Joinville", "Uberlândia", "Juiz de Fora", "São José dos Campos",
}

// DefaultInstitutionKeywords start the name of a health or teaching institution
var DefaultInstitutionKeywords = []string{
	"Hospital", "Clínica", "Policlínica", "Instituto", "Santa Casa", "Universidade",
	"Faculdade", "Laboratório", "Maternidade", "Posto de Saúde", "UBS", "UPA",
}

// personCues precede a person name in Portuguese text
var personCues = []string{
	"Sr.", "Sra.", "Srta.", "Dona", "Seu", "paciente", "Paciente",
	"meu nome é", "Meu nome é", "me chamo", "Me chamo", "chamado", "chamada",
}

const (
	nameWord     = `\p{Lu}[\p{Ll}'-]+`
	nameSequence = nameWord + `(?:\s+(?:d[aeo]s?\s+)?` + nameWord + `)*`
)

// Gazetteer recognizes entities with word lists and capitalization cues.
// It needs no model and works offline.
type Gazetteer struct {
	locations    *regexp.Regexp
	institutions *regexp.Regexp
	persons      *regexp.Regexp
}

var _ interfaces.EntityRecognizer = &Gazetteer{}

type gazetteerConfig struct {
	locations    []string
	institutions []string
}

// GazetteerOption is a functional option for Gazetteer configuration
type GazetteerOption func(*gazetteerConfig)

// WithLocations adds location names to the default list
func WithLocations(names ...string) GazetteerOption {
	return func(c *gazetteerConfig) {
		c.locations = append(c.locations, names...)
	}
}

// WithInstitutionKeywords adds institution keywords to the default list
func WithInstitutionKeywords(keywords ...string) GazetteerOption {
	return func(c *gazetteerConfig) {
		c.institutions = append(c.institutions, keywords...)
	}
}

// NewGazetteer creates a Gazetteer over the default lists plus any additions
func NewGazetteer(opts ...GazetteerOption) *Gazetteer {
	cfg := &gazetteerConfig{
		locations:    append([]string{}, DefaultLocations...),
		institutions: append([]string{}, DefaultInstitutionKeywords...),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	locations := regexp.MustCompile(alternation(cfg.locations))
	locations.Longest()

	institutions := regexp.MustCompile(`(?:` + alternation(cfg.institutions) + `)(?:\s+(?:d[aeo]s?\s+)?` + nameWord + `)+`)
	persons := regexp.MustCompile(`(?:` + alternation(personCues) + `)\s+(` + nameSequence + `)`)

	return &Gazetteer{
		locations:    locations,
		institutions: institutions,
		persons:      persons,
	}
}

// alternation quotes terms and orders them longest first
func alternation(terms []string) string {
	quoted := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	sort.SliceStable(quoted, func(i, j int) bool {
		return len(quoted[i]) > len(quoted[j])
	})
	return strings.Join(quoted, "|")
}

// Recognize returns person, location and organization entities found in text
func (g *Gazetteer) Recognize(ctx context.Context, text string) ([]model.Entity, error) {
	var entities []model.Entity

	for _, m := range g.persons.FindAllStringSubmatchIndex(text, -1) {
		if isWordBoundary(text, m[0], m[1]) {
			entities = append(entities, newEntity(text, m[2], m[3], types.EntityPerson))
		}
	}
	for _, m := range g.institutions.FindAllStringIndex(text, -1) {
		if isWordBoundary(text, m[0], m[1]) {
			entities = append(entities, newEntity(text, m[0], m[1], types.EntityOrganization))
		}
	}
	for _, m := range g.locations.FindAllStringIndex(text, -1) {
		if isWordBoundary(text, m[0], m[1]) {
			entities = append(entities, newEntity(text, m[0], m[1], types.EntityLocation))
		}
	}

	return entities, nil
}

func newEntity(text string, start, end int, category types.EntityCategory) model.Entity {
	return model.Entity{
		Text:     text[start:end],
		Category: category,
		Span:     model.Span{Start: start, End: end},
	}
}

// isWordBoundary reports whether text[start:end] is not glued to letters or
// digits on either side. regexp's \b only knows ASCII word characters.
func isWordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
