package chem

import (
	"sort"
	"strconv"
	"strings"
)

// Chemistry generates product names from reactant names. The default
// implementation works on name strings only; it exists as an interface so a
// more rigorous backend could be substituted without touching the
// orchestration logic.
type Chemistry interface {
	// Combine synthesizes a condensation product from two molecules,
	// returning the product name and whether it is amphiphilic.
	Combine(a, b *Molecule) (name string, amphiphilic bool)

	// Decompose breaks a molecule into fragment names. An empty result
	// means the molecule does not decompose.
	Decompose(m *Molecule) []string
}

// condensations maps canonical reactant pairs (sorted, joined with "+") to
// their well-known condensation products.
var condensations = map[string]string{
	"CO2+H2O": "H2CO3",
	"H2O+NH3": "NH4OH",
	"CH4+H2O": "CH3OH",
	"H2O+HCN": "HCONH2",
	"CO2+NH3": "NH2COOH",
}

// NameChemistry is the default name-string chemistry. It is an intentional
// simplification: products come from a canonical condensation table, an
// element-counting heuristic, or plain concatenation as a last resort.
type NameChemistry struct {
	rng Rand
}

// NewNameChemistry creates the default chemistry backed by the given
// random source.
func NewNameChemistry(rng Rand) *NameChemistry {
	return &NameChemistry{rng: rng}
}

// Combine synthesizes a condensation product name. A few canonical pairs are
// special-cased; otherwise both names are parsed as element formulas, one H
// is removed from each side, one O is added, and the merged formula is
// rendered. Names that do not parse as formulas are concatenated. The
// product is amphiphilic if either input is, or randomly with p=0.2 when the
// product name is at least 7 characters long.
func (c *NameChemistry) Combine(a, b *Molecule) (string, bool) {
	name := c.combineNames(a.Name, b.Name)

	amphiphilic := a.Amphiphilic || b.Amphiphilic
	if !amphiphilic && len(name) >= 7 && c.rng.Float64() < 0.2 {
		amphiphilic = true
	}
	return name, amphiphilic
}

func (c *NameChemistry) combineNames(a, b string) string {
	if product, ok := condensations[pairKey(a, b)]; ok {
		return product
	}

	ea, okA := parseFormula(a)
	eb, okB := parseFormula(b)
	if okA && okB {
		merged := make(map[string]int, len(ea)+len(eb))
		for el, n := range ea {
			merged[el] += n
		}
		for el, n := range eb {
			merged[el] += n
		}
		// Condensation: lose one H per side, gain one O.
		merged["H"] -= 2
		if merged["H"] <= 0 {
			delete(merged, "H")
		}
		merged["O"]++
		return renderFormula(merged)
	}

	return a + b
}

// Decompose splits the molecule's name in half. Single-character names do
// not decompose.
func (c *NameChemistry) Decompose(m *Molecule) []string {
	if len(m.Name) < 2 {
		return nil
	}
	mid := len(m.Name) / 2
	return []string{m.Name[:mid], m.Name[mid:]}
}

// pairKey builds an order-independent key for a reactant pair.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "+" + b
}

// parseFormula parses a chemical-formula-like name (e.g. "H2CO3") into
// element counts. Returns false if the name contains anything that is not an
// element symbol followed by an optional count.
func parseFormula(name string) (map[string]int, bool) {
	if name == "" {
		return nil, false
	}
	counts := make(map[string]int)
	i := 0
	for i < len(name) {
		ch := name[i]
		if ch < 'A' || ch > 'Z' {
			return nil, false
		}
		el := string(ch)
		i++
		if i < len(name) && name[i] >= 'a' && name[i] <= 'z' {
			el += string(name[i])
			i++
		}
		start := i
		for i < len(name) && name[i] >= '0' && name[i] <= '9' {
			i++
		}
		n := 1
		if i > start {
			parsed, err := strconv.Atoi(name[start:i])
			if err != nil || parsed <= 0 {
				return nil, false
			}
			n = parsed
		}
		counts[el] += n
	}
	return counts, true
}

// renderFormula renders element counts in Hill-like order: C first, then H,
// then the remaining elements alphabetically.
func renderFormula(counts map[string]int) string {
	elements := make([]string, 0, len(counts))
	for el, n := range counts {
		if n > 0 {
			elements = append(elements, el)
		}
	}
	sort.Slice(elements, func(i, j int) bool {
		return formulaRank(elements[i]) < formulaRank(elements[j])
	})

	var sb strings.Builder
	for _, el := range elements {
		sb.WriteString(el)
		if counts[el] > 1 {
			sb.WriteString(strconv.Itoa(counts[el]))
		}
	}
	return sb.String()
}

func formulaRank(el string) string {
	switch el {
	case "C":
		return "0"
	case "H":
		return "1"
	default:
		return "2" + el
	}
}
