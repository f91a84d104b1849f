package importer

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/gnzdotmx/okane-track-sub000/internal/ledger"
	"github.com/gnzdotmx/okane-track-sub000/internal/models"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// TypeRule describes how a transaction type is recognised.
type TypeRule struct {
	Name     string   `yaml:"name"`
	Aliases  []string `yaml:"aliases"`
	Keywords []string `yaml:"keywords"`
}

// CategoryRule files a row under Category when its type is one of Types, its
// description contains one of Keywords and its amount is at least MinAmount.
// Empty conditions always match.
type CategoryRule struct {
	Category  string   `yaml:"category"`
	Types     []string `yaml:"types"`
	Keywords  []string `yaml:"keywords"`
	MinAmount string   `yaml:"min_amount"`

	minAmount *decimal.Decimal
}

// Rules holds the import heuristics.
type Rules struct {
	Types        []TypeRule `yaml:"types"`
	DefaultType  string     `yaml:"default_type"`
	KeywordOrder []string   `yaml:"keyword_order"`
	Categories   struct {
		Default string         `yaml:"default"`
		Rules   []CategoryRule `yaml:"rules"`
	} `yaml:"categories"`
	ReimbursableKeywords []string `yaml:"reimbursable_keywords"`

	aliases map[string]string
}

// DefaultRules returns the built-in rules.
func DefaultRules() *Rules {
	rules, err := LoadRules(strings.NewReader(string(defaultRulesYAML)))
	if err != nil {
		panic(fmt.Sprintf("importer: invalid embedded rules: %v", err))
	}
	return rules
}

// LoadRulesFile reads rules from a YAML file, or returns the defaults when
// path is empty.
func LoadRulesFile(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening import rules: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadRules(f)
}

// LoadRules decodes and validates rules from YAML.
func LoadRules(r io.Reader) (*Rules, error) {
	var rules Rules
	if err := yaml.NewDecoder(r).Decode(&rules); err != nil {
		return nil, fmt.Errorf("decoding import rules: %w", err)
	}

	known := make(map[string]bool, len(models.TransactionTypeNames))
	for _, name := range models.TransactionTypeNames {
		known[name] = true
	}

	rules.aliases = make(map[string]string)
	for i := range rules.Types {
		tr := &rules.Types[i]
		tr.Name = strings.ToUpper(tr.Name)
		if !known[tr.Name] {
			return nil, fmt.Errorf("import rules: unknown transaction type %q", tr.Name)
		}
		rules.aliases[ledger.Fold(tr.Name)] = tr.Name
		rules.aliases[ledger.Fold(strings.ReplaceAll(tr.Name, "_", " "))] = tr.Name
		for _, a := range tr.Aliases {
			rules.aliases[ledger.Fold(a)] = tr.Name
		}
	}

	rules.DefaultType = strings.ToUpper(rules.DefaultType)
	if rules.DefaultType == "" {
		rules.DefaultType = models.TransactionTypeExpense
	}
	if !known[rules.DefaultType] {
		return nil, fmt.Errorf("import rules: unknown default type %q", rules.DefaultType)
	}

	for i := range rules.Categories.Rules {
		cr := &rules.Categories.Rules[i]
		if cr.MinAmount == "" {
			continue
		}
		min, err := decimal.NewFromString(cr.MinAmount)
		if err != nil {
			return nil, fmt.Errorf("import rules: category %s: invalid min_amount %q", cr.Category, cr.MinAmount)
		}
		cr.minAmount = &min
	}

	return &rules, nil
}

// ExplicitType maps a type cell ("Ingresos", "expense", "ACCOUNT_TRANSFER_IN")
// to a transaction type name.
func (r *Rules) ExplicitType(raw string) (string, bool) {
	name, ok := r.aliases[ledger.Fold(strings.ReplaceAll(raw, "_", " "))]
	if !ok {
		name, ok = r.aliases[ledger.Fold(raw)]
	}
	return name, ok
}

// GuessType infers a transaction type from a description, falling back to
// the default type.
func (r *Rules) GuessType(description string) string {
	if name, ok := r.MatchType(description); ok {
		return name
	}
	return r.DefaultType
}

// MatchType returns the first type, in keyword order, with a keyword that
// occurs in text.
func (r *Rules) MatchType(text string) (string, bool) {
	folded := ledger.Fold(text)
	for _, name := range r.KeywordOrder {
		for _, tr := range r.Types {
			if tr.Name != strings.ToUpper(name) {
				continue
			}
			if containsAny(folded, tr.Keywords) {
				return tr.Name, true
			}
		}
	}
	return "", false
}

// Categorize returns the category name for a row without an explicit one.
func (r *Rules) Categorize(typeName, description string, amount decimal.Decimal) string {
	folded := ledger.Fold(description)
	for _, cr := range r.Categories.Rules {
		if len(cr.Types) > 0 && !containsFold(cr.Types, typeName) {
			continue
		}
		if len(cr.Keywords) > 0 && !containsAny(folded, cr.Keywords) {
			continue
		}
		if cr.minAmount != nil && amount.LessThan(*cr.minAmount) {
			continue
		}
		return cr.Category
	}
	return r.Categories.Default
}

// IsReimbursable reports whether a description marks the row reimbursable.
func (r *Rules) IsReimbursable(description string) bool {
	return containsAny(ledger.Fold(description), r.ReimbursableKeywords)
}

func containsAny(folded string, keywords []string) bool {
	for _, k := range keywords {
		if k = ledger.Fold(k); k != "" && strings.Contains(folded, k) {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
