package classify

import "strings"

// DefaultCategory is returned when no keyword rule matches.
const DefaultCategory = "Other"

// Rule maps one category to the keywords that select it. Matching is a
// case-insensitive substring test against the combined name and details.
type Rule struct {
	Category string
	Keywords []string
}

// DefaultRules returns the standard category table. Order is part of the
// contract: when text matches several categories, the earliest rule wins.
func DefaultRules() []Rule {
	return []Rule{
		{"Home & Kitchen", []string{"plate", "cup", "utensil", "cookware", "kitchen", "appliance", "vacuum", "fan", "light", "furniture", "paper towels"}},
		{"Electronics", []string{"tv", "laptop", "computer", "monitor", "camera", "phone", "tablet", "headphone"}},
		{"Health & Beauty", []string{"shampoo", "conditioner", "vitamin", "supplement", "medicine", "health", "beauty", "cosmetic"}},
		{"Grocery", []string{"food", "snack", "drink", "beverage", "coffee", "tea", "water", "juice", "cereal", "candy"}},
		{"Clothing", []string{"shirt", "pants", "dress", "shoe", "jacket", "sock", "underwear", "clothing", "apparel"}},
		{"Pet Supplies", []string{"pet", "dog", "cat", "animal", "treat", "toy"}},
		{"Office", []string{"paper", "pen", "pencil", "notebook", "office", "stationery"}},
		{"Automotive", []string{"tire", "car", "auto", "vehicle", "automotive"}},
		{"Sports & Outdoors", []string{"sport", "outdoor", "camping", "fishing", "hunting", "exercise", "fitness"}},
		{"Toys & Games", []string{"toy", "game", "play", "puzzle", "board game"}},
		{"Baby", []string{"baby", "infant", "diaper", "formula", "stroller"}},
		{"Lawn & Garden", []string{"garden", "lawn", "plant", "flower", "seed", "soil"}},
	}
}

// Classifier assigns a category to a deal from its name and details.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier over an ordered rule table. The table
// is not copied; callers must not mutate it afterwards.
func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the category of the first rule with any keyword
// contained in name+details, or DefaultCategory when none match.
func (c *Classifier) Classify(name, details string) string {
	text := strings.ToLower(name + " " + details)
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(text, keyword) {
				return rule.Category
			}
		}
	}
	return DefaultCategory
}
