package grocery

import (
	"strings"
	"unicode"
)

// Fallback is the category returned when nothing matches.
const Fallback = "Other"

// Suggest returns the seeded category name an item most likely belongs to.
// Whole phrases are tried before single words so "ice cream" beats
// "cream" and "peanut butter" beats "butter". Matching ignores case and a
// trailing plural "s".
func Suggest(itemName string) string {
	words := tokenize(itemName)
	if len(words) == 0 {
		return Fallback
	}

	// Longest phrase wins; earlier position breaks ties.
	for size := min(len(words), maxPhraseWords); size > 0; size-- {
		for i := 0; i+size <= len(words); i++ {
			if cat, ok := keywords[strings.Join(words[i:i+size], " ")]; ok {
				return cat
			}
		}
	}
	return Fallback
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	})
	for i, f := range fields {
		fields[i] = singular(f)
	}
	return fields
}

func singular(w string) string {
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 3 && strings.HasSuffix(w, "ie"):
		// "cookie" and "cookies" both normalize to "cooky".
		return w[:len(w)-2] + "y"
	case len(w) > 4 && strings.HasSuffix(w, "oes"):
		return w[:len(w)-2]
	case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return w[:len(w)-1]
	}
	return w
}

const maxPhraseWords = 3

var keywords = buildKeywords(map[string][]string{
	"Produce": {
		"apple", "banana", "orange", "lemon", "lime", "avocado", "tomato",
		"potato", "sweet potato", "onion", "garlic", "lettuce", "spinach",
		"kale", "broccoli", "carrot", "celery", "cucumber", "pepper",
		"bell pepper", "mushroom", "corn", "grape", "strawberry", "blueberry",
		"raspberry", "pear", "peach", "mango", "pineapple", "zucchini",
		"cabbage", "cilantro", "parsley", "basil", "ginger", "salad",
	},
	"Dairy": {
		"milk", "cheese", "butter", "yogurt", "cream", "sour cream",
		"cream cheese", "cottage cheese", "egg", "half and half", "kefir",
	},
	"Meat & Seafood": {
		"chicken", "beef", "pork", "turkey", "ham", "bacon", "sausage",
		"ground beef", "steak", "lamb", "salmon", "tuna steak", "shrimp",
		"fish", "cod", "tilapia", "crab", "hot dog",
	},
	"Bakery": {
		"bread", "bagel", "muffin", "croissant", "tortilla", "bun", "roll",
		"baguette", "pita", "cake", "donut", "pie",
	},
	"Pantry": {
		"rice", "pasta", "spaghetti", "noodle", "flour", "sugar", "salt",
		"oil", "olive oil", "vinegar", "cereal", "oat", "oatmeal", "bean",
		"black bean", "lentil", "peanut butter", "jam", "honey", "syrup",
		"ketchup", "mustard", "mayo", "mayonnaise", "sauce", "soup", "broth",
		"canned tuna", "spice", "baking soda",
	},
	"Frozen": {
		"ice cream", "frozen pizza", "frozen vegetable", "frozen fruit",
		"frozen", "popsicle", "waffle", "ice",
	},
	"Beverages": {
		"water", "sparkling water", "juice", "orange juice", "apple juice",
		"soda", "coffee", "tea", "beer", "wine", "kombucha", "lemonade",
	},
	"Snacks": {
		"chip", "cracker", "cookie", "popcorn", "pretzel", "candy",
		"chocolate", "granola bar", "trail mix", "nut", "snack",
	},
	"Household": {
		"paper towel", "toilet paper", "trash bag", "dish soap", "detergent",
		"laundry detergent", "sponge", "foil", "plastic wrap", "battery",
		"light bulb", "cleaner", "bleach", "napkin",
	},
	"Personal Care": {
		"shampoo", "conditioner", "toothpaste", "toothbrush", "deodorant",
		"lotion", "sunscreen", "razor", "tissue", "body wash", "soap",
		"floss", "band-aid",
	},
})

func buildKeywords(byCategory map[string][]string) map[string]string {
	m := make(map[string]string)
	for cat, words := range byCategory {
		for _, w := range words {
			m[strings.Join(tokenize(w), " ")] = cat
		}
	}
	return m
}
