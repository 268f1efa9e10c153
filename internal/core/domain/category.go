package domain

// Category is the unified content category shared across platforms.
// Each ingestion client translates it to its platform's own identifier;
// the scoring engine never inspects it.
type Category string

const (
	CategoryAll                Category = "all"
	CategoryAutomotive         Category = "automotive"
	CategoryBeautyFashion      Category = "beauty_fashion"
	CategoryBusinessFinance    Category = "business_finance"
	CategoryClimateEnvironment Category = "climate_environment"
	CategoryEntertainment      Category = "entertainment"
	CategoryFoodDrink          Category = "food_drink"
	CategoryGaming             Category = "gaming"
	CategoryHealthFitness      Category = "health_fitness"
	CategoryHobbiesLifestyle   Category = "hobbies_lifestyle"
	CategoryEducationCareers   Category = "education_careers"
	CategoryLawPolitics        Category = "law_politics"
	CategoryOtherMisc          Category = "other_misc"
	CategoryPetsAnimals        Category = "pets_animals"
	CategoryScienceTechnology  Category = "science_technology"
	CategoryShopping           Category = "shopping"
	CategorySports             Category = "sports"
	CategoryTravel             Category = "travel"
	CategoryArtsMedia          Category = "arts_media"
)

var categoryDisplayNames = map[Category]string{
	CategoryAll:                "All Categories",
	CategoryAutomotive:         "Automotive",
	CategoryBeautyFashion:      "Beauty & Fashion",
	CategoryBusinessFinance:    "Business & Finance",
	CategoryClimateEnvironment: "Climate & Environment",
	CategoryEntertainment:      "Entertainment",
	CategoryFoodDrink:          "Food & Drink",
	CategoryGaming:             "Gaming",
	CategoryHealthFitness:      "Health & Fitness",
	CategoryHobbiesLifestyle:   "Hobbies & Lifestyle",
	CategoryEducationCareers:   "Education & Careers",
	CategoryLawPolitics:        "Law & Politics",
	CategoryOtherMisc:          "Other / Misc",
	CategoryPetsAnimals:        "Pets & Animals",
	CategoryScienceTechnology:  "Science & Technology",
	CategoryShopping:           "Shopping",
	CategorySports:             "Sports",
	CategoryTravel:             "Travel",
	CategoryArtsMedia:          "Arts & Media",
}

// Categories lists every unified category including the "all" pseudo
// category.
func Categories() []Category {
	return []Category{
		CategoryAll,
		CategoryAutomotive,
		CategoryBeautyFashion,
		CategoryBusinessFinance,
		CategoryClimateEnvironment,
		CategoryEntertainment,
		CategoryFoodDrink,
		CategoryGaming,
		CategoryHealthFitness,
		CategoryHobbiesLifestyle,
		CategoryEducationCareers,
		CategoryLawPolitics,
		CategoryOtherMisc,
		CategoryPetsAnimals,
		CategoryScienceTechnology,
		CategoryShopping,
		CategorySports,
		CategoryTravel,
		CategoryArtsMedia,
	}
}

// DisplayName returns the human-readable label for the category.
func (c Category) DisplayName() string {
	if name, ok := categoryDisplayNames[c]; ok {
		return name
	}

	return string(c)
}

// ParseCategory maps a request parameter onto a known category, falling
// back to "all" for empty or unknown values.
func ParseCategory(s string) Category {
	c := Category(s)
	if _, ok := categoryDisplayNames[c]; ok {
		return c
	}

	return CategoryAll
}
