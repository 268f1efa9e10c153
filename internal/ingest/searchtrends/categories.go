package searchtrends

import "github.com/lueurxax/trend-pulse/internal/core/domain"

// googleCategoryIDs maps unified categories onto Google Trends category
// ids. Unmapped categories (and "all") fetch without a category filter.
var googleCategoryIDs = map[domain.Category]string{
	domain.CategoryAutomotive:         "1",
	domain.CategoryBeautyFashion:      "2",
	domain.CategoryBusinessFinance:    "3",
	domain.CategoryEntertainment:      "4",
	domain.CategoryFoodDrink:          "5",
	domain.CategoryGaming:             "6",
	domain.CategoryHealthFitness:      "7",
	domain.CategoryHobbiesLifestyle:   "8",
	domain.CategoryEducationCareers:   "9",
	domain.CategoryLawPolitics:        "10",
	domain.CategoryOtherMisc:          "11",
	domain.CategoryPetsAnimals:        "13",
	domain.CategoryShopping:           "16",
	domain.CategorySports:             "17",
	domain.CategoryScienceTechnology:  "18",
	domain.CategoryTravel:             "19",
	domain.CategoryClimateEnvironment: "20",
}
