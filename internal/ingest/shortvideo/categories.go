package shortvideo

import "github.com/lueurxax/trend-pulse/internal/core/domain"

// tiktokIndustries maps unified categories onto the creative center's
// industry filter names. Unmapped categories (and "all") scrape without
// an industry filter.
var tiktokIndustries = map[domain.Category]string{
	domain.CategoryAutomotive:        "Vehicle & Transportation",
	domain.CategoryBeautyFashion:     "Beauty & Personal Care",
	domain.CategoryBusinessFinance:   "Business Services",
	domain.CategoryEntertainment:     "News & Entertainment",
	domain.CategoryFoodDrink:         "Food & Beverage",
	domain.CategoryGaming:            "Games",
	domain.CategoryHealthFitness:     "Health",
	domain.CategoryHobbiesLifestyle:  "Life Services",
	domain.CategoryEducationCareers:  "Education",
	domain.CategoryPetsAnimals:       "Pets",
	domain.CategoryScienceTechnology: "Tech & Electronics",
	domain.CategoryShopping:          "Apparel & Accessories",
	domain.CategorySports:            "Sports & Outdoor",
	domain.CategoryTravel:            "Travel",
}
