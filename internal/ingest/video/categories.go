package video

import "github.com/lueurxax/trend-pulse/internal/core/domain"

// youTubeCategoryIDs maps unified categories onto YouTube video
// category ids. The chart endpoint accepts a single id, so categories
// spanning several YouTube ones pin their primary id. Unmapped
// categories (and "all") fetch the unfiltered chart.
var youTubeCategoryIDs = map[domain.Category]string{
	domain.CategoryAutomotive:        "2",
	domain.CategoryBeautyFashion:     "26",
	domain.CategoryBusinessFinance:   "29",
	domain.CategoryEntertainment:     "24",
	domain.CategoryFoodDrink:         "22",
	domain.CategoryGaming:            "20",
	domain.CategoryHealthFitness:     "26",
	domain.CategoryHobbiesLifestyle:  "22",
	domain.CategoryEducationCareers:  "27",
	domain.CategoryLawPolitics:       "25",
	domain.CategoryPetsAnimals:       "15",
	domain.CategoryScienceTechnology: "28",
	domain.CategoryShopping:          "26",
	domain.CategorySports:            "17",
	domain.CategoryTravel:            "19",
	domain.CategoryArtsMedia:         "1",
}
