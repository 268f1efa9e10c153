package scoring

// Component name constants, used in logs and table overrides.
const (
	ComponentVolume        = "volume"
	ComponentEngagement    = "engagement"
	ComponentVelocity      = "velocity"
	ComponentRecency       = "recency"
	ComponentCrossPlatform = "cross_platform"
)

// Volume scoring constants
const (
	// Search volumes are numerically far smaller than view counts, so
	// they get a scale-matching boost before normalization.
	searchVolumeBoost     = 100.0
	creatorFollowerWeight = 10.0
)

// Engagement scoring constants
const (
	videoEngagementScale   = 1_000_000.0
	creatorEngagementScale = 100.0
	rankInversionScale     = 100.0

	hashtagViewWeight     = 0.45
	hashtagVideoWeight    = 0.30
	hashtagRankWeight     = 0.15
	hashtagMomentumWeight = 0.10
)

// Velocity scoring constants
const (
	searchVelocityBoost     = 30.0
	activeVelocityBonus     = 1.5
	viralIncreaseThreshold  = 1000.0
	viralVelocityBonus      = 1.2
	viewVelocityWeight      = 0.7
	reactionVelocityWeight  = 0.3
	defaultPublishAgeHours  = 24.0
	minPublishAgeHours      = 1.0
	creatorViewSpanWeight   = 0.5
	creatorLikeSpanWeight   = 0.3
	creatorCountSpanWeight  = 0.2
	creatorCountSpanScale   = 100_000.0
	minRelatedVideosForSpan = 2
	minSpanDays             = 1.0 / 24.0
	histogramGrowthScale    = 100.0
	rankFallbackBase        = 100.0
	rankFallbackScale       = 10.0
	hoursPerDay             = 24.0
)

// Recency scoring constants
const (
	recencyHalfLifeHours = 24.0
	defaultRecencyScore  = 70.0
	maxComponentScore    = 100.0
)

// Cross-platform scoring constants
const (
	twoPlatformsScore    = 50.0
	threePlatformsScore  = 100.0
	termOverlapThreshold = 0.3
	minTermRunes         = 3
)

// Normalization constants
const (
	percentTotal     = 100.0
	momentumScale    = 100.0
	minHistogramSize = 2
	scoreRoundFactor = 100.0
)

// Log field name constants
const (
	logFieldItems    = "items"
	logFieldPlatform = "platform"
	logFieldWindow   = "window"
	logFieldKept     = "kept"
	logFieldDropped  = "dropped"
)
