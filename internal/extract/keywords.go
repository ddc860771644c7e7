package extract

// priceKeywords signal day-pass pricing context.
var priceKeywords = []string{
	"day pass",
	"daypass",
	"drop-in",
	"drop in",
	"dropin",
	"single visit",
	"single entry",
	"walk-in",
	"walk in",
	"walkin",
	"adult",
	"general admission",
	"daily",
	"one time",
	"one-time",
}

// exclusionKeywords indicate discounted or non-adult price tiers. Candidates
// found near them are penalized, never discarded.
var exclusionKeywords = []string{
	"under",
	"youth",
	"child",
	"children",
	"kid",
	"kids",
	"student",
	"senior",
	"junior",
	"teen",
	"minor",
	"65+",
	"55+",
	"and under",
	"or under",
	"years old",
	"yrs old",
	"y/o",
}

// priceSelectors are class/attribute patterns commonly used for pricing
// markup.
var priceSelectors = []string{
	".price",
	`[class*="price"]`,
	"[data-price]",
	".pricing",
	`[class*="pricing"]`,
	".cost",
	`[class*="cost"]`,
	".rate",
	`[class*="rate"]`,
	".fee",
	`[class*="fee"]`,
}
