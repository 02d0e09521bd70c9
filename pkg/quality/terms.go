package quality

// Vague wording that lowers the clarity score.
var AmbiguousTerms = map[string]struct{}{
	"appropriate":   {},
	"flexible":      {},
	"user-friendly": {},
	"fast":          {},
	"efficient":     {},
	"etc":           {},
	"some":          {},
	"several":       {},
	"many":          {},
	"possibly":      {},
	"probably":      {},
	"maybe":         {},
	"easy":          {},
	"simple":        {},
	"robust":        {},
	"seamless":      {},
	"intuitive":     {},
	"optimal":       {},
	"reasonable":    {},
	"adequate":      {},
}

// Units and quantifiers that indicate a measurable requirement.
var MeasurableIndicators = []string{
	"second", "minute", "hour", "day", "week", "month",
	"%", "percent", "ms", "MB", "GB", "TB", "fps",
	"requests", "users", "items", "times",
}

// Common words excluded from key-term extraction.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "to": {}, "in": {}, "on": {},
	"is": {}, "are": {}, "be": {}, "for": {}, "and": {}, "or": {},
	"with": {}, "that": {}, "this": {}, "it": {}, "as": {}, "at": {},
	"by": {}, "can": {}, "must": {}, "should": {}, "will": {}, "shall": {},
}

// Phrases suggesting one requirement leans on another.
var referencePhrases = []string{
	"based on", "using", "depends on", "integrates with", "derived from", "via",
}

// Keywords expected per requirement type; their absence is flagged in the
// detailed analysis.
var typeKeywords = map[string][]string{
	"functional":     {"create", "display", "save", "run", "support", "allow", "provide"},
	"non_functional": {"performance", "security", "availability", "reliability", "latency", "throughput"},
	"technical":      {"technology", "system", "architecture", "implementation", "protocol", "database"},
}
