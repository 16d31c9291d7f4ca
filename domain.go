package sitelens

import (
	"fmt"
	"strings"
)

// DefaultDomain is used when a task does not name an analysis domain.
const DefaultDomain = "general"

// Domain is a named analysis vertical. It parameterizes which fields the
// extraction prompt asks for and how analyses and answers are framed.
type Domain struct {
	Key           string   `json:"key"`
	Name          string   `json:"name"`
	Parameters    []string `json:"parameters"`
	AnalysisFocus []string `json:"analysis_focus"`
	QnAStyle      string   `json:"qna_style"`

	// Checklist lists fields the model must always try to extract.
	Checklist []string `json:"checklist,omitempty"`

	// PreferStructured tells the model to trust schema markup over
	// free text for checklist fields.
	PreferStructured bool `json:"prefer_structured,omitempty"`
}

var commerceChecklist = []string{"price", "rating", "review_count", "discount", "availability"}

var domains = []Domain{
	{
		Key:  "ecommerce",
		Name: "E-Commerce",
		Parameters: []string{
			"product_name", "price", "discount", "rating", "reviews_count",
			"availability", "description", "features", "images",
		},
		AnalysisFocus: []string{
			"pricing signals", "feature differentiation", "customer sentiment",
			"availability or shipping info", "value propositions",
		},
		QnAStyle:         "Answer as a product analyst focused on shopper needs.",
		Checklist:        commerceChecklist,
		PreferStructured: true,
	},
	{
		Key:  "news",
		Name: "News & Media",
		Parameters: []string{
			"headline", "author", "publish_date", "content", "tags",
			"category", "image", "summary",
		},
		AnalysisFocus: []string{
			"story angle", "sentiment tone", "source credibility",
			"timeliness", "topic coverage",
		},
		QnAStyle:  "Answer as an editorial analyst focusing on article details.",
		Checklist: []string{"headline", "author", "publish_date"},
	},
	{
		Key:  "business",
		Name: "Business & Finance",
		Parameters: []string{
			"company_name", "revenue", "stock_price", "market_cap", "employees",
			"location", "description", "services",
		},
		AnalysisFocus: []string{
			"business model", "financial metrics", "market positioning",
			"growth signals", "competitive differentiation",
		},
		QnAStyle: "Answer as a strategy consultant summarizing business context.",
	},
	{
		Key:  "jobs",
		Name: "Job Listings",
		Parameters: []string{
			"job_title", "company", "location", "salary", "job_type",
			"requirements", "description", "posted_date",
		},
		AnalysisFocus: []string{
			"salary/seniority clues", "skills requirements", "location trends",
			"employment type", "employer highlights",
		},
		QnAStyle:  "Answer as a career coach referencing job details.",
		Checklist: []string{"job_title", "company", "location", "salary"},
	},
	{
		Key:  "real_estate",
		Name: "Real Estate",
		Parameters: []string{
			"property_type", "price", "location", "bedrooms", "bathrooms",
			"area", "amenities", "description",
		},
		AnalysisFocus: []string{
			"pricing vs location", "property features", "unique amenities",
			"market positioning", "investment highlights",
		},
		QnAStyle:  "Answer as a property analyst comparing real estate listings.",
		Checklist: []string{"price", "location", "bedrooms", "bathrooms", "area"},
	},
	{
		Key:  "restaurant",
		Name: "Restaurant & Food",
		Parameters: []string{
			"restaurant_name", "cuisine", "rating", "price_range", "location",
			"menu_items", "reviews", "hours",
		},
		AnalysisFocus: []string{
			"dining experience", "menu highlights", "price positioning",
			"customer sentiment", "unique value props",
		},
		QnAStyle:  "Answer as a food critic who evaluated the listings.",
		Checklist: []string{"rating", "review_count", "price_range"},
	},
	{
		Key:  "social_media",
		Name: "Social Media",
		Parameters: []string{
			"post_content", "author", "timestamp", "likes", "shares", "comments",
			"hashtags", "mentions", "media_type", "engagement_metrics",
		},
		AnalysisFocus: []string{
			"engagement patterns", "content themes", "audience sentiment",
			"viral potential", "influencer identification",
		},
		QnAStyle: "Answer as a social media analyst focusing on engagement and trends.",
	},
	{
		Key:  "education",
		Name: "Education & Courses",
		Parameters: []string{
			"course_title", "instructor", "duration", "price", "rating", "enrollment_count",
			"curriculum", "prerequisites", "certification", "description",
		},
		AnalysisFocus: []string{
			"course value proposition", "pricing competitiveness", "content quality indicators",
			"instructor credibility", "student outcomes",
		},
		QnAStyle: "Answer as an education consultant evaluating course offerings.",
	},
	{
		Key:  "healthcare",
		Name: "Healthcare & Medical",
		Parameters: []string{
			"provider_name", "specialty", "location", "rating", "reviews", "services",
			"insurance_accepted", "availability", "credentials", "contact_info",
		},
		AnalysisFocus: []string{
			"service quality indicators", "patient satisfaction", "accessibility factors",
			"specialization areas", "trust signals",
		},
		QnAStyle: "Answer as a healthcare analyst focusing on provider information and patient experience.",
	},
	{
		Key:  "travel",
		Name: "Travel & Tourism",
		Parameters: []string{
			"destination", "accommodation", "price", "rating", "amenities", "location",
			"availability", "reviews", "images", "booking_info",
		},
		AnalysisFocus: []string{
			"value for money", "location advantages", "amenity comparisons",
			"guest satisfaction", "booking convenience",
		},
		QnAStyle:  "Answer as a travel advisor comparing destinations and accommodations.",
		Checklist: []string{"price", "rating", "review_count", "availability"},
	},
	{
		Key:  "technology",
		Name: "Technology & Software",
		Parameters: []string{
			"product_name", "version", "price", "features", "specifications", "reviews",
			"compatibility", "support", "license_type", "documentation",
		},
		AnalysisFocus: []string{
			"feature differentiation", "pricing models", "user satisfaction",
			"technical capabilities", "market positioning",
		},
		QnAStyle: "Answer as a technology analyst evaluating software and tech products.",
	},
	{
		Key:  "legal",
		Name: "Legal Services",
		Parameters: []string{
			"firm_name", "practice_areas", "attorney_names", "location", "experience",
			"case_results", "reviews", "contact_info", "consultation_fee",
		},
		AnalysisFocus: []string{
			"expertise areas", "client satisfaction", "success indicators",
			"service accessibility", "professional credentials",
		},
		QnAStyle: "Answer as a legal services analyst focusing on firm capabilities and client outcomes.",
	},
	{
		Key:  "entertainment",
		Name: "Entertainment & Media",
		Parameters: []string{
			"title", "genre", "rating", "release_date", "cast", "director", "reviews",
			"streaming_platform", "duration", "synopsis",
		},
		AnalysisFocus: []string{
			"content quality", "audience reception", "genre trends",
			"platform availability", "critical acclaim",
		},
		QnAStyle: "Answer as an entertainment critic analyzing media content and audience response.",
	},
	{
		Key:  "sports",
		Name: "Sports & Fitness",
		Parameters: []string{
			"event_name", "date", "teams", "scores", "venue", "ticket_price",
			"player_stats", "league", "broadcast_info", "highlights",
		},
		AnalysisFocus: []string{
			"performance metrics", "event details", "ticketing information",
			"fan engagement", "statistical trends",
		},
		QnAStyle: "Answer as a sports analyst focusing on events, statistics, and performance data.",
	},
	{
		Key:  "automotive",
		Name: "Automotive",
		Parameters: []string{
			"make", "model", "year", "price", "mileage", "condition", "features",
			"location", "seller_info", "specifications", "images",
		},
		AnalysisFocus: []string{
			"value assessment", "condition indicators", "feature comparisons",
			"market pricing", "seller credibility",
		},
		QnAStyle:  "Answer as an automotive analyst evaluating vehicles and market value.",
		Checklist: []string{"price", "mileage", "year", "condition"},
	},
	{
		Key:  "fashion",
		Name: "Fashion & Clothing",
		Parameters: []string{
			"product_name", "brand", "price", "size", "color", "material", "style",
			"availability", "reviews", "images", "care_instructions",
		},
		AnalysisFocus: []string{
			"style trends", "price positioning", "quality indicators",
			"brand reputation", "customer satisfaction",
		},
		QnAStyle:         "Answer as a fashion analyst evaluating products and trends.",
		Checklist:        commerceChecklist,
		PreferStructured: true,
	},
	{
		Key:  "books",
		Name: "Books & Literature",
		Parameters: []string{
			"title", "author", "isbn", "price", "rating", "reviews", "publication_date",
			"genre", "publisher", "page_count", "description",
		},
		AnalysisFocus: []string{
			"literary quality", "reader reception", "genre classification",
			"pricing comparison", "author reputation",
		},
		QnAStyle:         "Answer as a literary analyst evaluating books and reader feedback.",
		Checklist:        []string{"price", "rating", "review_count", "availability"},
		PreferStructured: true,
	},
	{
		Key:  "events",
		Name: "Events & Conferences",
		Parameters: []string{
			"event_name", "date", "location", "venue", "ticket_price", "speakers",
			"agenda", "attendee_count", "registration_info", "description",
		},
		AnalysisFocus: []string{
			"event value", "speaker quality", "networking opportunities",
			"pricing competitiveness", "attendee experience",
		},
		QnAStyle: "Answer as an events analyst evaluating conferences and gatherings.",
	},
	{
		Key:        "general",
		Name:       "General",
		Parameters: []string{"title", "content", "images", "links", "metadata"},
		AnalysisFocus: []string{
			"content structure", "key information", "call-to-action clarity",
			"trust indicators", "unique insights",
		},
		QnAStyle: "Answer as a general web analyst summarizing the page.",
	},
}

// Domains returns the catalog of analysis domains in display order.
func Domains() []Domain {
	out := make([]Domain, len(domains))
	copy(out, domains)
	return out
}

// FindDomain returns the domain registered under key.
func FindDomain(key string) (Domain, bool) {
	for _, d := range domains {
		if d.Key == key {
			return d, true
		}
	}
	return Domain{}, false
}

// LookupDomain returns the domain registered under key, falling back to
// the general domain for unknown keys.
func LookupDomain(key string) Domain {
	if d, ok := FindDomain(key); ok {
		return d
	}
	d, _ := FindDomain(DefaultDomain)
	return d
}

// ValidateDomain normalizes a caller-supplied domain key. An empty key
// selects DefaultDomain; unknown keys return EINVALID.
func ValidateDomain(key string) (string, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return DefaultDomain, nil
	}
	if _, ok := FindDomain(key); !ok {
		return "", Errorf(EINVALID, "unknown domain %q", key)
	}
	return key, nil
}

// Focus returns n analysis focus hints, repeating the first hint when the
// domain defines fewer.
func (d Domain) Focus(n int) []string {
	out := make([]string, 0, n)
	for i := range n {
		switch {
		case i < len(d.AnalysisFocus):
			out = append(out, d.AnalysisFocus[i])
		case len(d.AnalysisFocus) > 0:
			out = append(out, d.AnalysisFocus[0])
		}
	}
	return out
}

func (d Domain) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Key)
}
