package quiz

const (
	BundleResearcher      = "researcher"
	BundleInjectionDay    = "injection-day"
	BundleDigestive       = "digestive"
	BundleNauseaNavigator = "nausea-navigator"
	BundleHydration       = "hydration"
	BundleMaintenance     = "maintenance"
)

type Testimonial struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
}

type CallToAction struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Result is one recommendation bundle.
type Result struct {
	Bundle      string       `json:"bundle"`
	Headline    string       `json:"headline"`
	Body        string       `json:"body"`
	ProductID   string       `json:"product_id"`
	Testimonial Testimonial  `json:"testimonial"`
	Primary     CallToAction `json:"primary_cta"`
	Secondary   CallToAction `json:"secondary_cta"`
}

var bundles = map[string]Result{
	BundleResearcher: {
		Bundle:      BundleResearcher,
		Headline:    "Start With the Facts",
		Body:        "You're still weighing your options. Our free guide walks through what the first months on a GLP-1 really feel like and how people handle the rough days.",
		ProductID:   "smooth-descent-guide",
		Testimonial: Testimonial{Quote: "Reading this before my first shot took so much of the fear out of it.", Author: "Dana R."},
		Primary:     CallToAction{Label: "Get the Free Guide", Href: "/guide"},
		Secondary:   CallToAction{Label: "Browse All Products", Href: "/shop"},
	},
	BundleInjectionDay: {
		Bundle:      BundleInjectionDay,
		Headline:    "Your Injection Day, Handled",
		Body:        "The first weeks are when nausea hits hardest. The Injection Day Kit puts ginger chews, electrolytes and a day-one plan in one box.",
		ProductID:   "injection-day-kit",
		Testimonial: Testimonial{Quote: "Shot days used to wipe me out. Now they're just Tuesdays.", Author: "Marcus T."},
		Primary:     CallToAction{Label: "Shop the Injection Day Kit", Href: "/products/injection-day-kit"},
		Secondary:   CallToAction{Label: "See What's Inside", Href: "/products/injection-day-kit#details"},
	},
	BundleDigestive: {
		Bundle:      BundleDigestive,
		Headline:    "Calm the Bloat",
		Body:        "Slower digestion means more bloating. Digestive Relief pairs enzymes with gentle fiber so meals sit easier.",
		ProductID:   "digestive-relief",
		Testimonial: Testimonial{Quote: "I can finally finish dinner without feeling like a balloon.", Author: "Priya S."},
		Primary:     CallToAction{Label: "Shop Digestive Relief", Href: "/products/digestive-relief"},
		Secondary:   CallToAction{Label: "Read the FAQ", Href: "/products/digestive-relief#faq"},
	},
	BundleNauseaNavigator: {
		Bundle:      BundleNauseaNavigator,
		Headline:    "Go Out With Confidence",
		Body:        "Worried about feeling sick in public? The Nausea Navigator is a pocket kit built for meetings, commutes and dinners out.",
		ProductID:   "nausea-navigator",
		Testimonial: Testimonial{Quote: "It lives in my bag. I haven't had to leave a meeting since.", Author: "Jen K."},
		Primary:     CallToAction{Label: "Shop the Nausea Navigator", Href: "/products/nausea-navigator"},
		Secondary:   CallToAction{Label: "Take It On the Go", Href: "/products/nausea-navigator#travel"},
	},
	BundleHydration: {
		Bundle:      BundleHydration,
		Headline:    "Hydration Comes First",
		Body:        "Eating less usually means drinking less. Hydration Sticks keep electrolytes up so fatigue and headaches stay away.",
		ProductID:   "hydration-sticks",
		Testimonial: Testimonial{Quote: "The afternoon headaches stopped within a week.", Author: "Chris L."},
		Primary:     CallToAction{Label: "Shop Hydration Sticks", Href: "/products/hydration-sticks"},
		Secondary:   CallToAction{Label: "Subscribe and Save", Href: "/products/hydration-sticks#subscribe"},
	},
	BundleMaintenance: {
		Bundle:      BundleMaintenance,
		Headline:    "Keep What You've Earned",
		Body:        "Protecting muscle is how you keep the weight off. Maintenance Protein delivers 30g per serving without upsetting a smaller appetite.",
		ProductID:   "maintenance-protein",
		Testimonial: Testimonial{Quote: "Down 40 pounds and still lifting what I used to.", Author: "Alicia M."},
		Primary:     CallToAction{Label: "Shop Maintenance Protein", Href: "/products/maintenance-protein"},
		Secondary:   CallToAction{Label: "Build a Routine", Href: "/products/maintenance-protein#routine"},
	},
}

// Bundle returns the named bundle.
func Bundle(name string) (Result, bool) {
	r, ok := bundles[name]
	return r, ok
}
