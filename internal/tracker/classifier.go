package tracker

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

// Distraction categories. CategoryWork and CategoryOther count as focused.
const (
	CategoryWork                  = "work"
	CategoryOther                 = "other"
	CategorySocial                = "social"
	CategoryEntertainment         = "entertainment"
	CategoryShorts                = "youtube_shorts"
	CategoryNews                  = "news"
	CategoryGaming                = "gaming"
	CategoryCommunicationPersonal = "communication_personal"
	CategoryIdle                  = "idle"
	CategoryLocked                = "locked"
)

// ClassifierConfig holds the app and domain lists used to categorize the
// foreground window. App names are matched case-insensitively with any
// ".exe" suffix removed.
type ClassifierConfig struct {
	SocialDomains        []string
	EntertainmentDomains []string
	NewsDomains          []string
	CommunicationDomains []string
	CommunicationApps    []string
	BrowserApps          []string
	GamingApps           []string
	EducationalKeywords  []string
	WorkKeywords         []string
	WorkDomains          []string
	WhitelistApps        []string
	WhitelistDomains     []string

	// BriefCheck is how long a first visit to a distracting category is
	// tolerated.
	BriefCheck time.Duration
	// RepeatWindow and RepeatCount define a quick-check pattern: that many
	// earlier visits inside the window make even a brief visit count.
	RepeatWindow time.Duration
	RepeatCount  int
}

func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		SocialDomains: []string{
			"instagram.com", "facebook.com", "fb.com", "twitter.com", "x.com",
			"reddit.com", "snapchat.com", "threads.net",
		},
		EntertainmentDomains: []string{
			"youtube.com", "youtu.be", "tiktok.com", "netflix.com", "primevideo.com",
			"hotstar.com", "disneyplus.com", "twitch.tv", "spotify.com", "soundcloud.com",
		},
		NewsDomains: []string{
			"cnn.com", "bbc.com", "nytimes.com", "theguardian.com", "indiatimes.com",
			"hindustantimes.com", "indianexpress.com", "washingtonpost.com", "wsj.com", "reuters.com",
		},
		CommunicationDomains: []string{
			"slack.com", "teams.microsoft.com", "outlook.office.com", "outlook.live.com",
			"mail.google.com", "discord.com", "web.telegram.org", "web.whatsapp.com", "zoom.us",
		},
		CommunicationApps: []string{
			"slack", "ms-teams", "teams", "outlook", "zoom", "discord", "telegram",
			"telegram-desktop", "whatsapp", "skype", "thunderbird",
		},
		BrowserApps: []string{
			"chrome", "google-chrome", "chromium", "msedge", "firefox", "brave",
			"opera", "opera_gx", "vivaldi", "safari",
		},
		GamingApps: []string{
			"steam", "epicgameslauncher", "valorant", "cs2", "csgo", "minecraft",
		},
		EducationalKeywords: []string{
			"tutorial", "course", "lecture", "how to", "explained", "crash course",
			"walkthrough", "guide", "documentation", "khan academy", "freecodecamp",
			"mit", "stanford", "coursera", "edx",
		},
		WorkKeywords: []string{
			"standup", "sprint", "retro", "review", "planning", "design", "spec",
			"meeting", "client", "jira", "asana", "trello", "github", "gitlab",
			"bitbucket", "ticket", "project",
		},
		BriefCheck:   15 * time.Second,
		RepeatWindow: 10 * time.Minute,
		RepeatCount:  3,
	}
}

// Classification is the verdict for one foreground window.
type Classification struct {
	Distracted  bool
	Category    string
	Subcategory string
	Domain      string
	// Dwell is the time spent in Category since it was entered.
	Dwell time.Duration
	// Repeated is set when the category was visited often inside the
	// repeat window.
	Repeated bool
}

var domainPattern = regexp.MustCompile(`([a-z0-9.-]+\.(com|net|org|io|ai|edu|gov|tv|in|co))`)

var titleHints = []string{
	"facebook", "instagram", "twitter", "tiktok", "reddit", "netflix",
	"prime video", "disney+", "hotstar",
}

// Classifier decides whether a window is a distraction and labels its
// category. It keeps dwell time and visit history between calls.
type Classifier struct {
	cfg ClassifierConfig

	mu           sync.Mutex
	current      string
	currentStart time.Time
	visits       map[string][]time.Time
}

func NewClassifier(cfg ClassifierConfig) *Classifier {
	for _, list := range []*[]string{&cfg.CommunicationApps, &cfg.BrowserApps, &cfg.GamingApps, &cfg.WhitelistApps} {
		*list = normalized(*list, normalizeApp)
	}
	for _, list := range []*[]string{&cfg.SocialDomains, &cfg.EntertainmentDomains, &cfg.NewsDomains,
		&cfg.CommunicationDomains, &cfg.WorkDomains, &cfg.WhitelistDomains,
		&cfg.EducationalKeywords, &cfg.WorkKeywords} {
		*list = normalized(*list, func(s string) string { return strings.ToLower(strings.TrimSpace(s)) })
	}
	return &Classifier{cfg: cfg, visits: make(map[string][]time.Time)}
}

// normalized returns a fresh copy of list with fn applied and blanks dropped.
func normalized(list []string, fn func(string) string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = fn(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func normalizeApp(app string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(app)), ".exe")
}

// Observe classifies the window and advances the dwell and visit history.
func (c *Classifier) Observe(title, app string, now time.Time) Classification {
	titleL := strings.ToLower(title)
	appL := normalizeApp(app)
	domain := c.domainInTitle(titleL)

	if contains(c.cfg.WhitelistApps, appL) || (domain != "" && contains(c.cfg.WhitelistDomains, domain)) {
		return Classification{Category: CategoryWork, Subcategory: "whitelist", Domain: domain}
	}

	category, sub := c.detect(titleL, appL, domain)

	c.mu.Lock()
	dwell := c.dwellLocked(category, now)
	repeated := c.repeatedLocked(category, now)
	c.mu.Unlock()

	distracted := isDistractive(category)
	if distracted && dwell < c.cfg.BriefCheck && !repeated {
		distracted = false
	}
	return Classification{
		Distracted:  distracted,
		Category:    category,
		Subcategory: sub,
		Domain:      domain,
		Dwell:       dwell,
		Repeated:    repeated,
	}
}

func (c *Classifier) domainInTitle(titleL string) string {
	for _, list := range [][]string{c.cfg.SocialDomains, c.cfg.EntertainmentDomains,
		c.cfg.NewsDomains, c.cfg.CommunicationDomains} {
		for _, d := range list {
			if containsDomain(titleL, d) {
				return d
			}
		}
	}
	return domainPattern.FindString(titleL)
}

func (c *Classifier) detect(titleL, appL, domain string) (category, sub string) {
	if contains(c.cfg.GamingApps, appL) {
		return CategoryGaming, ""
	}

	if contains(c.cfg.CommunicationApps, appL) || (domain != "" && contains(c.cfg.CommunicationDomains, domain)) {
		if c.looksWorkRelated(titleL, domain) {
			return CategoryWork, "communication_work"
		}
		return CategoryCommunicationPersonal, ""
	}

	browser := contains(c.cfg.BrowserApps, appL)
	if strings.HasSuffix(domain, "youtube.com") || (browser && strings.Contains(titleL, "youtube")) {
		switch {
		case strings.Contains(titleL, "shorts"):
			return CategoryShorts, "youtube_shorts"
		case containsAny(titleL, c.cfg.EducationalKeywords):
			return CategoryWork, "educational_video"
		default:
			return CategoryEntertainment, "video"
		}
	}

	switch {
	case domain != "" && contains(c.cfg.SocialDomains, domain):
		return CategorySocial, ""
	case domain != "" && contains(c.cfg.EntertainmentDomains, domain):
		return CategoryEntertainment, ""
	case domain != "" && contains(c.cfg.NewsDomains, domain):
		return CategoryNews, ""
	case containsAny(titleL, titleHints):
		return CategoryEntertainment, ""
	case browser:
		return CategoryWork, "work_browsing"
	}
	return CategoryOther, ""
}

func (c *Classifier) looksWorkRelated(titleL, domain string) bool {
	if domain != "" {
		for _, wd := range c.cfg.WorkDomains {
			if wd != "" && strings.Contains(domain, wd) {
				return true
			}
		}
	}
	return containsAny(titleL, c.cfg.WorkKeywords)
}

// dwellLocked returns the time spent in category, recording a visit to the
// previous category when it changes.
func (c *Classifier) dwellLocked(category string, now time.Time) time.Duration {
	if c.current != category {
		if c.current != "" {
			c.recordVisitLocked(c.current, now)
		}
		c.current = category
		c.currentStart = now
		return 0
	}
	if d := now.Sub(c.currentStart); d > 0 {
		return d
	}
	return 0
}

func (c *Classifier) recordVisitLocked(category string, now time.Time) {
	cutoff := now.Add(-c.cfg.RepeatWindow)
	kept := c.visits[category][:0]
	for _, t := range c.visits[category] {
		if !t.Before(cutoff) {
			kept = append(kept, t)
		}
	}
	c.visits[category] = append(kept, now)
}

func (c *Classifier) repeatedLocked(category string, now time.Time) bool {
	if c.cfg.RepeatCount <= 0 {
		return false
	}
	cutoff := now.Add(-c.cfg.RepeatWindow)
	n := 0
	for _, t := range c.visits[category] {
		if !t.Before(cutoff) {
			n++
		}
	}
	return n >= c.cfg.RepeatCount
}

// containsDomain reports whether d appears in s as a whole host name, so
// "x.com" matches "www.x.com" but not "netflix.com".
func containsDomain(s, d string) bool {
	for from := 0; ; {
		i := strings.Index(s[from:], d)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(d)
		if (start == 0 || !isHostChar(s[start-1])) && (end == len(s) || !isHostChar(s[end])) {
			return true
		}
		from = start + 1
	}
}

func isHostChar(b byte) bool {
	return b == '-' || b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

func isDistractive(category string) bool {
	switch category {
	case CategorySocial, CategoryEntertainment, CategoryNews, CategoryGaming,
		CategoryCommunicationPersonal, CategoryShorts:
		return true
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
