package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifierCategories(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		title, app string
		category   string
		sub        string
	}{
		{"main.go - Visual Studio Code", "Code.exe", CategoryOther, ""},
		{"Home / X - x.com", "chrome.exe", CategorySocial, ""},
		{"Stranger Things | netflix.com", "firefox", CategoryEntertainment, ""},
		{"Cat compilation #shorts - YouTube", "chrome", CategoryShorts, "youtube_shorts"},
		{"Go concurrency tutorial - YouTube", "chrome", CategoryWork, "educational_video"},
		{"Live music - YouTube", "chrome", CategoryEntertainment, "video"},
		{"World news - bbc.com", "msedge.exe", CategoryNews, ""},
		{"Counter-Strike 2", "cs2.exe", CategoryGaming, ""},
		{"Sprint planning - Slack", "slack", CategoryWork, "communication_work"},
		{"Weekend plans - Slack", "Slack.exe", CategoryCommunicationPersonal, ""},
		{"Internal wiki", "chrome", CategoryWork, "work_browsing"},
	}
	for _, tt := range tests {
		c := NewClassifier(DefaultClassifierConfig()).Observe(tt.title, tt.app, now)
		assert.Equal(t, tt.category, c.Category, tt.title)
		assert.Equal(t, tt.sub, c.Subcategory, tt.title)
	}
}

func TestClassifierBriefCheckThenDistracted(t *testing.T) {
	c := NewClassifier(DefaultClassifierConfig())
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	first := c.Observe("Feed - reddit.com", "firefox", now)
	assert.Equal(t, CategorySocial, first.Category)
	assert.False(t, first.Distracted, "a brief first check is tolerated")

	later := c.Observe("Feed - reddit.com", "firefox", now.Add(20*time.Second))
	assert.True(t, later.Distracted)
	assert.Equal(t, 20*time.Second, later.Dwell)
}

func TestClassifierRepeatedQuickChecks(t *testing.T) {
	c := NewClassifier(DefaultClassifierConfig())
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	var got Classification
	for i := 0; i < 4; i++ {
		now = now.Add(30 * time.Second)
		got = c.Observe("Feed - reddit.com", "firefox", now)
		now = now.Add(5 * time.Second)
		c.Observe("main.go", "code", now)
	}
	assert.True(t, got.Repeated)
	assert.True(t, got.Distracted, "repeated quick checks count even when brief")
}

func TestClassifierWhitelist(t *testing.T) {
	cfg := DefaultClassifierConfig()
	cfg.WhitelistApps = []string{"Discord.exe"}
	cfg.WhitelistDomains = []string{"reddit.com"}
	c := NewClassifier(cfg)
	now := time.Now()

	assert.Equal(t, "whitelist", c.Observe("Team voice", "discord", now).Subcategory)
	assert.Equal(t, CategoryWork, c.Observe("r/golang - reddit.com", "firefox", now).Category)
}

func TestClassifierDoesNotMutateConfig(t *testing.T) {
	cfg := DefaultClassifierConfig()
	cfg.WhitelistApps = []string{"  Discord.EXE "}
	NewClassifier(cfg)
	assert.Equal(t, "  Discord.EXE ", cfg.WhitelistApps[0])
}

func TestContainsDomain(t *testing.T) {
	assert.True(t, containsDomain("home - x.com", "x.com"))
	assert.True(t, containsDomain("www.x.com/home", "x.com"))
	assert.False(t, containsDomain("netflix.com", "x.com"))
	assert.False(t, containsDomain("x.community", "x.com"))
}
