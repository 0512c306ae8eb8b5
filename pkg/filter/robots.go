package filter

import (
	"fmt"
	"os"

	"github.com/temoto/robotstxt"

	"github.com/Sriram-PR/sitemap-gen/pkg/utils"
)

// DefaultRobotsAgent is the group checked when no user agent is configured
const DefaultRobotsAgent = "*"

// RobotsFilter drops paths that the site's own robots.txt disallows
type RobotsFilter struct {
	group *robotstxt.Group
	agent string
}

// NewRobotsFilter parses robots.txt content for the given user agent
func NewRobotsFilter(content []byte, agent string) (*RobotsFilter, error) {
	if agent == "" {
		agent = DefaultRobotsAgent
	}
	data, err := robotstxt.FromBytes(content)
	if err != nil {
		return nil, fmt.Errorf("%w: robots.txt: %w", utils.ErrParsing, err)
	}
	return &RobotsFilter{group: data.FindGroup(agent), agent: agent}, nil
}

// LoadRobotsFilter reads and parses a robots.txt file
func LoadRobotsFilter(path, agent string) (*RobotsFilter, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading robots.txt '%s': %w", utils.ErrFilesystem, path, err)
	}
	return NewRobotsFilter(content, agent)
}

// Allowed reports whether path may be listed. A nil filter allows everything.
func (r *RobotsFilter) Allowed(path string) bool {
	if r == nil || r.group == nil {
		return true
	}
	return r.group.Test(path)
}

// Agent returns the user agent the rules were resolved for
func (r *RobotsFilter) Agent() string {
	if r == nil {
		return DefaultRobotsAgent
	}
	return r.agent
}
