package identity

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnsupportedContent reports a content key that matches no known item shape.
var ErrUnsupportedContent = errors.New("unsupported item type: must be either a Pivotal story URL or GitHub PR URL")

// ItemType classifies a content key.
type ItemType string

const (
	TypeGitHubPullRequest ItemType = "github_pr"
	TypePivotalStory      ItemType = "pivotal_story"
	// TypeOther is never produced by Classify; records written by other tools may carry it.
	TypeOther ItemType = "other"
)

// IDLength is the width of a resolved item identifier.
const IDLength = md5.Size * 2

var (
	githubPullRequestPattern = regexp.MustCompile(`^https://github\.com/(?P<org>[a-zA-Z_-]+)/(?P<repo>[a-zA-Z_-]+)/pull/(?P<number>[0-9]+)$`)
	pivotalShortStoryPattern = regexp.MustCompile(`^https://www\.pivotaltracker\.com/story/show/(?P<story>[0-9]{9})$`)
	pivotalFullStoryPattern  = regexp.MustCompile(`^https://www\.pivotaltracker\.com/n/projects/(?P<project>[0-9]{7})/stories/(?P<story>[0-9]{9})$`)
	itemIDPattern            = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

// Key is a parsed content key.
type Key struct {
	Raw  string
	Type ItemType

	// GitHub pull requests.
	Org    string
	Repo   string
	Number int

	// Pivotal stories. ProjectID is empty for short story URLs.
	ProjectID string
	StoryID   string
}

// Parse classifies a content key and extracts its components.
func Parse(contentKey string) (Key, error) {
	key := Key{Raw: contentKey}
	if m := githubPullRequestPattern.FindStringSubmatch(contentKey); m != nil {
		number, err := strconv.Atoi(m[3])
		if err != nil {
			return Key{}, fmt.Errorf("%w: pull request number %q", ErrUnsupportedContent, m[3])
		}
		key.Type = TypeGitHubPullRequest
		key.Org = m[1]
		key.Repo = m[2]
		key.Number = number
		return key, nil
	}
	if m := pivotalFullStoryPattern.FindStringSubmatch(contentKey); m != nil {
		key.Type = TypePivotalStory
		key.ProjectID = m[1]
		key.StoryID = m[2]
		return key, nil
	}
	if m := pivotalShortStoryPattern.FindStringSubmatch(contentKey); m != nil {
		key.Type = TypePivotalStory
		key.StoryID = m[1]
		return key, nil
	}
	return Key{}, ErrUnsupportedContent
}

// Classify returns the item type for a content key.
func Classify(contentKey string) (ItemType, error) {
	key, err := Parse(contentKey)
	if err != nil {
		return "", err
	}
	return key.Type, nil
}

// Resolve derives the item identifier for a content key. The identifier is the
// hex MD5 digest of the key itself, so equal keys always collide.
func Resolve(contentKey string) (string, error) {
	if _, err := Parse(contentKey); err != nil {
		return "", err
	}
	return Digest(contentKey), nil
}

// Digest hashes a content key without classifying it.
func Digest(contentKey string) string {
	sum := md5.Sum([]byte(contentKey))
	return hex.EncodeToString(sum[:])
}

// IsSupported reports whether the content key has a recognized shape.
func IsSupported(contentKey string) bool {
	_, err := Parse(contentKey)
	return err == nil
}

// LooksLikeID reports whether ref has the shape of a resolved identifier.
func LooksLikeID(ref string) bool {
	return itemIDPattern.MatchString(ref)
}

// DefaultName builds a display label for callers that did not supply one.
func DefaultName(key Key) string {
	switch key.Type {
	case TypeGitHubPullRequest:
		return fmt.Sprintf("%s #%d", titleSlug(key.Repo), key.Number)
	case TypePivotalStory:
		return "Story " + key.StoryID
	default:
		return key.Raw
	}
}

func titleSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_'
	})
	if len(words) == 0 {
		return slug
	}
	return cases.Title(language.Und).String(strings.Join(words, " "))
}
