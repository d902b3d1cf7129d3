// Package registry maps user-typed short plugin names to canonical package
// names and classifies canonical names into naming-convention tiers.
//
// The registry is static and compiled in. Resolution never touches the
// network or the filesystem; it is a pure lookup with a synthesis fallback
// for names unknown to the registry.
package registry

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"mediaproc.dev/cli/internal/plugin"
)

// Package name prefixes that determine a plugin's tier.
const (
	// OfficialPrefix marks packages maintained by the mediaproc project.
	OfficialPrefix = "@mediaproc/"
	// CommunityPrefix marks packages following the community naming
	// convention.
	CommunityPrefix = "mediaproc-"
)

// Tier is the naming-convention tier of a canonical package name.
type Tier string

const (
	TierOfficial   Tier = "official"
	TierCommunity  Tier = "community"
	TierThirdParty Tier = "third-party"
)

// Entry describes one known plugin. Entries are immutable; Lookup returns
// copies.
type Entry struct {
	ShortName          string
	Aliases            []string
	CanonicalName      string
	Description        string
	Category           string
	SystemRequirements []string
	Keywords           []string
}

var entries = []Entry{
	{
		ShortName:          "image",
		Aliases:            []string{"img"},
		CanonicalName:      OfficialPrefix + "image",
		Description:        "Image conversion, resizing, cropping and format transforms",
		Category:           "image",
		SystemRequirements: []string{"libvips"},
		Keywords:           []string{"image", "resize", "convert", "webp", "avif"},
	},
	{
		ShortName:          "video",
		Aliases:            []string{"vid"},
		CanonicalName:      OfficialPrefix + "video",
		Description:        "Video transcoding, trimming and frame extraction",
		Category:           "video",
		SystemRequirements: []string{"ffmpeg"},
		Keywords:           []string{"video", "transcode", "ffmpeg", "mp4"},
	},
	{
		ShortName:          "audio",
		CanonicalName:      OfficialPrefix + "audio",
		Description:        "Audio conversion, normalization and stream extraction",
		Category:           "audio",
		SystemRequirements: []string{"ffmpeg"},
		Keywords:           []string{"audio", "convert", "normalize", "mp3"},
	},
	{
		ShortName:          "document",
		Aliases:            []string{"doc"},
		CanonicalName:      OfficialPrefix + "document",
		Description:        "Document conversion between PDF, office and markup formats",
		Category:           "document",
		SystemRequirements: []string{"libreoffice", "ghostscript"},
		Keywords:           []string{"document", "pdf", "docx", "convert"},
	},
	{
		ShortName:     "archive",
		Aliases:       []string{"zip"},
		CanonicalName: OfficialPrefix + "archive",
		Description:   "Archive creation and extraction (zip, tar, 7z)",
		Category:      "archive",
		Keywords:      []string{"archive", "zip", "tar", "compress"},
	},
	{
		ShortName:          "metadata",
		Aliases:            []string{"meta", "exif"},
		CanonicalName:      OfficialPrefix + "metadata",
		Description:        "Media metadata inspection and stripping",
		Category:           "metadata",
		SystemRequirements: []string{"exiftool"},
		Keywords:           []string{"metadata", "exif", "inspect", "strip"},
	},
	{
		ShortName:          "subtitle",
		Aliases:            []string{"subs"},
		CanonicalName:      OfficialPrefix + "subtitle",
		Description:        "Subtitle extraction, conversion and burn-in",
		Category:           "video",
		SystemRequirements: []string{"ffmpeg"},
		Keywords:           []string{"subtitle", "srt", "vtt", "burn-in"},
	},
	{
		ShortName:     "filters",
		CanonicalName: CommunityPrefix + "filters",
		Description:   "Community-maintained filter presets for image and video",
		Category:      "image",
		Keywords:      []string{"filters", "presets", "effects"},
	},
	{
		ShortName:     "watermark",
		Aliases:       []string{"wm"},
		CanonicalName: CommunityPrefix + "watermark",
		Description:   "Community watermarking for images and video",
		Category:      "image",
		Keywords:      []string{"watermark", "overlay", "branding"},
	},
}

// index maps every short name and alias (lower-cased) to its entry.
var index = func() map[string]*Entry {
	idx := make(map[string]*Entry, len(entries))
	for i := range entries {
		e := &entries[i]
		idx[strings.ToLower(e.ShortName)] = e
		for _, alias := range e.Aliases {
			idx[strings.ToLower(alias)] = e
		}
	}
	return idx
}()

// nameRegexp restricts plugin names to safe identifier characters before
// any of them reach a child process or the filesystem.
var nameRegexp = regexp.MustCompile(`^[@\w\-./]+$`)

// Lookup returns the registry entry for a short name or alias.
func Lookup(short string) (Entry, bool) {
	e, ok := index[strings.ToLower(short)]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// LookupCanonical returns the registry entry whose canonical package name
// matches, so metadata is found for users typing "@mediaproc/document" as
// well as "doc".
func LookupCanonical(canonical string) (Entry, bool) {
	for i := range entries {
		if entries[i].CanonicalName == canonical {
			return entries[i], true
		}
	}
	return Entry{}, false
}

// Entries returns all registry entries sorted by short name.
func Entries() []Entry {
	out := slices.Clone(entries)
	slices.SortFunc(out, func(a, b Entry) int {
		return strings.Compare(a.ShortName, b.ShortName)
	})
	return out
}

// Resolve maps a user-typed name to a canonical package name.
//
// Names that already carry a path separator or the community prefix pass
// through unchanged. Known short names and aliases resolve through the
// registry, so "doc" and "document" yield the same canonical name. Anything
// else is assumed to be a community package and gets the community prefix.
func Resolve(name string) (string, error) {
	if name == "" || !nameRegexp.MatchString(name) {
		return "", fmt.Errorf("%w: %q", plugin.ErrInvalidName, name)
	}
	if strings.Contains(name, "/") || strings.HasPrefix(name, CommunityPrefix) {
		return name, nil
	}
	if e, ok := index[strings.ToLower(name)]; ok {
		return e.CanonicalName, nil
	}
	return CommunityPrefix + name, nil
}

// TierOf classifies a canonical package name by its prefix alone.
func TierOf(canonical string) Tier {
	switch {
	case strings.HasPrefix(canonical, OfficialPrefix):
		return TierOfficial
	case strings.HasPrefix(canonical, CommunityPrefix):
		return TierCommunity
	default:
		return TierThirdParty
	}
}
