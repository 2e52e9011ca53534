package imaging

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const cloudinaryBaseURL = "https://res.cloudinary.com"

var (
	ErrInvalidImage = errors.New("invalid image data provided")

	publicIDPattern = regexp.MustCompile(`cloudinary\.com/[^/]+/image/upload/(?:[^/]+/)?(.+?)(?:\.[^.]+)?$`)
)

// MediaRecord is an uploaded media file as stored with a product.
type MediaRecord struct {
	ID              uint    `json:"id"`
	URL             string  `json:"url"`
	AlternativeText string  `json:"alternativeText,omitempty"`
	Caption         string  `json:"caption,omitempty"`
	Width           int     `json:"width,omitempty"`
	Height          int     `json:"height,omitempty"`
	Size            float64 `json:"size,omitempty"`
	Mime            string  `json:"mime,omitempty"`
	Ext             string  `json:"ext,omitempty"`
	Hash            string  `json:"hash,omitempty"`
	Provider        string  `json:"provider,omitempty"`
}

// Format is one rendition of an image.
type Format struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ProcessedImage is a media record with its derived renditions.
type ProcessedImage struct {
	MediaRecord
	Thumbnail string            `json:"thumbnail"`
	Small     string            `json:"small"`
	Medium    string            `json:"medium"`
	Large     string            `json:"large"`
	Formats   map[string]Format `json:"formats"`
}

// Transformation is the set of delivery parameters encoded into a URL segment.
type Transformation struct {
	Width   int
	Height  int
	Crop    string
	Quality string
	Format  string
	Gravity string
	Radius  int
	Effect  string
}

type variant struct {
	name string
	size int
	crop string
}

var variants = []variant{
	{name: "thumbnail", size: 150, crop: "fill"},
	{name: "small", size: 300, crop: "limit"},
	{name: "medium", size: 600, crop: "limit"},
	{name: "large", size: 1200, crop: "limit"},
}

// UseCase selects a preset transformation for OptimizedURL.
type UseCase string

const (
	UseCaseThumbnail UseCase = "thumbnail"
	UseCaseCard      UseCase = "card"
	UseCaseHero      UseCase = "hero"
	UseCaseGallery   UseCase = "gallery"
)

var presets = map[UseCase]Transformation{
	UseCaseThumbnail: {Width: 150, Height: 150, Crop: "fill"},
	UseCaseCard:      {Width: 400, Height: 400, Crop: "limit"},
	UseCaseHero:      {Width: 1200, Height: 600, Crop: "fill", Gravity: "auto"},
	UseCaseGallery:   {Width: 800, Height: 800, Crop: "limit"},
}

// ValidAccountName reports whether a media account is configured.
func ValidAccountName(accountName string) bool {
	return strings.TrimSpace(accountName) != ""
}

// PublicID extracts the asset identifier from a Cloudinary delivery URL, dropping the
// optional version or transformation segment and the file extension.
func PublicID(url string) (string, bool) {
	m := publicIDPattern.FindStringSubmatch(url)
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// BuildURL renders a delivery URL. Unset parameters fall back to auto sizing,
// "limit" crop, "auto:good" quality, automatic format and automatic gravity.
func BuildURL(publicID, accountName string, t Transformation) string {
	var b strings.Builder
	b.WriteString("w_" + dimension(t.Width))
	b.WriteString(",h_" + dimension(t.Height))
	b.WriteString(",c_" + orDefault(t.Crop, "limit"))
	b.WriteString(",q_" + orDefault(t.Quality, "auto:good"))
	b.WriteString(",f_" + orDefault(t.Format, "auto"))
	b.WriteString(",g_" + orDefault(t.Gravity, "auto"))
	if t.Radius > 0 {
		fmt.Fprintf(&b, ",r_%d", t.Radius)
	}
	if t.Effect != "" {
		b.WriteString(",e_" + t.Effect)
	}

	return fmt.Sprintf("%s/%s/image/upload/%s/%s", cloudinaryBaseURL, accountName, b.String(), publicID)
}

// DeriveVariants computes the four size renditions of record. Without an account name or
// for a URL outside the provider, every rendition is the original URL.
func DeriveVariants(record MediaRecord, accountName string) (ProcessedImage, error) {
	if record.URL == "" {
		return ProcessedImage{}, ErrInvalidImage
	}

	publicID, ok := PublicID(record.URL)
	if !ValidAccountName(accountName) || !ok {
		return assemble(record, func(variant) string { return record.URL }), nil
	}

	return assemble(record, func(v variant) string {
		return BuildURL(publicID, accountName, Transformation{
			Width:  v.size,
			Height: v.size,
			Crop:   v.crop,
		})
	}), nil
}

// ProcessImages derives variants for every record, stopping at the first invalid one.
func ProcessImages(records []MediaRecord, accountName string) ([]ProcessedImage, error) {
	out := make([]ProcessedImage, 0, len(records))
	for i, record := range records {
		img, err := DeriveVariants(record, accountName)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		out = append(out, img)
	}
	return out, nil
}

// OptimizedURL renders record with the preset for useCase. Unknown use cases use the card preset.
func OptimizedURL(record MediaRecord, accountName string, useCase UseCase) string {
	if !ValidAccountName(accountName) {
		return record.URL
	}
	publicID, ok := PublicID(record.URL)
	if !ok {
		return record.URL
	}

	t, found := presets[useCase]
	if !found {
		t = presets[UseCaseCard]
	}
	return BuildURL(publicID, accountName, t)
}

func assemble(record MediaRecord, urlFor func(variant) string) ProcessedImage {
	img := ProcessedImage{
		MediaRecord: record,
		Formats:     make(map[string]Format, len(variants)),
	}
	for _, v := range variants {
		url := urlFor(v)
		img.Formats[v.name] = Format{URL: url, Width: v.size, Height: v.size}
		switch v.name {
		case "thumbnail":
			img.Thumbnail = url
		case "small":
			img.Small = url
		case "medium":
			img.Medium = url
		case "large":
			img.Large = url
		}
	}
	return img
}

func dimension(n int) string {
	if n <= 0 {
		return "auto"
	}
	return fmt.Sprintf("%d", n)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
