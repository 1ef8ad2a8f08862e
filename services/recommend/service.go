package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"watchlog/models"
	"watchlog/services/metadata"
)

const (
	// maxRecommendations bounds the returned sequence.
	maxRecommendations = 9
	// maxSeeds bounds how many library items drive similar-title lookups.
	maxSeeds = 5
	// maxFallback bounds the backlog-based fallback output.
	maxFallback = 6
	// seedRatingFloor qualifies an unfinished item as a seed.
	seedRatingFloor = 8
)

// Resolver is the slice of the metadata service the builder needs.
type Resolver interface {
	Resolve(ctx context.Context, title string, media models.ItemType) *models.Metadata
	Similar(ctx context.Context, seed metadata.SimilarSeed) []models.SimilarTitle
	HasPrimary() bool
}

var _ Resolver = (*metadata.Service)(nil)

// Service builds recommendations from a user's full library.
type Service struct {
	resolver Resolver
}

func NewService(resolver Resolver) *Service {
	return &Service{resolver: resolver}
}

// Build returns up to maxRecommendations suggestions for the library.
// Titles are case-insensitively unique across the output and never repeat
// a title already in the library. Seeds are processed sequentially; one
// similar-titles round trip per seed bounds worst-case latency.
func (s *Service) Build(ctx context.Context, items []models.Item) []models.Recommendation {
	if len(items) == 0 {
		return nil
	}

	seeds := make([]models.Item, 0, len(items))
	for _, item := range items {
		if item.Status == models.StatusCompleted || ratingOf(item) >= seedRatingFloor {
			seeds = append(seeds, item)
		}
	}
	// Stable sort: equally rated seeds keep their library order.
	sort.SliceStable(seeds, func(i, j int) bool {
		return ratingOf(seeds[i]) > ratingOf(seeds[j])
	})
	if len(seeds) > maxSeeds {
		seeds = seeds[:maxSeeds]
	}

	// Qualifying seeds are a hard precondition for any recommendation,
	// including the fallback path.
	if len(seeds) == 0 {
		return nil
	}

	if !s.resolver.HasPrimary() {
		return s.fallback(items)
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		seen[strings.ToLower(item.Title)] = struct{}{}
	}

	recommendations := make([]models.Recommendation, 0, maxRecommendations)
	for _, seed := range seeds {
		if len(recommendations) >= maxRecommendations {
			break
		}

		var tmdbID int64
		if seed.TMDBID != nil {
			tmdbID = *seed.TMDBID
		}
		if tmdbID == 0 {
			if meta := s.resolver.Resolve(ctx, seed.Title, seed.Type); meta != nil {
				tmdbID = meta.TMDBID
			}
		}

		matches := s.resolver.Similar(ctx, metadata.SimilarSeed{
			Title:  seed.Title,
			Type:   seed.Type,
			TMDBID: tmdbID,
		})
		for _, match := range matches {
			if match.Title == "" {
				continue
			}
			key := strings.ToLower(match.Title)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			recommendations = append(recommendations, models.Recommendation{
				Title:     match.Title,
				Overview:  match.Overview,
				PosterURL: match.PosterURL,
				Year:      match.Year,
				TMDBID:    match.TMDBID,
				Reason:    seedReason(seed),
			})
			if len(recommendations) >= maxRecommendations {
				break
			}
		}
	}

	return recommendations
}

// fallback surfaces backlog items when the primary catalog is unavailable,
// annotated with the library's single most frequent tag.
func (s *Service) fallback(items []models.Item) []models.Recommendation {
	planned := make([]models.Item, 0, len(items))
	for _, item := range items {
		if item.Status == models.StatusPlanned {
			planned = append(planned, item)
		}
	}
	if len(planned) == 0 {
		return nil
	}

	topTag := topTagAcross(items)

	if len(planned) > maxFallback {
		planned = planned[:maxFallback]
	}
	recommendations := make([]models.Recommendation, 0, len(planned))
	for _, item := range planned {
		overview := item.Synopsis
		if overview == "" {
			overview = item.Notes
		}
		reason := "From your backlog"
		if topTag != "" {
			reason = fmt.Sprintf("Matches your frequent tag %q", topTag)
		}

		var tmdbID int64
		if item.TMDBID != nil {
			tmdbID = *item.TMDBID
		}
		recommendations = append(recommendations, models.Recommendation{
			Title:     item.Title,
			Overview:  overview,
			PosterURL: item.PosterURL,
			Year:      item.ReleaseYear,
			TMDBID:    tmdbID,
			Reason:    reason,
		})
	}
	return recommendations
}

// topTagAcross counts every comma-separated token from tags and genres of
// the whole library and returns the most frequent one. Ties go to the
// first token encountered.
func topTagAcross(items []models.Item) string {
	counts := make(map[string]int)
	var order []string
	for _, item := range items {
		for _, tag := range splitTags(item.Tags + "," + item.Genres) {
			if counts[tag] == 0 {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	topTag := ""
	best := 0
	for _, tag := range order {
		if counts[tag] > best {
			best = counts[tag]
			topTag = tag
		}
	}
	return topTag
}

func seedReason(seed models.Item) string {
	reason := fmt.Sprintf("Because you watched %s", seed.Title)
	if rating := ratingOf(seed); rating != 0 {
		reason += fmt.Sprintf(" (%d/10)", rating)
	}
	return reason
}

func ratingOf(item models.Item) int {
	if item.Rating == nil {
		return 0
	}
	return *item.Rating
}

func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
