package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"log"

	"github.com/google/generative-ai-go/genai"

	"google.golang.org/api/option"

	"hadiqa-backend/internal/models"
)

// GeminiService backs the advisory calls: metadata suggestion, tag
// suggestion and feed-order recommendation. Every call degrades to a
// local fallback, and a missing API key yields a client-less service
// that always falls back, so callers never see an error from this path.
type GeminiService struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	rateChan chan struct{} // Token bucket
}

func NewGeminiService(apiKey string, concurrentReqs int) (*GeminiService, error) {
	if apiKey == "" {
		log.Println("⚠ GEMINI_API_KEY not set, advisory features run on fallbacks")
		return &GeminiService{}, nil
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-3-flash-preview")
	model.SetTemperature(0.3)
	model.SetTopP(0.95)
	model.ResponseMIMEType = "application/json"

	if concurrentReqs < 1 {
		concurrentReqs = 1
	}

	// Token bucket for rate limiting
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:   client,
		model:    model,
		rateChan: rateChan,
	}, nil
}

func (s *GeminiService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(30 * time.Second):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

func (s *GeminiService) generate(ctx context.Context, prompt string) (string, error) {
	if s.model == nil {
		return "", fmt.Errorf("gemini client not configured")
	}

	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	return extractText(resp), nil
}

// SuggestMetadata proposes a title and tag set for a new upload in the
// given category.
func (s *GeminiService) SuggestMetadata(ctx context.Context, category string) models.VideoMetadata {
	fallback := models.VideoMetadata{
		Title: "عنوان مرعب مقترح",
		Tags:  []string{"#رعب_الحديقة", "#هجمات"},
	}

	prompt := fmt.Sprintf(`You are a horror content marketing expert. Suggest one catchy, scary Arabic title and 5 hashtags for a video in the category %q.
Respond with JSON only, shaped as {"title": "...", "tags": ["tag1", "tag2"]}.`, category)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		log.Printf("Gemini metadata suggestion failed, using fallback: %v", err)
		return fallback
	}

	var meta models.VideoMetadata
	if err := json.Unmarshal([]byte(cleanJSON(text)), &meta); err != nil || meta.Title == "" {
		return fallback
	}
	return meta
}

// SuggestTags proposes short tags for an existing title/category pair.
func (s *GeminiService) SuggestTags(ctx context.Context, title, category string) []string {
	fallback := []string{"رعب", "رعب حقيقي"}

	prompt := fmt.Sprintf(`Based on the horror video titled %q in category %q, suggest 5 short Arabic tags.
Respond with a JSON array of strings only.`, title, category)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		log.Printf("Gemini tag suggestion failed, using fallback: %v", err)
		return fallback
	}

	var tags []string
	if err := json.Unmarshal([]byte(cleanJSON(text)), &tags); err != nil || len(tags) == 0 {
		return fallback
	}
	return tags
}

// RecommendOrder asks for a personalized ordering of the catalog ids,
// seeded with the categories and titles the user liked. The result is
// advisory: on any failure it falls back to a random permutation, so
// the feed still rotates through fresh content.
func (s *GeminiService) RecommendOrder(ctx context.Context, catalog []models.Video, inter models.UserInteractions) []string {
	var likedTitles, likedCategories []string
	seenCat := make(map[string]bool)
	for _, v := range catalog {
		if inter.Liked(v.ID) {
			likedTitles = append(likedTitles, v.Title)
			if !seenCat[v.Category] {
				seenCat[v.Category] = true
				likedCategories = append(likedCategories, v.Category)
			}
		}
	}

	idsJSON, _ := json.Marshal(allIDs(catalog))
	catsJSON, _ := json.Marshal(likedCategories)
	prompt := fmt.Sprintf(`You are a horror content curator. The user's favorite categories: %s.
Titles they liked: %s.
Reorder this id list so videos from favorite categories come first, then videos with similar titles: %s.
Respond with a JSON array of the ordered ids only.`,
		catsJSON, strings.Join(likedTitles, ", "), idsJSON)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		log.Printf("Gemini order recommendation failed, using shuffle fallback: %v", err)
		return ShuffledOrder(catalog)
	}

	var ordered []string
	if err := json.Unmarshal([]byte(cleanJSON(text)), &ordered); err != nil || len(ordered) == 0 {
		return ShuffledOrder(catalog)
	}
	return ordered
}

// ShuffledOrder is the recommendation fallback: a random permutation of
// every catalog id.
func ShuffledOrder(catalog []models.Video) []string {
	ids := allIDs(catalog)
	rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	return ids
}

func allIDs(catalog []models.Video) []string {
	ids := make([]string, 0, len(catalog))
	for _, v := range catalog {
		ids = append(ids, v.ID)
	}
	return ids
}

// Ping issues a minimal generation, used by the admin diagnostics panel
// to verify the configured key.
func (s *GeminiService) Ping(ctx context.Context) error {
	text, err := s.generate(ctx, `Respond with the JSON string "ok".`)
	if err != nil {
		return err
	}
	if text == "" {
		return fmt.Errorf("empty response from Gemini")
	}
	return nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					sb.WriteString(string(text))
				}
			}
		}
	}
	return sb.String()
}

// cleanJSON strips markdown code fences the model sometimes wraps
// around JSON output.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
