package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oksam-app/eco-todo-backend/internal/classify/domain"
)

// analyzePrompt is the fixed instruction sent with every clip. Points
// scale with material value; the two correct answers must be drawn
// from the four options so the quiz can be graded mechanically.
const analyzePrompt = `Analyze the video to identify the recyclable item. Provide a short description of the item, its material, and assign points for answering the recycling question correctly based on the material (e.g., plastic: 10, cardboard: 5, glass: 15, aluminum: 20). Then write one multiple-choice question about how to recycle the item, with exactly 4 options: the best recycling method, an easy recycling method, and two incorrect methods. The output must be JSON with this structure: { "productName": "...", "description": "...", "material": "...", "pointsForCorrect": ..., "question": "...", "options": ["...", "...", "...", "..."], "correctAnswers": { "best": "...", "easy": "..." } } where both correctAnswers values appear verbatim in options. Respond with JSON only.`

const videoMimeType = "video/mp4"

// Model is the generative backend. Satisfied by the Gemini client;
// tests substitute a canned implementation.
type Model interface {
	Enabled() bool
	GenerateContent(ctx context.Context, prompt, mimeType string, data []byte) (string, error)
}

// Classifier turns an opaque model reply into a validated
// ClassificationResult. Stateless; one model round trip per call.
type Classifier struct {
	model         Model
	maxVideoBytes int
}

func NewClassifier(model Model, maxVideoBytes int) *Classifier {
	if maxVideoBytes <= 0 {
		maxVideoBytes = 20 << 20
	}
	return &Classifier{model: model, maxVideoBytes: maxVideoBytes}
}

// Enabled reports whether the gateway can reach a model at all.
func (c *Classifier) Enabled() bool {
	return c.model.Enabled()
}

// AnalyzeVideo decodes the base64 clip, forwards it to the model and
// parses the reply into a ClassificationResult. Every failure mode maps
// to a distinct sentinel error.
func (c *Classifier) AnalyzeVideo(ctx context.Context, videoB64 string) (*domain.ClassificationResult, error) {
	if !c.model.Enabled() {
		return nil, domain.ErrGatewayDisabled
	}

	videoB64 = strings.TrimSpace(videoB64)
	if videoB64 == "" {
		return nil, domain.ErrEmptyVideo
	}
	// Tolerate data-URL payloads from browser recorders.
	if i := strings.Index(videoB64, ";base64,"); i >= 0 && strings.HasPrefix(videoB64, "data:") {
		videoB64 = videoB64[i+len(";base64,"):]
	}

	if decodedLen := base64.StdEncoding.DecodedLen(len(videoB64)); decodedLen > c.maxVideoBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", domain.ErrVideoTooLarge, decodedLen, c.maxVideoBytes)
	}
	data, err := base64.StdEncoding.DecodeString(videoB64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadEncoding, err)
	}

	text, err := c.model.GenerateContent(ctx, analyzePrompt, videoMimeType, data)
	if err != nil {
		return nil, err
	}

	raw, ok := extractJSONObject(text)
	if !ok {
		return nil, domain.ErrNoClassification
	}

	var result domain.ClassificationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		// extractJSONObject only returns parsable spans, so this is
		// unreachable in practice, but keep the guard.
		return nil, fmt.Errorf("%w: %v", domain.ErrNoClassification, err)
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}

	return &result, nil
}

// extractJSONObject locates the first balanced {...} span in s that
// parses as a JSON object. The model wraps its JSON in prose or
// markdown fences often enough that a plain Unmarshal of the whole
// reply is not an option.
func extractJSONObject(s string) (string, bool) {
	for start := 0; start < len(s); start++ {
		if s[start] != '{' {
			continue
		}
		end, ok := matchBrace(s, start)
		if !ok {
			// Unmatched opener, e.g. a stray prose brace. An inner span
			// can still balance, so keep scanning from the next byte.
			continue
		}
		candidate := s[start : end+1]
		if json.Valid([]byte(candidate)) {
			var probe map[string]json.RawMessage
			if json.Unmarshal([]byte(candidate), &probe) == nil {
				return candidate, true
			}
		}
		start = end
	}
	return "", false
}

// matchBrace returns the index of the brace closing s[start], tracking
// strings and escapes so braces inside JSON string values don't count.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
