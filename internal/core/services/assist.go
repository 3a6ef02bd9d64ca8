package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/core/ports/driven"
	"github.com/custodia-labs/vitae/internal/core/ports/driving"
	"github.com/custodia-labs/vitae/internal/logger"
	"github.com/custodia-labs/vitae/internal/metrics"
)

// Ensure AssistService implements the interfaces.
var (
	_ driving.AssistService   = (*AssistService)(nil)
	_ driven.PromptStoreAware = (*AssistService)(nil)
)

// Default request budget for AI assist: one request per second with
// bursts of three.
const (
	DefaultAssistRate  = rate.Limit(1)
	DefaultAssistBurst = 3
)

const (
	assistMaxTokens   = 600
	assistTemperature = 0.4
)

// AssistService generates resume text with the configured LLM.
// Input is validated before any network call.
type AssistService struct {
	llm     driven.LLMService
	editor  driving.EditorService
	prompts driven.PromptStore
	limiter *rate.Limiter
	metrics *metrics.Metrics
}

// NewAssistService creates an assist service. llm may be nil, in which
// case Generate returns domain.ErrLLMUnavailable. A nil limiter uses the
// default budget.
func NewAssistService(
	llm driven.LLMService,
	editor driving.EditorService,
	limiter *rate.Limiter,
	m *metrics.Metrics,
) *AssistService {
	if limiter == nil {
		limiter = rate.NewLimiter(DefaultAssistRate, DefaultAssistBurst)
	}
	return &AssistService{
		llm:     llm,
		editor:  editor,
		limiter: limiter,
		metrics: m,
	}
}

// SetPromptStore sets the store the section writer prompt is loaded from.
func (s *AssistService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Available reports whether an LLM is configured.
func (s *AssistService) Available() bool {
	return s.llm != nil
}

// Generate validates req and asks the LLM for a paragraph and, for
// experience entries that ask for them, bullets.
func (s *AssistService) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResult, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if !s.limiter.Allow() {
		return nil, domain.ErrRateLimited
	}

	logger.Section("AI Assist")
	logger.Debug("section=%s style=%s lang=%s model=%s", req.Section, req.Style, req.Lang, s.llm.ModelName())

	system, err := s.systemPrompt(req)
	if err != nil {
		return nil, err
	}
	user, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	start := time.Now()
	reply, err := s.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: string(user)},
	}, driven.ChatOptions{
		MaxTokens:   assistMaxTokens,
		Temperature: assistTemperature,
		JSON:        true,
	})
	s.metrics.ObserveAssist(s.llm.ModelName(), start)
	if err != nil {
		return nil, fmt.Errorf("generate text: %w", err)
	}

	result, err := parseGenerated(reply, req.BulletsAllowed())
	if err != nil {
		return nil, err
	}
	logger.Debug("generated %d chars, %d bullets", len(result.Paragraph), len(result.Bullets))
	return result, nil
}

// ApplyToBlock writes the paragraph to the block's "summary" field and any
// bullets to "highlights".
func (s *AssistService) ApplyToBlock(sectionID, blockID string, result *domain.GenerateResult) error {
	if result == nil {
		return fmt.Errorf("%w: no result to apply", domain.ErrInvalidInput)
	}
	if s.editor == nil {
		return errors.New("editor not configured")
	}

	current := s.editor.Snapshot()
	if !hasBlock(current, sectionID, blockID) {
		logger.Warn("apply: block %q not found in section %q; ignoring", blockID, sectionID)
		return nil
	}

	var applyErr error
	s.editor.SetDocument(func(doc domain.Document) domain.Document {
		si := doc.SectionIndex(sectionID)
		if si < 0 {
			return doc
		}
		bi := doc.Sections[si].BlockIndex(blockID)
		if bi < 0 {
			return doc
		}
		block := &doc.Sections[si].Blocks[bi]
		if block.Fields == nil {
			block.Fields = domain.Fields{}
		}
		if _, applyErr = domain.SetPath(block.Fields, "summary", result.Paragraph); applyErr != nil {
			return doc
		}
		if len(result.Bullets) > 0 {
			highlights := make([]any, len(result.Bullets))
			for i, b := range result.Bullets {
				highlights[i] = b
			}
			_, applyErr = domain.SetPath(block.Fields, "highlights", highlights)
		}
		return doc
	})
	return applyErr
}

func hasBlock(doc domain.Document, sectionID, blockID string) bool {
	si := doc.SectionIndex(sectionID)
	return si >= 0 && doc.Sections[si].BlockIndex(blockID) >= 0
}

// promptData is the data the section writer template is rendered with.
type promptData struct {
	domain.GenerateRequest
	StyleDescription string
	Bullets          bool
}

var promptFuncs = template.FuncMap{"join": strings.Join}

// systemPrompt renders the section writer template. A custom template
// that fails to parse or render falls back to the built-in one.
func (s *AssistService) systemPrompt(req domain.GenerateRequest) (string, error) {
	data := promptData{
		GenerateRequest:  req,
		StyleDescription: req.Style.Description(),
		Bullets:          req.BulletsAllowed(),
	}

	if s.prompts != nil {
		text, err := s.prompts.Load(driven.PromptSectionWriter)
		if err == nil {
			out, err := renderPrompt(text, data)
			if err == nil {
				return out, nil
			}
			logger.Warn("custom %s prompt unusable: %v; using built-in", driven.PromptSectionWriter, err)
		}
	}
	return renderPrompt(driven.DefaultSectionWriterPrompt, data)
}

func renderPrompt(text string, data promptData) (string, error) {
	tmpl, err := template.New(driven.PromptSectionWriter).Funcs(promptFuncs).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse prompt: %w", err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

// parseGenerated reads a JSON reply, or failing that treats "-", "*" and
// "•" lines as bullets and everything else as the paragraph.
func parseGenerated(reply string, bulletsAllowed bool) (*domain.GenerateResult, error) {
	text := stripCodeFence(strings.TrimSpace(reply))

	var result domain.GenerateResult
	if err := json.Unmarshal([]byte(text), &result); err != nil || (result.Paragraph == "" && len(result.Bullets) == 0) {
		result = parsePlain(text)
	}

	result.Paragraph = strings.TrimSpace(result.Paragraph)
	result.Bullets = cleanBullets(result.Bullets)
	if !bulletsAllowed {
		result.Bullets = nil
	}
	if result.Paragraph == "" && len(result.Bullets) == 0 {
		return nil, errors.New("generate text: empty response from model")
	}
	return &result, nil
}

func parsePlain(text string) domain.GenerateResult {
	var (
		paragraph []string
		bullets   []string
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if item, ok := cutBullet(line); ok {
			bullets = append(bullets, item)
			continue
		}
		paragraph = append(paragraph, line)
	}
	return domain.GenerateResult{
		Paragraph: strings.Join(paragraph, " "),
		Bullets:   bullets,
	}
}

func cutBullet(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "• ", "•"} {
		if rest, ok := strings.CutPrefix(line, marker); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

func cleanBullets(in []string) []string {
	var out []string
	for _, b := range in {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
