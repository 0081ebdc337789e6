package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"postdigest/internal/domain"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"mvdan.cc/xurls/v2"
)

const (
	DefaultModel = "gpt-5-mini"

	baseMaxOutputTokens      int64 = 512
	limitMaxOutputTokens     int64 = 2048
	synthesisMaxOutputTokens int64 = 4096
	limitSynthesisTokens     int64 = 16384

	summaryPrompt = `Summarize the social-media post for a professional newsletter.

Output exactly two lines:
TITLE: <clear, short headline of 6 to 12 words, press-release style>
SUMMARY: <one sentence>

Rules:
- Same language as the post.
- Neutral tone, no emojis, hashtags or links.
- Keep critical context (names, dates, numbers).`

	synthesisPromptFormat = `You are a strategic analyst covering %s.
Write a professional newsletter from the post bullets grouped by publisher.

Format:
# <Title>
## Strategic summary
<one paragraph>
## Highlights by publisher
<one short section per publisher>
## Outlook
<two or three sentences>

Use only facts present in the bullets.`
)

var strictURLRe = xurls.Strict()

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	// Topic names the newsletter audience, e.g. "the European space industry".
	Topic string
}

// OpenAI calls OpenAI's Responses API to produce post summaries and the
// final newsletter.
type OpenAI struct {
	client openai.Client
	model  string
	topic  string
}

func NewOpenAI(cfg OpenAIConfig, opts ...option.RequestOption) (*OpenAI, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("API key is empty")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(baseURL))
	}
	clientOpts = append(clientOpts, opts...)

	topic := strings.TrimSpace(cfg.Topic)
	if topic == "" {
		topic = "the industry"
	}

	return &OpenAI{
		client: openai.NewClient(clientOpts...),
		model:  model,
		topic:  topic,
	}, nil
}

// Summarize produces a headline and a synopsis for a single post.
func (s *OpenAI) Summarize(ctx context.Context, input Input) (domain.Summary, error) {
	text := cleanText(input.Text)
	if text == "" {
		return domain.Summary{}, errors.New("input is empty")
	}

	userPromptBuilder := strings.Builder{}
	if sourceURL := strings.TrimSpace(input.SourceURL); sourceURL != "" {
		userPromptBuilder.WriteString("Source:\n")
		userPromptBuilder.WriteString(sourceURL)
		userPromptBuilder.WriteString("\n")
	}
	userPromptBuilder.WriteString("Content:\n")
	userPromptBuilder.WriteString(text)

	out, err := s.respond(ctx, summaryPrompt, userPromptBuilder.String(), baseMaxOutputTokens, limitMaxOutputTokens)
	if err != nil {
		return domain.Summary{}, err
	}

	summary := ParseTagged(out)
	if summary.IsEmpty() {
		return domain.Summary{}, fmt.Errorf("response has no tagged lines (len = %d)", len(out))
	}

	return summary, nil
}

// Synthesize turns the compiled bullet context into a newsletter document.
func (s *OpenAI) Synthesize(ctx context.Context, contextBlock string) (string, error) {
	contextBlock = strings.TrimSpace(contextBlock)
	if contextBlock == "" {
		return "", errors.New("context is empty")
	}

	return s.respond(
		ctx,
		fmt.Sprintf(synthesisPromptFormat, s.topic),
		contextBlock,
		synthesisMaxOutputTokens,
		limitSynthesisTokens,
	)
}

func (s *OpenAI) respond(
	ctx context.Context,
	instructions string,
	input string,
	maxOutputTokens int64,
	limit int64,
) (string, error) {
	for {
		params := responses.ResponseNewParams{
			Model:           s.model,
			MaxOutputTokens: openai.Int(maxOutputTokens),
			Instructions:    openai.String(instructions),
			Input: responses.ResponseNewParamsInputUnion{
				OfString: openai.String(input),
			},
		}
		if isReasoningModel(s.model) {
			params.Reasoning = responses.ReasoningParam{
				Effort: openai.ReasoningEffortLow,
			}
		}

		resp, err := s.client.Responses.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("do request: %w", err)
		}

		if resp.Status == "incomplete" {
			if resp.IncompleteDetails.Reason == "max_output_tokens" && maxOutputTokens < limit {
				maxOutputTokens = min(maxOutputTokens*2, limit)
				continue
			}
			return "", fmt.Errorf(
				"response is incomplete (reason = %s, maxOutputTokens = %d)",
				resp.IncompleteDetails.Reason,
				maxOutputTokens,
			)
		}

		out := strings.TrimSpace(resp.OutputText())
		if out == "" {
			return "", fmt.Errorf("output text is missing (status = %s)", resp.Status)
		}
		return out, nil
	}
}

func isReasoningModel(model string) bool {
	model = strings.ToLower(model)
	if strings.HasPrefix(model, "gpt-5") {
		return true
	}

	return len(model) > 1 && model[0] == 'o' && model[1] >= '0' && model[1] <= '9'
}

// cleanText drops links and collapses whitespace.
func cleanText(text string) string {
	text = strictURLRe.ReplaceAllString(text, "")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}
