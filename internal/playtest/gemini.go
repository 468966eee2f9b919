package playtest

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

//go:embed prompts/choose_choice.txt
var chooseChoicePrompt string

var chooseTmpl = template.Must(template.New("choose_choice").
	Funcs(template.FuncMap{"add": func(a, b int) int { return a + b }}).
	Parse(chooseChoicePrompt))

var firstNumber = regexp.MustCompile(`\d+`)

// GeminiChooser asks a Gemini model to play.
type GeminiChooser struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiChooser(ctx context.Context, apiKey string) (*GeminiChooser, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiChooser{
		client: client,
		model:  client.GenerativeModel("gemini-2.5-flash"),
	}, nil
}

func (g *GeminiChooser) Close() {
	g.client.Close()
}

func (g *GeminiChooser) Choose(ctx context.Context, turn Turn) (int, error) {
	prompt, err := RenderPrompt(turn)
	if err != nil {
		return 0, err
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return 0, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return 0, fmt.Errorf("no content returned from Gemini")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return 0, fmt.Errorf("unexpected response type from Gemini")
	}
	return ParseAnswer(string(text), len(turn.Choices))
}

// RenderPrompt fills the choice prompt for turn.
func RenderPrompt(turn Turn) (string, error) {
	var buf bytes.Buffer
	if err := chooseTmpl.Execute(&buf, turn); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ParseAnswer reads the first number in answer as a 1-based choice and
// returns it 0-based.
func ParseAnswer(answer string, choices int) (int, error) {
	m := firstNumber.FindString(strings.TrimSpace(answer))
	if m == "" {
		return 0, fmt.Errorf("no choice number in answer %q", answer)
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > choices {
		return 0, fmt.Errorf("answer %d is not between 1 and %d", n, choices)
	}
	return n - 1, nil
}
