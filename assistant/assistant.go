// Package assistant answers sustainability questions through a hosted Gemini model.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleModel     = "model"
)

var ErrEmptyConversation = errors.New("conversation has no messages")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ReplyLength is the answer size requested from the model.
type ReplyLength int

const (
	Short ReplyLength = iota
	Medium
	Long
)

func (l ReplyLength) String() string {
	switch l {
	case Short:
		return "short"
	case Medium:
		return "medium"
	default:
		return "long"
	}
}

const persona = `You are Hari Kaka, a warm 68-year-old environmentalist and retired science teacher from Uttarakhand, India.
You speak in a simple Hindi-English mix and balance nature with science.
Talk like a caring elder, use everyday examples from the Indian context and never mock the user.`

var lengthInstructions = map[ReplyLength]string{
	Short:  "Keep your reply short and to the point, no more than 2-3 lines.",
	Medium: "Explain clearly but stay under 100 words. Use real-life examples.",
	Long:   "Give a structured answer, in points if helpful, and never exceed 150 words.",
}

var mediumKeywords = []string{"how", "explain", "benefits", "compare"}

// LastUserMessage returns the content of the most recent user turn.
func LastUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// LengthFor picks the reply size from the wording of a question.
func LengthFor(question string) ReplyLength {
	q := strings.ToLower(question)
	if len(q) < 40 && !strings.Contains(q, "why") {
		return Short
	}
	for _, kw := range mediumKeywords {
		if strings.Contains(q, kw) {
			return Medium
		}
	}
	return Long
}

// SystemPrompt builds the instruction sent ahead of the conversation.
func SystemPrompt(messages []Message) string {
	return persona + "\n" + lengthInstructions[LengthFor(LastUserMessage(messages))]
}

// Contents converts the chat history into model turns, dropping blank messages.
func Contents(messages []Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		text := strings.TrimSpace(m.Content)
		if text == "" {
			continue
		}
		var role genai.Role = genai.RoleUser
		if m.Role == RoleAssistant || m.Role == RoleModel {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(text, role))
	}
	return out
}

// Responder is the part of the assistant the HTTP layer depends on.
type Responder interface {
	Reply(ctx context.Context, messages []Message) (string, error)
}

type Client struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Reply(ctx context.Context, messages []Message) (string, error) {
	contents := Contents(messages)
	if len(contents) == 0 {
		return "", ErrEmptyConversation
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt(messages), genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("model returned an empty reply")
	}
	return text, nil
}
