// Package ai provides the exam coach relay to an OpenAI-compatible chat API
package ai

import (
	"context"
	"fmt"

	"github.com/accaprep/backend/internal/models"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const systemPrompt = `You are an experienced ACCA tutor helping a student prepare for their exams.
Explain concepts clearly and concisely, reference the relevant syllabus area when useful,
and encourage the student to reason through problems rather than memorise answers.
Keep answers focused on ACCA exam preparation.`

// Message represents a chat message exchanged with the coach
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Coach relays study questions to an OpenAI-compatible chat endpoint
type Coach struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewCoach creates a new exam coach client
func NewCoach(apiKey, baseURL, model string, logger *zap.Logger) *Coach {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &Coach{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		logger: logger,
	}
}

// Chat sends the conversation to the model and returns the assistant reply
func (c *Coach) Chat(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages must be non-empty")
	}

	llmMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	llmMessages = append(llmMessages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, msg := range messages {
		role := openai.ChatMessageRoleUser
		if msg.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		llmMessages = append(llmMessages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: llmMessages,
	})
	if err != nil {
		c.logger.Error("chat completion failed", zap.Error(err))
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty chat response")
	}

	return resp.Choices[0].Message.Content, nil
}

// ExplainQuestion asks the model to explain a question the student answered,
// including why the chosen option is right or wrong
func (c *Coach) ExplainQuestion(ctx context.Context, q *models.Question, chosenOption string) (string, error) {
	prompt := fmt.Sprintf(
		"Explain the following ACCA practice question.\n\nQuestion: %s\nA) %s\nB) %s\nC) %s\nD) %s\n\nThe correct answer is %s. The student chose %s. Explain why the correct answer is right",
		q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectOption, chosenOption)
	if chosenOption != q.CorrectOption {
		prompt += " and why the student's choice is wrong"
	}
	prompt += "."

	return c.Chat(ctx, []Message{{Role: "user", Content: prompt}})
}
