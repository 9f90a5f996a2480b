package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
	"github.com/satyalearn/satyarag/rag/types"
)

const systemPrompt = "You are a patient tutor for secondary school students. " +
	"Answer using only the provided context when it is relevant. " +
	"Keep answers short, clear and suitable for the student's grade level."

// Embedder produces embeddings through any OpenAI-compatible endpoint
// (LocalAI or llama.cpp in the offline deployment). Output is always
// L2-normalized.
type Embedder struct {
	client *openai.Client
	model  string
}

// NewEmbedder creates an embedder for the given model.
func NewEmbedder(client *openai.Client, model string) *Embedder {
	return &Embedder{client: client, model: model}
}

// Embed returns the unit-norm embedding of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx,
		openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: openai.EmbeddingModel(e.model),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("error creating embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding data in response")
	}

	return types.NormalizeVector(resp.Data[0].Embedding), nil
}

// Generator produces answers through an OpenAI-compatible chat endpoint.
type Generator struct {
	client *openai.Client
	model  string
}

// NewGenerator creates a generator for the given chat model.
func NewGenerator(client *openai.Client, model string) *Generator {
	return &Generator{client: client, model: model}
}

// Generate produces an answer for the question given the retrieved
// context block. When onToken is non-nil the completion is streamed and
// every token is forwarded as it arrives; the full answer is returned
// either way.
func (g *Generator) Generate(ctx context.Context, contextText, question string, onToken func(string)) (string, error) {
	userContent := question
	if contextText != "" {
		userContent = fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, question)
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: userContent},
	}

	if onToken == nil {
		resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    g.model,
			Messages: messages,
		})
		if err != nil {
			return "", fmt.Errorf("error creating completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no choices in response")
		}
		return resp.Choices[0].Message.Content, nil
	}

	stream, err := g.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return "", fmt.Errorf("error creating completion stream: %w", err)
	}
	defer stream.Close()

	var answer string
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("error receiving stream token: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		token := resp.Choices[0].Delta.Content
		if token == "" {
			continue
		}
		answer += token
		onToken(token)
	}
	return answer, nil
}
