package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

var errEmptyResponse = errors.New("assistant: empty model response")

// GeminiSuggester asks a Gemini model for a JSON order matching orderSchema.
type GeminiSuggester struct {
	client *genai.Client
	model  string
}

// NewGeminiSuggester creates a client for the Gemini API.
func NewGeminiSuggester(ctx context.Context, apiKey, model string) (*GeminiSuggester, error) {
	if apiKey == "" {
		return nil, errors.New("assistant: gemini api key is empty")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("assistant: create gemini client: %w", err)
	}
	return &GeminiSuggester{client: client, model: model}, nil
}

var orderSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"customerName": {
			Type:        genai.TypeString,
			Description: "The name of the customer placing the order. This must be an exact match from the provided customer list.",
		},
		"items": {
			Type:        genai.TypeArray,
			Description: "An array of items to be included in the order.",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"productName": {
						Type:        genai.TypeString,
						Description: "The name of the product being ordered. This must be an exact match from the provided product list.",
					},
					"quantity": {
						Type:        genai.TypeInteger,
						Description: "The number of units of the product to order.",
					},
				},
				Required: []string{"productName", "quantity"},
			},
		},
	},
	Required: []string{"customerName", "items"},
}

// SystemInstruction builds the instruction that pins the model to catalog.
func SystemInstruction(catalog Catalog) string {
	var b strings.Builder
	b.WriteString("You are an intelligent order booking assistant for Qazi Enterprises.\n")
	b.WriteString("Your goal is to understand the user's request and structure it as a JSON object representing a new order.\n")
	b.WriteString("Use the following lists to ensure customer and product names are correct.\n\n")
	fmt.Fprintf(&b, "Available Products: %s\n", strings.Join(catalog.Products, ", "))
	fmt.Fprintf(&b, "Available Customers: %s\n\n", strings.Join(catalog.Customers, ", "))
	b.WriteString("If a customer or product mentioned by the user does not exist in the lists, do not create the order and instead inform the user that the entity is not found.\n")
	b.WriteString("Only respond with the JSON object based on the schema.")
	return b.String()
}

// Suggest implements Suggester.
func (g *GeminiSuggester) Suggest(ctx context.Context, prompt string, catalog Catalog) (Suggestion, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction(catalog), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    orderSchema,
		Temperature:       genai.Ptr(float32(0.1)),
	})
	if err != nil {
		return Suggestion{}, fmt.Errorf("assistant: generate content: %w", err)
	}
	return ParseSuggestion(result.Text())
}

// ParseSuggestion decodes a model reply. Markdown code fences are tolerated.
func ParseSuggestion(raw string) (Suggestion, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return Suggestion{}, errEmptyResponse
	}
	var s Suggestion
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return Suggestion{}, fmt.Errorf("assistant: decode suggestion: %w", err)
	}
	return s, nil
}
