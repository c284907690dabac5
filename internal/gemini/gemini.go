package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"examwise/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// TestPrompt is the instruction template for test generation. The rendered
// prompt embeds the learning objectives, difficulty level and question count.
const TestPrompt = `You are a test generator that creates tests based on learning objectives and difficulty levels.

Generate a test with the following specifications:
Learning Objectives: %s
Difficulty Level: %s
Number of Questions: %d

Each question should have multiple choice options, and you must specify the correct answer for each question.
The test should be returned as a JSON object with a 'testQuestions' array. Each object in the testQuestions array should have 'question', 'options' and 'correctAnswer' fields.

Make sure that only one of the options is the correct answer.
The difficulty level should be appropriate to the difficultyLevel parameter.

For example, the output should look like this:
{
  "testQuestions": [
    {
      "question": "What is the capital of France?",
      "options": ["Berlin", "Paris", "Madrid", "Rome"],
      "correctAnswer": "Paris"
    },
    {
      "question": "What is the highest mountain in the world?",
      "options": ["Mount Everest", "K2", "Kangchenjunga", "Lhotse"],
      "correctAnswer": "Mount Everest"
    }
  ]
}
`

// InterpretPrompt is the instruction template for result interpretation
const InterpretPrompt = `You are an AI tool that interprets exam results and provides personalized insights and suggestions for improvement.

Exam Name: %s
Test Taker Name: %s
Results: %s

Based on the exam results, provide personalized insights into the test taker's weak areas and suggest specific topics or courses to improve their performance.
Return a JSON object with 'insights' and 'suggestions' string fields.
`

// FacePrompt is the instruction for the face classification call
const FacePrompt = `You are a security expert system that verifies if an image contains a clear human face.
Analyze the attached image and determine if a human face is clearly visible.
Return a JSON object with a single boolean field 'isFaceDetected': true if a face is detected, otherwise false.
`

// ModelName is the Gemini model to use
const ModelName = "gemini-2.0-flash"

// Client wraps the Gemini client
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewClient creates a new Gemini client
func NewClient() (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(ModelName)
	model.ResponseMIMEType = "application/json"
	// Lower temperature for more deterministic output
	model.SetTemperature(0.2)
	model.SetTopK(40)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(int32(8192))

	return &Client{
		client: client,
		model:  model,
	}, nil
}

// Close closes the Gemini client
func (c *Client) Close() {
	c.client.Close()
}

// GenerateTest issues exactly one generation call for the given request and
// parses the response into a Quiz. The request is assumed to be validated
// already; this method never sanitizes its input. There is no retry loop: a
// single attempt either produces a schema-valid quiz or an error.
func (c *Client) GenerateTest(ctx context.Context, req models.GenerationRequest) (models.Quiz, error) {
	prompt := fmt.Sprintf(TestPrompt, req.LearningObjectives, req.DifficultyLevel, req.NumberOfQuestions)

	jsonText, err := c.generateJSON(ctx, genai.Text(prompt))
	if err != nil {
		return models.Quiz{}, err
	}

	return DecodeQuiz(jsonText)
}

// InterpretResults issues a single call summarizing a test taker's results
// into insights and suggestions.
func (c *Client) InterpretResults(ctx context.Context, req models.InterpretationRequest) (models.Interpretation, error) {
	resultsJSON, err := json.Marshal(req.Results)
	if err != nil {
		return models.Interpretation{}, fmt.Errorf("failed to encode results: %w", err)
	}
	prompt := fmt.Sprintf(InterpretPrompt, req.ExamName, req.TestTakerName, string(resultsJSON))

	jsonText, err := c.generateJSON(ctx, genai.Text(prompt))
	if err != nil {
		return models.Interpretation{}, err
	}

	return DecodeInterpretation(jsonText)
}

// VerifyFace classifies whether the given image contains a clearly visible
// human face. Purely a call-model-read-boolean operation.
func (c *Client) VerifyFace(ctx context.Context, image []byte, mimeType string) (bool, error) {
	if len(image) == 0 {
		return false, fmt.Errorf("image payload is empty")
	}

	jsonText, err := c.generateJSON(ctx, genai.Text(FacePrompt), genai.Blob{MIMEType: mimeType, Data: image})
	if err != nil {
		return false, err
	}

	var out struct {
		IsFaceDetected bool `json:"isFaceDetected"`
	}
	if err := json.Unmarshal([]byte(jsonText), &out); err != nil {
		return false, fmt.Errorf("failed to parse face classification response: %w", err)
	}
	return out.IsFaceDetected, nil
}

// generateJSON sends the parts to Gemini once and returns the JSON text from
// the first candidate. No internal timeout is imposed here; the caller's
// context governs the call.
func (c *Client) generateJSON(ctx context.Context, parts ...genai.Part) (string, error) {
	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	jsonText := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			jsonText += string(text)
		}
	}

	jsonText = ExtractJSONFromText(jsonText)
	if jsonText == "" {
		return "", fmt.Errorf("no JSON content found in response")
	}
	return jsonText, nil
}

// DecodeQuiz parses a JSON payload into a Quiz and validates its structural
// shape. Any mismatch is an error; callers convert that to the empty-quiz
// sentinel at the generator boundary.
func DecodeQuiz(jsonText string) (models.Quiz, error) {
	var quiz models.Quiz
	decoder := json.NewDecoder(strings.NewReader(jsonText))
	decoder.DisallowUnknownFields() // Strict parsing to catch schema drift

	if err := decoder.Decode(&quiz); err != nil {
		return models.Quiz{}, fmt.Errorf("failed to parse quiz response: %w", err)
	}

	if quiz.IsEmpty() {
		return models.Quiz{}, fmt.Errorf("quiz response contained no questions")
	}

	if err := models.ValidateQuiz(quiz); err != nil {
		return models.Quiz{}, err
	}
	return quiz, nil
}

// DecodeInterpretation parses a JSON payload into an Interpretation
func DecodeInterpretation(jsonText string) (models.Interpretation, error) {
	var out models.Interpretation
	decoder := json.NewDecoder(strings.NewReader(jsonText))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&out); err != nil {
		return models.Interpretation{}, fmt.Errorf("failed to parse interpretation response: %w", err)
	}
	if out.Insights == "" || out.Suggestions == "" {
		return models.Interpretation{}, fmt.Errorf("interpretation response missing insights or suggestions")
	}
	return out, nil
}

var (
	jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	codeBlockPattern  = regexp.MustCompile("```(?:json)?\\s*(?s)(\\{.*?\\})\\s*```")
)

// ExtractJSONFromText attempts to extract a JSON object from text that might
// contain markdown fences or surrounding prose.
func ExtractJSONFromText(text string) string {
	// Try to find JSON between code blocks first
	if matches := codeBlockPattern.FindStringSubmatch(text); len(matches) > 1 {
		return matches[1]
	}

	if match := jsonObjectPattern.FindString(text); match != "" {
		return match
	}

	return strings.TrimSpace(text)
}
