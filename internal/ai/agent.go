package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultModel  = "gemini-2.0-flash-001"
	maxToolRounds = 5
)

// Agent is the admin assistant: a Gemini chat that can call Tools.
type Agent struct {
	apiKey string
	model  string
	tools  *Tools
}

func NewAgent(apiKey string, tools *Tools) *Agent {
	return &Agent{apiKey: apiKey, model: defaultModel, tools: tools}
}

func systemPrompt(today, userMessage string) string {
	return fmt.Sprintf(`SYSTEM: Today is %s. You are an Agentic POS Assistant.

	RULES:
	1. UPDATE: If a user asks to update a product by NAME (e.g. "Update Banana price"), you must NOT ask them for the ID. Instead:
	   - Call 'check_inventory' to find the ID.
	   - Call 'update_product_price' using that ID.

	2. READ: If a user asks for PRICE, STOCK, or DETAILS of a product:
	   - You MUST call 'check_inventory' to get the full list.
	   - Then read the JSON to find the specific item and answer the user.

	3. SALES: If the user asks for sales/revenue, use 'get_sales_report'.

	USER: %s`, today, userMessage)
}

// Run sends the message and answers tool calls until the model replies with
// text or the round limit is hit.
func (a *Agent) Run(ctx context.Context, userMessage string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(a.model)
	model.Tools = []*genai.Tool{{FunctionDeclarations: a.tools.Declarations()}}
	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(systemPrompt(time.Now().Format("2006-01-02"), userMessage)))
	if err != nil {
		return "", err
	}

	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return printResponse(resp), nil
		}
		replies := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			replies = append(replies, genai.FunctionResponse{
				Name:     call.Name,
				Response: a.tools.Execute(call.Name, call.Args),
			})
		}
		if resp, err = session.SendMessage(ctx, replies...); err != nil {
			return "", err
		}
	}
	return "", errors.New("assistant did not finish within the tool call limit")
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if fc, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, fc)
		}
	}
	return calls
}

func printResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "I completed the action."
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
