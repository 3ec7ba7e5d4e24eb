// Package prompt holds the instruction and function schema shared by every model provider.
package prompt

import "fmt"

// FunctionName is the function every provider is forced to call
const FunctionName = "analyze_news"

// FunctionDescription describes FunctionName to the model
const FunctionDescription = "Analyze if the given headline and/or article are fake news."

const (
	PredictionField          = "PREDICTION"
	PredictionDescription    = "Flag if the headline and/or article is a fake news."
	JustificationField       = "JUSTIFICATION"
	JustificationDescription = "Brief justification of the analysis made."
)

// SystemInstruction lists the factors the model weighs before answering
const SystemInstruction = `You are an investigator specializing in detecting fake news. Your task is to analyze whether the given headline and article are credible or potentially fake news. Provide a detailed evaluation based on the following factors:
Headline vs. Content Consistency: compare the headline with the content of the article. Does the content support the claims made in the headline, or is the headline sensationalized or misleading? Is there any exaggeration or contradiction between the headline and the body of the article?
Source and Author Credibility: check the credibility of the source. Is the article published by a reputable news organization or website, or is it from an unreliable or lesser-known source? Evaluate the author's credibility. Are they an expert in the field they are writing about, and do they have a professional track record?
Emotional Manipulation: analyze the tone and language of both the headline and the article. Does the article use emotional or polarizing language to evoke a strong emotional response (fear, anger, etc.) rather than providing neutral, objective reporting?
Formatting: check if the article uses sensational formatting (e.g., all caps, excessive punctuation, strange layout) that might indicate a clickbait approach.
Logical Fallacies: look for any logical inconsistencies in the article. Are there false dichotomies, oversimplifications, or misleading comparisons that weaken the arguments or conclusions?
Conspiracy Theories: does the article promote or support any conspiracy theories? Are there unverified, highly speculative claims without substantial evidence? Your analysis must not be superficial and should be based on the data presented.

Your response should include two values:
"PREDICTION" <integer>: ("1" or "0"), where "1" indicates evidence suggesting the article is fake news, and "0" indicates no evidence of the article being fake news.
"JUSTIFICATION" <string>: Provide a brief explanation supporting your analysis.`

// Build formats the user message for one article
func Build(headline, article string) string {
	return fmt.Sprintf("Headline: \"%s\"\nArticle: \"%s\"", headline, article)
}

// FunctionParameters is the JSON schema of the analyze_news arguments
func FunctionParameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			PredictionField: map[string]interface{}{
				"type":        "integer",
				"description": PredictionDescription,
			},
			JustificationField: map[string]interface{}{
				"type":        "string",
				"description": JustificationDescription,
			},
		},
		"required": []string{PredictionField, JustificationField},
	}
}
