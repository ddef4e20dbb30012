// Package prompts contains the prompt templates used by the modal processors
// and the query pipeline. Templates are static configuration; all dynamic
// values are injected through the builder functions.
package prompts

import (
	"fmt"
	"strings"
)

// System prompts for the different analysis types.
const (
	ImageAnalysisSystem    = "You are an expert image analyst. Provide detailed, accurate descriptions."
	TableAnalysisSystem    = "You are an expert data analyst. Provide detailed table analysis with specific insights."
	EquationAnalysisSystem = "You are an expert mathematician. Provide detailed mathematical analysis."
	QASystem               = "You are a helpful assistant. Answer the question strictly based on the provided knowledge."
)

// GenericAnalysisSystem returns the system prompt for arbitrary content types.
func GenericAnalysisSystem(contentType string) string {
	return fmt.Sprintf("You are an expert content analyst specializing in %s content.", contentType)
}

const visionPromptBody = `Please analyze this image in detail and provide a JSON response with the following structure:

{
    "detailed_description": "A comprehensive and detailed visual description of the image following these guidelines:
    - Describe the overall composition and layout
    - Identify all objects, people, text, and visual elements
    - Explain relationships between elements
    - Note colors, lighting, and visual style
    - Describe any actions or activities shown
    - Include technical details if relevant (charts, diagrams, etc.)
    - Always use specific names instead of pronouns",
    "entity_info": {
        "entity_name": "%s",
        "entity_type": "image",
        "summary": "concise summary of the image content and its significance (max 100 words)"
    }
}

Additional context:
- Image Path: %s
- Captions: %s
- Footnotes: %s

Focus on providing accurate, detailed visual analysis that would be useful for knowledge retrieval.`

// Vision builds the image analysis prompt. An empty entityName asks the model
// to choose a descriptive name itself; a non-empty context is prepended as
// grounding material.
func Vision(entityName, imagePath string, captions, footnotes []string, context string) string {
	if entityName == "" {
		entityName = "unique descriptive name for this image"
	}
	prompt := fmt.Sprintf(visionPromptBody, entityName, imagePath, listOrNone(captions), listOrNone(footnotes))
	return withContext(context, prompt)
}

const tablePromptBody = `Please analyze this table content and provide a JSON response with the following structure:

{
    "detailed_description": "A comprehensive analysis of the table including:
    - Table structure and organization
    - Column headers and their meanings
    - Key data points and patterns
    - Statistical insights and trends
    - Relationships between data elements
    - Significance of the data presented
    Always use specific names and values instead of general references.",
    "entity_info": {
        "entity_name": "%s",
        "entity_type": "table",
        "summary": "concise summary of the table's purpose and key findings (max 100 words)"
    }
}

Table Information:
Caption: %s
Body: %s
Footnotes: %s

Focus on extracting meaningful insights and relationships from the tabular data.`

// Table builds the table analysis prompt.
func Table(entityName string, caption []string, body string, footnote []string, context string) string {
	if entityName == "" {
		entityName = "descriptive name for this table"
	}
	prompt := fmt.Sprintf(tablePromptBody, entityName, listOrNone(caption), body, listOrNone(footnote))
	return withContext(context, prompt)
}

const equationPromptBody = `Please analyze this mathematical equation and provide a JSON response with the following structure:

{
    "detailed_description": "A comprehensive analysis of the equation including:
    - Mathematical meaning and interpretation
    - Variables and their definitions
    - Mathematical operations and functions used
    - Application domain and context
    - Physical or theoretical significance
    - Relationship to other mathematical concepts
    - Practical applications or use cases
    Always use specific mathematical terminology.",
    "entity_info": {
        "entity_name": "%s",
        "entity_type": "equation",
        "summary": "concise summary of the equation's purpose and significance (max 100 words)"
    }
}

Equation Information:
Equation: %s
Format: %s

Focus on providing mathematical insights and explaining the equation's significance.`

// Equation builds the equation analysis prompt.
func Equation(entityName, equationText, equationFormat, context string) string {
	if entityName == "" {
		entityName = "descriptive name for this equation"
	}
	prompt := fmt.Sprintf(equationPromptBody, entityName, equationText, equationFormat)
	return withContext(context, prompt)
}

const genericPromptBody = `Please analyze this %s content and provide a JSON response with the following structure:

{
    "detailed_description": "A comprehensive analysis of the content including:
    - Content structure and organization
    - Key information and elements
    - Relationships between components
    - Context and significance
    - Relevant details for knowledge retrieval
    Always use specific terminology appropriate for %s content.",
    "entity_info": {
        "entity_name": "%s",
        "entity_type": "%s",
        "summary": "concise summary of the content's purpose and key points (max 100 words)"
    }
}

Content: %s

Focus on extracting meaningful information that would be useful for knowledge retrieval.`

// Generic builds the analysis prompt for arbitrary content types.
func Generic(entityName, contentType, content, context string) string {
	if entityName == "" {
		entityName = fmt.Sprintf("descriptive name for this %s content", contentType)
	}
	prompt := fmt.Sprintf(genericPromptBody, contentType, contentType, entityName, contentType, content)
	return withContext(context, prompt)
}

// ImageChunk renders the persisted chunk text for an analyzed image.
func ImageChunk(imagePath string, captions, footnotes []string, enhancedCaption string) string {
	return fmt.Sprintf(`Image Content Analysis:
Image Path: %s
Captions: %s
Footnotes: %s

Visual Analysis: %s`,
		imagePath, joinOrNone(captions), joinOrNone(footnotes), enhancedCaption)
}

// TableChunk renders the persisted chunk text for an analyzed table.
func TableChunk(caption []string, body string, footnote []string, enhancedCaption string) string {
	return fmt.Sprintf(`Table Analysis:
Caption: %s
Structure: %s
Footnotes: %s

Analysis: %s`,
		joinOrNone(caption), body, joinOrNone(footnote), enhancedCaption)
}

// EquationChunk renders the persisted chunk text for an analyzed equation.
func EquationChunk(equationText, equationFormat, enhancedCaption string) string {
	return fmt.Sprintf(`Mathematical Equation Analysis:
Equation: %s
Format: %s

Mathematical Analysis: %s`,
		equationText, equationFormat, enhancedCaption)
}

// GenericChunk renders the persisted chunk text for arbitrary analyzed content.
func GenericChunk(contentType, content, enhancedCaption string) string {
	return fmt.Sprintf(`%s Content Analysis:
Content: %s

Analysis: %s`,
		contentType, content, enhancedCaption)
}

// QA builds the answer-generation prompt for the query pipeline.
func QA(question string, passages []string) string {
	var b strings.Builder
	b.WriteString("Answer the question based on the following retrieved knowledge.\n\n")
	for i, passage := range passages {
		fmt.Fprintf(&b, "[%d] %s\n\n", i+1, passage)
	}
	fmt.Fprintf(&b, "Question: %s\nAnswer:", question)
	return b.String()
}

// EntityExtraction builds the prompt asking the model to mine entities and
// relationships out of a text chunk as a JSON object.
func EntityExtraction(text string) string {
	return fmt.Sprintf(`Extract the named entities and the relationships between them from the following text.
Respond with a JSON object of the following structure:

{
    "entities": [
        {"entity_name": "name", "entity_type": "type", "description": "short description"}
    ],
    "relationships": [
        {"src": "source entity name", "tgt": "target entity name", "description": "how they relate", "keywords": "comma,separated,keywords", "weight": 1.0}
    ]
}

Only include entities actually mentioned in the text. Use specific names instead of pronouns.

Text:
%s`, text)
}

func withContext(context, prompt string) string {
	if context == "" {
		return prompt
	}
	return fmt.Sprintf("Document context:\n%s\n\n%s", context, prompt)
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return fmt.Sprintf("%v", items)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}
