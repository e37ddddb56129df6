// File path: internal/tools/catalog.go
package tools

import "github.com/legacyforge/rpgbridge/internal/llm"

var documentTypeValues = []string{"standards", "procedures", "best_practices", "reference", "examples"}

func withAll(values []string) []string {
	return append([]string{"all"}, values...)
}

// Catalog returns the tool definitions advertised to the model and to MCP
// clients. The schemas are plain JSON-schema maps so both surfaces share one
// source of truth.
func Catalog() []llm.ToolSpec {
	return []llm.ToolSpec{
		{
			Name:        "upload_document",
			Description: "Register an already-uploaded standards or reference document for search and code extraction",
			Schema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filename": map[string]interface{}{
						"type":        "string",
						"description": "Name of the uploaded file",
					},
					"document_type": map[string]interface{}{
						"type":        "string",
						"enum":        documentTypeValues,
						"description": "Type of document being uploaded",
					},
					"description": map[string]interface{}{
						"type":        "string",
						"description": "Brief description of the document content",
					},
				},
				"required": []string{"filename", "document_type"},
			},
		},
		{
			Name:        "search_references",
			Description: "Search through uploaded documents for specific topics or code patterns",
			Schema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Search query for finding relevant documentation",
					},
					"document_type": map[string]interface{}{
						"type":        "string",
						"enum":        withAll(documentTypeValues),
						"description": "Filter by document type",
						"default":     "all",
					},
					"max_results": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of results to return",
						"default":     5,
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        "extract_code_examples",
			Description: "Extract code examples and patterns from reference documents",
			Schema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"code_type": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"all", "sql", "rpg-free", "rpg-fixed"},
						"description": "Type of code to extract",
						"default":     "all",
					},
					"topic": map[string]interface{}{
						"type":        "string",
						"description": "Specific topic or functionality to find examples for",
					},
				},
			},
		},
		{
			Name:        "generate_code",
			Description: "Generate new code based on requirements and reference standards",
			Schema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"requirements": map[string]interface{}{
						"type":        "string",
						"description": "Detailed requirements for the code to be generated",
					},
					"code_type": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"sql", "rpg"},
						"description": "Type of code to generate",
					},
					"include_comments": map[string]interface{}{
						"type":        "boolean",
						"description": "Include explanatory comments in generated code",
						"default":     true,
					},
				},
				"required": []string{"requirements", "code_type"},
			},
		},
		{
			Name:        "review_code",
			Description: "Review existing code against uploaded standards and best practices",
			Schema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"code": map[string]interface{}{
						"type":        "string",
						"description": "Code to be reviewed",
					},
					"code_type": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"sql", "rpg"},
						"description": "Type of code being reviewed",
					},
					"review_level": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"basic", "detailed", "comprehensive"},
						"description": "Level of review detail",
						"default":     "detailed",
					},
				},
				"required": []string{"code", "code_type"},
			},
		},
		{
			Name:        "explain_code",
			Description: "Explain code functionality and structure using reference documentation",
			Schema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"code": map[string]interface{}{
						"type":        "string",
						"description": "Code to be explained",
					},
					"explanation_level": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"beginner", "intermediate", "advanced"},
						"description": "Level of explanation detail",
						"default":     "intermediate",
					},
				},
				"required": []string{"code"},
			},
		},
		{
			Name:        "create_artifact",
			Description: "Persist a generated code deliverable (module, procedure, program) for later download",
			Schema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Filename for the artifact",
					},
					"language": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"rpgle", "sql", "text"},
						"description": "Language of the artifact content",
						"default":     "rpgle",
					},
					"content": map[string]interface{}{
						"type":        "string",
						"description": "Full artifact content",
					},
					"description": map[string]interface{}{
						"type":        "string",
						"description": "What the artifact implements",
					},
				},
				"required": []string{"name", "content"},
			},
		},
		{
			Name:        "list_documents",
			Description: "List all uploaded reference documents with metadata",
			Schema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"document_type": map[string]interface{}{
						"type":        "string",
						"enum":        withAll(documentTypeValues),
						"description": "Filter by document type",
						"default":     "all",
					},
				},
			},
		},
		{
			Name:        "analyze_fixed_format",
			Description: "Classify fixed-format RPG source by specification type and report complexity",
			Schema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": map[string]interface{}{
						"type":        "string",
						"description": "Fixed-format RPG source text",
					},
				},
				"required": []string{"source"},
			},
		},
		{
			Name:        "convert_to_freeform",
			Description: "Convert fixed-format RPG source to free-form RPGLE",
			Schema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": map[string]interface{}{
						"type":        "string",
						"description": "Fixed-format RPG source text",
					},
					"indent": map[string]interface{}{
						"type":        "integer",
						"description": "Indent width applied to statement bodies",
						"default":     2,
					},
				},
				"required": []string{"source"},
			},
		},
	}
}
